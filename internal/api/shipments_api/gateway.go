package shipments_api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Error codes returned in the HTTP error envelope.
const (
	CodeUpdateTrackingFailed = "UPDATE_TRACKING_FAILED"
	CodeShipmentNotFound     = "SHIPMENT_NOT_FOUND"
	CodeTrackingInfoFailed   = "TRACKING_INFO_FAILED"
	CodeGetShipmentsFailed   = "GET_SHIPMENTS_FAILED"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type envelope struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *errorBody      `json:"error,omitempty"`
}

// RegisterShipmentsServiceHandlerFromEndpoint dials endpoint and serves the HTTP routes on mux.
// The connection is closed when ctx is done.
func RegisterShipmentsServiceHandlerFromEndpoint(ctx context.Context, mux *runtime.ServeMux, endpoint string, opts []grpc.DialOption) error {
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return errors.Wrap(err, "dial grpc")
	}
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	return RegisterShipmentsServiceHandlerClient(mux, NewShipmentsServiceClient(conn))
}

func RegisterShipmentsServiceHandlerClient(mux *runtime.ServeMux, client ShipmentsServiceClient) error {
	g := &gateway{client: client, now: time.Now}
	routes := []struct {
		method  string
		pattern string
		h       runtime.HandlerFunc
	}{
		{http.MethodPost, "/v1/tracking/advance", g.advance},
		{http.MethodPost, "/v1/tracking/lookup", g.lookup},
		{http.MethodGet, "/v1/tracking/{tracking_number}", g.lookupByPath},
		{http.MethodGet, "/v1/tracking/{tracking_number}/scans", g.scans},
		{http.MethodGet, "/v1/shipments", g.shipments},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.h); err != nil {
			return errors.Wrapf(err, "register %s %s", rt.method, rt.pattern)
		}
	}
	return nil
}

type gateway struct {
	client ShipmentsServiceClient
	now    func() time.Time
}

func (g *gateway) advance(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	in, err := readStruct(r)
	if err != nil {
		g.writeError(w, http.StatusBadRequest, CodeUpdateTrackingFailed, "invalid request body")
		return
	}
	out, err := g.client.AdvanceShipment(r.Context(), in)
	g.respond(w, out, err, CodeUpdateTrackingFailed, CodeUpdateTrackingFailed)
}

func (g *gateway) lookup(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	in, err := readStruct(r)
	if err != nil {
		g.writeError(w, http.StatusBadRequest, CodeTrackingInfoFailed, "invalid request body")
		return
	}
	out, err := g.client.LookupShipment(r.Context(), in)
	g.respond(w, out, err, CodeTrackingInfoFailed, CodeShipmentNotFound)
}

func (g *gateway) lookupByPath(w http.ResponseWriter, r *http.Request, params map[string]string) {
	out, err := g.client.LookupShipment(r.Context(), trackingNumberStruct(params))
	g.respond(w, out, err, CodeTrackingInfoFailed, CodeShipmentNotFound)
}

func (g *gateway) scans(w http.ResponseWriter, r *http.Request, params map[string]string) {
	out, err := g.client.ListScans(r.Context(), trackingNumberStruct(params))
	g.respond(w, out, err, CodeTrackingInfoFailed, CodeShipmentNotFound)
}

func (g *gateway) shipments(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	in, err := listQueryStruct(r)
	if err != nil {
		g.writeError(w, http.StatusBadRequest, CodeGetShipmentsFailed, err.Error())
		return
	}
	out, err := g.client.ListShipments(r.Context(), in)
	g.respond(w, out, err, CodeGetShipmentsFailed, CodeGetShipmentsFailed)
}

func (g *gateway) respond(w http.ResponseWriter, out *structpb.Struct, err error, failCode, notFoundCode string) {
	if err != nil {
		st := status.Convert(err)
		code := failCode
		if st.Code() == codes.NotFound {
			code = notFoundCode
		}
		g.writeError(w, runtime.HTTPStatusFromCode(st.Code()), code, st.Message())
		return
	}

	data, err := protojson.Marshal(out)
	if err != nil {
		g.writeError(w, http.StatusInternalServerError, failCode, "encode response")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

func (g *gateway) writeError(w http.ResponseWriter, httpStatus int, code, msg string) {
	writeJSON(w, httpStatus, envelope{Error: &errorBody{
		Code:      code,
		Message:   msg,
		Timestamp: g.now().UTC().Format(time.RFC3339Nano),
	}})
}

func writeJSON(w http.ResponseWriter, httpStatus int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(v)
}

func readStruct(r *http.Request) (*structpb.Struct, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	in := &structpb.Struct{}
	if err := protojson.Unmarshal(b, in); err != nil {
		return nil, errors.Wrap(err, "decode body")
	}
	return in, nil
}

func trackingNumberStruct(params map[string]string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"tracking_number": structpb.NewStringValue(params["tracking_number"]),
	}}
}

func listQueryStruct(r *http.Request) (*structpb.Struct, error) {
	q := r.URL.Query()
	in := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	for _, key := range []string{"status", "search"} {
		if v := q.Get(key); v != "" {
			in.Fields[key] = structpb.NewStringValue(v)
		}
	}
	for _, key := range []string{"limit", "offset"} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Errorf("%s must be an integer", key)
		}
		in.Fields[key] = structpb.NewNumberValue(float64(n))
	}
	return in, nil
}
