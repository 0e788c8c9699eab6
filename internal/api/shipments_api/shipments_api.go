package shipments_api

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/BearBump/ShipTrack/internal/services/lifecycle"
	"github.com/BearBump/ShipTrack/internal/services/staff"
	"github.com/BearBump/ShipTrack/internal/services/tracking"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Caller-facing messages for failures whose cause stays in the logs.
const (
	advanceFailedMessage = "Failed to update tracking status"
	lookupFailedMessage  = "Failed to get tracking information"
	listFailedMessage    = "Failed to fetch shipments"
)

type Advancer interface {
	Advance(ctx context.Context, req lifecycle.AdvanceRequest) (*lifecycle.TransitionResult, error)
}

type Tracker interface {
	Lookup(ctx context.Context, trackingNumber string) (*tracking.TrackingView, error)
	ScanHistory(ctx context.Context, trackingNumber string) ([]*models.ScanLog, error)
}

type ShipmentLister interface {
	ListShipments(ctx context.Context, q staff.ListQuery) (*staff.ShipmentPage, error)
}

type ShipmentsAPI struct {
	lifecycle Advancer
	tracking  Tracker
	staff     ShipmentLister
	validate  *validatorv10.Validate
}

func New(l Advancer, t Tracker, s ShipmentLister) *ShipmentsAPI {
	return &ShipmentsAPI{lifecycle: l, tracking: t, staff: s, validate: newValidator()}
}

func (a *ShipmentsAPI) Advance(ctx context.Context, req AdvanceRequest) (*AdvanceResponse, error) {
	if err := validateRequest(a.validate, req); err != nil {
		return nil, err
	}
	res, err := a.lifecycle.Advance(ctx, lifecycle.AdvanceRequest{
		TrackingNumber: req.TrackingNumber,
		NewStatus:      req.NewStatus,
		Notes:          req.Notes,
		StaffEmail:     req.StaffEmail,
		Location:       req.Location,
		DeviceInfo:     req.DeviceInfo,
	})
	if err != nil {
		return nil, err
	}
	return &AdvanceResponse{
		Success:        true,
		ShipmentID:     res.ShipmentID,
		TrackingNumber: res.TrackingNumber,
		NewStatus:      res.NewStatus,
		Timestamp:      res.Timestamp.UTC().Format(time.RFC3339Nano),
		Warnings:       res.Warnings,
	}, nil
}

func (a *ShipmentsAPI) Lookup(ctx context.Context, req LookupRequest) (*tracking.TrackingView, error) {
	if err := validateRequest(a.validate, req); err != nil {
		return nil, err
	}
	return a.tracking.Lookup(ctx, req.TrackingNumber)
}

func (a *ShipmentsAPI) ScanHistory(ctx context.Context, req LookupRequest) ([]*models.ScanLog, error) {
	if err := validateRequest(a.validate, req); err != nil {
		return nil, err
	}
	return a.tracking.ScanHistory(ctx, req.TrackingNumber)
}

func (a *ShipmentsAPI) Shipments(ctx context.Context, req ListShipmentsRequest) (*staff.ShipmentPage, error) {
	if err := validateRequest(a.validate, req); err != nil {
		return nil, err
	}
	return a.staff.ListShipments(ctx, staff.ListQuery{
		Status: req.Status,
		Search: req.Search,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// gRPC surface.

func (a *ShipmentsAPI) AdvanceShipment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req AdvanceRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request body")
	}
	res, err := a.Advance(ctx, req)
	if err != nil {
		slog.Error("advance shipment",
			"tracking_number", req.TrackingNumber,
			"new_status", req.NewStatus,
			"error", err.Error(),
		)
		return nil, toStatus(err, advanceFailedMessage)
	}
	return toStruct(res)
}

func (a *ShipmentsAPI) LookupShipment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req LookupRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request body")
	}
	v, err := a.Lookup(ctx, req)
	if err != nil {
		if !errors.Is(err, models.ErrShipmentNotFound) {
			slog.Error("lookup shipment", "tracking_number", req.TrackingNumber, "error", err.Error())
		}
		return nil, toStatus(err, lookupFailedMessage)
	}
	return toStruct(v)
}

func (a *ShipmentsAPI) ListScans(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req LookupRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request body")
	}
	scans, err := a.ScanHistory(ctx, req)
	if err != nil {
		if !errors.Is(err, models.ErrShipmentNotFound) {
			slog.Error("list scans", "tracking_number", req.TrackingNumber, "error", err.Error())
		}
		return nil, toStatus(err, lookupFailedMessage)
	}
	return toStruct(map[string]any{"tracking_number": req.TrackingNumber, "scans": scans})
}

func (a *ShipmentsAPI) ListShipments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ListShipmentsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request body")
	}
	page, err := a.Shipments(ctx, req)
	if err != nil {
		slog.Error("list shipments", "status", req.Status, "search", req.Search, "error", err.Error())
		return nil, toStatus(err, listFailedMessage)
	}
	return toStruct(page)
}

// toStatus never leaks the cause of an internal failure.
func toStatus(err error, internalMsg string) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Msg)
	case errors.Is(err, models.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, models.ErrShipmentNotFound):
		return status.Error(codes.NotFound, tracking.NotFoundMessage)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	default:
		return status.Error(codes.Internal, internalMsg)
	}
}

func fromStruct(in *structpb.Struct, out any) error {
	if in == nil {
		return nil
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshal struct")
	}
	return errors.Wrap(json.Unmarshal(b, out), "decode request")
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}
