package shipments_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages travel as google.protobuf.Struct holding the same JSON the HTTP routes return.
const (
	ServiceName = "shiptrack.v1.ShipmentsService"

	methodAdvanceShipment = "/" + ServiceName + "/AdvanceShipment"
	methodLookupShipment  = "/" + ServiceName + "/LookupShipment"
	methodListScans       = "/" + ServiceName + "/ListScans"
	methodListShipments   = "/" + ServiceName + "/ListShipments"
)

type ShipmentsServiceServer interface {
	AdvanceShipment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	LookupShipment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListScans(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListShipments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var ShipmentsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShipmentsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AdvanceShipment", Handler: unaryHandler(methodAdvanceShipment, ShipmentsServiceServer.AdvanceShipment)},
		{MethodName: "LookupShipment", Handler: unaryHandler(methodLookupShipment, ShipmentsServiceServer.LookupShipment)},
		{MethodName: "ListScans", Handler: unaryHandler(methodListScans, ShipmentsServiceServer.ListScans)},
		{MethodName: "ListShipments", Handler: unaryHandler(methodListShipments, ShipmentsServiceServer.ListShipments)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shiptrack/v1/shipments",
}

func RegisterShipmentsServiceServer(s grpc.ServiceRegistrar, srv ShipmentsServiceServer) {
	s.RegisterService(&ShipmentsService_ServiceDesc, srv)
}

type unaryMethod func(srv ShipmentsServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, m unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m(srv.(ShipmentsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return m(srv.(ShipmentsServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type ShipmentsServiceClient interface {
	AdvanceShipment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	LookupShipment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListScans(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListShipments(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type shipmentsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewShipmentsServiceClient(cc grpc.ClientConnInterface) ShipmentsServiceClient {
	return &shipmentsServiceClient{cc: cc}
}

func (c *shipmentsServiceClient) AdvanceShipment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodAdvanceShipment, in, opts...)
}

func (c *shipmentsServiceClient) LookupShipment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodLookupShipment, in, opts...)
}

func (c *shipmentsServiceClient) ListScans(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListScans, in, opts...)
}

func (c *shipmentsServiceClient) ListShipments(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListShipments, in, opts...)
}

func (c *shipmentsServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
