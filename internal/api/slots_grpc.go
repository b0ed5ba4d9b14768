package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Сервис описан вручную: сообщения передаются как google.protobuf.Struct,
// поэтому отдельный .proto и сгенерированный код не нужны.
const (
	SlotServiceName       = "servicehours.slots.v1.SlotService"
	MethodGetSlots        = "/" + SlotServiceName + "/GetSlots"
	MethodListRestaurants = "/" + SlotServiceName + "/ListRestaurants"
)

// SlotServiceServer is the server API of servicehours.slots.v1.SlotService.
//
// GetSlots expects restaurant_id (number or string), optional date (YYYY-MM-DD,
// defaults to today) and optional ignore_booking_duration.
type SlotServiceServer interface {
	GetSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListRestaurants(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func RegisterSlotServiceServer(s grpc.ServiceRegistrar, srv SlotServiceServer) {
	s.RegisterService(&SlotServiceDesc, srv)
}

var SlotServiceDesc = grpc.ServiceDesc{
	ServiceName: SlotServiceName,
	HandlerType: (*SlotServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSlots", Handler: getSlotsHandler},
		{MethodName: "ListRestaurants", Handler: listRestaurantsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "servicehours/slots/v1/slots.proto",
}

func getSlotsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SlotServiceServer).GetSlots(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodGetSlots}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SlotServiceServer).GetSlots(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listRestaurantsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SlotServiceServer).ListRestaurants(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodListRestaurants}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SlotServiceServer).ListRestaurants(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// SlotServiceClient calls servicehours.slots.v1.SlotService.
type SlotServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSlotServiceClient(cc grpc.ClientConnInterface) *SlotServiceClient {
	return &SlotServiceClient{cc: cc}
}

func (c *SlotServiceClient) GetSlots(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodGetSlots, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SlotServiceClient) ListRestaurants(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodListRestaurants, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
