package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"servicehours/internal/domain"
	"servicehours/internal/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// SlotGRPCService serves slot lists over gRPC.
type SlotGRPCService struct {
	slots    domain.SlotProvider
	schedule domain.ScheduleManager
}

func NewSlotGRPCService(slots domain.SlotProvider, schedule domain.ScheduleManager) *SlotGRPCService {
	return &SlotGRPCService{slots: slots, schedule: schedule}
}

func (s *SlotGRPCService) GetSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	restaurantID, err := int64Field(fields, "restaurant_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	date := s.slots.Today()
	if raw := strings.TrimSpace(fields["date"].GetStringValue()); raw != "" {
		date, err = time.Parse(models.DateLayout, raw)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid date format; expected YYYY-MM-DD")
		}
	}

	ignore := fields["ignore_booking_duration"].GetBoolValue()

	list, err := s.slots.GetServiceTimes(ctx, restaurantID, date, ignore)
	if err != nil {
		return nil, grpcError(err)
	}

	values := make([]any, len(list))
	for i, v := range list {
		values[i] = v
	}

	resp, err := structpb.NewStruct(map[string]any{
		"restaurant_id":           restaurantID,
		"date":                    date.Format(models.DateLayout),
		"ignore_booking_duration": ignore,
		"slots":                   values,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return resp, nil
}

func (s *SlotGRPCService) ListRestaurants(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	restaurants, err := s.schedule.ListRestaurants(ctx)
	if err != nil {
		return nil, grpcError(err)
	}

	items := make([]any, 0, len(restaurants))
	for _, r := range restaurants {
		items = append(items, map[string]any{
			"id":                            r.ID,
			"name":                          r.Name,
			"booking_time_step_minutes":     r.Step(),
			"booking_duration":              r.BookingDuration,
			"widget_booking_minutes_before": r.WidgetBookingMinutesBefore,
		})
	}

	resp, err := structpb.NewStruct(map[string]any{"restaurants": items})
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return resp, nil
}

func int64Field(fields map[string]*structpb.Value, name string) (int64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(kind.StringValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}
}
