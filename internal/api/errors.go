package api

import (
	"errors"
	"net/http"

	"servicehours/internal/database"
	"servicehours/internal/export"
	"servicehours/internal/service"
	"servicehours/internal/slots"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrRestaurantNotFound)
}

func isInvalid(err error) bool {
	return errors.Is(err, database.ErrInvalidDay) ||
		errors.Is(err, slots.ErrInvalidTime) ||
		errors.Is(err, service.ErrInvalidRange) ||
		errors.Is(err, export.ErrNoDays)
}

// grpcError maps domain errors to status codes. Internal details are not leaked.
func grpcError(err error) error {
	switch {
	case isNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case isInvalid(err):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func httpStatus(err error) int {
	switch {
	case isNotFound(err):
		return http.StatusNotFound
	case isInvalid(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
