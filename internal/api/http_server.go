package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"servicehours/internal/config"
	"servicehours/internal/domain"
	"servicehours/internal/export"
	"servicehours/internal/logging"
	"servicehours/internal/metrics"
	"servicehours/internal/models"
	"servicehours/internal/slots"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader   = "X-Request-ID"
	defaultExportDays = 7
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// HTTPServer exposes the JSON API alongside the gRPC service.
type HTTPServer struct {
	cfg      config.APIConfig
	slots    domain.SlotProvider
	schedule domain.ScheduleManager
	server   *http.Server
	auth     *HTTPAuth
	log      zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, slots domain.SlotProvider, schedule domain.ScheduleManager, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{cfg: cfg, slots: slots, schedule: schedule, log: logging.Component(logger, "http")}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.Handle("GET /api/v1/restaurants", srv.auth.Require(permReadRestaurants, srv.handleRestaurants))
	mux.Handle("GET /api/v1/restaurants/{id}/slots", srv.auth.Require(permReadSlots, srv.handleSlots))
	mux.Handle("GET /api/v1/restaurants/{id}/slots/export", srv.auth.Require(permReadSlots, srv.handleExport))
	mux.Handle("PUT /api/v1/restaurants/{id}/service-hours/{day}", srv.auth.Require(permWriteSchedule, srv.handleReplaceServiceHours))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           requestIDMiddleware(srv.loggingMiddleware(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := s.schedule.ListRestaurants(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if restaurants == nil {
		restaurants = []*models.Restaurant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": restaurants})
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathID(w, r)
	if !ok {
		return
	}

	date, ok := s.queryDate(w, r, "date")
	if !ok {
		return
	}

	ignore := false
	if raw := strings.TrimSpace(r.URL.Query().Get("ignore_booking_duration")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "ignore_booking_duration must be a boolean")
			return
		}
		ignore = parsed
	}

	list, err := s.slots.GetServiceTimes(r.Context(), restaurantID, date, ignore)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"restaurant_id":           restaurantID,
		"date":                    date.Format(models.DateLayout),
		"ignore_booking_duration": ignore,
		"slots":                   list,
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathID(w, r)
	if !ok {
		return
	}

	from, ok := s.queryDate(w, r, "from")
	if !ok {
		return
	}

	days := defaultExportDays
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = n
	}

	restaurant, err := s.schedule.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	rangeSlots, err := s.slots.GetSlotRange(r.Context(), restaurantID, from, days, false)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	// Пишем в буфер, чтобы при ошибке успеть ответить JSON
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, restaurant, rangeSlots); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(restaurant, rangeSlots)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type replaceServiceHoursRequest struct {
	Windows []slots.ServiceWindow `json:"windows"`
}

func (s *HTTPServer) handleReplaceServiceHours(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathID(w, r)
	if !ok {
		return
	}

	var body replaceServiceHoursRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.schedule.ReplaceServiceHours(r.Context(), restaurantID, r.PathValue("day"), body.Windows); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryDate reads a YYYY-MM-DD query parameter, defaulting to today.
func (s *HTTPServer) queryDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return s.slots.Today(), true
	}
	date, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s format; expected YYYY-MM-DD", name))
		return time.Time{}, false
	}
	return date, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "restaurant id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(err)
	if code == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, code, "internal error")
		return
	}
	writeError(w, code, err.Error())
}

// HTTPAuth provides API-key auth and per-key rate limiting for HTTP endpoints.
type HTTPAuth struct {
	cfg     config.APIConfig
	keys    *keyring
	limiter *rateLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{cfg: cfg, keys: newKeyring(cfg.Auth), limiter: newRateLimiter(cfg.RateLimit)}
}

// Require guards a route with the given permission and the rate limit.
func (a *HTTPAuth) Require(permission string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.Auth.Enabled {
			client, err := a.keys.authenticate(
				strings.TrimSpace(r.Header.Get(a.keys.apiKeyHeader)),
				strings.TrimSpace(r.Header.Get(a.keys.extraHeader)),
			)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if err := authorize(client, permission); err != nil {
				writeError(w, http.StatusForbidden, err.Error())
				return
			}
		}

		if !a.limiter.allow(a.clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, errRateLimited.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.keys.apiKeyHeader)); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		// ServeMux заполняет r.Pattern у того же запроса
		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint)

		s.log.Info().
			Str("request_id", requestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
