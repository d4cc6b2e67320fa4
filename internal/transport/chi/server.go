package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/phyrestorm/internal/domain"
	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
	logpkg "github.com/kailas-cloud/phyrestorm/internal/logger"
	healthuc "github.com/kailas-cloud/phyrestorm/internal/usecase/health"
)

// statusClientClosedRequest is the de facto status for requests the client abandoned.
const statusClientClosedRequest = 499

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// resultsService is the consumer interface for the results use case.
type resultsService interface {
	GetPage(ctx context.Context, jobID string, after *int64, limit *int) (page.Result, error)
	Count(ctx context.Context, jobID string) (int, error)
	Bounds() page.Bounds
}

// healthService is the consumer interface for the health use case.
type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the results API.
type Server struct {
	results       resultsService
	health        healthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(results resultsService, health healthService, logger *zap.Logger) *Server {
	s := &Server{
		results: results,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		cursorNotFoundHandler,
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorCodeInvalidArgument),
		sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, ErrorCodeTimeout),
		sentinelHandler(domain.ErrCanceled, statusClientClosedRequest, ErrorCodeCanceled),
		sentinelHandler(domain.ErrStorageUnavailable, http.StatusServiceUnavailable, ErrorCodeStorageUnavailable),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/api/results/{jobID}", s.GetResults)
	r.Get("/api/jobs/{jobID}", s.GetJob)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// GetResults handles GET /api/results/{jobID}.
func (s *Server) GetResults(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	params, err := bindResultsParams(r)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			s.handleDomainError(r.Context(), w, err)
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	limit := params.Limit
	if limit == nil {
		limit = params.PageSize
	}

	ctx := logpkg.With(r.Context(), zap.String("job_id", jobID))
	res, err := s.results.GetPage(ctx, jobID, params.After, limit)
	if err != nil {
		s.handleDomainError(ctx, w, err)
		return
	}

	resp := PageResponse{
		Items:      hitsToResponse(res.Hits),
		TotalCount: res.TotalCount,
		Limit:      s.results.Bounds().Default,
	}
	if limit != nil {
		resp.Limit = *limit
	}
	if last, ok := res.Last(); ok {
		resp.NextAfter = &last
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetJob handles GET /api/jobs/{jobID}.
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	ctx := logpkg.With(r.Context(), zap.String("job_id", jobID))
	n, err := s.results.Count(ctx, jobID)
	if err != nil {
		s.handleDomainError(ctx, w, err)
		return
	}

	b := s.results.Bounds()
	writeJSON(w, http.StatusOK, JobResponse{
		JobID:           jobID,
		TotalCount:      n,
		DefaultPageSize: b.Default,
		MaxPageSize:     b.Max,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func bindResultsParams(r *http.Request) (GetResultsParams, error) {
	var params GetResultsParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "after", query, &params.After); err != nil {
		return params, err //nolint:wrapcheck // message goes to the client as is
	}
	// A limit that is not an integer is an invalid limit, same as one out of range.
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		return params, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "page_size", query, &params.PageSize); err != nil {
		return params, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	return params, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing storage internals.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidArgument) {
		// Validation errors only describe the caller's own input.
		return err.Error()
	}
	sentinels := []error{
		domain.ErrCursorNotFound,
		domain.ErrTimeout,
		domain.ErrCanceled,
		domain.ErrStorageUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// cursorNotFoundHandler handles ErrCursorNotFound with the offending cursor in the body.
func cursorNotFoundHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrCursorNotFound) {
		return false
	}
	var cnf *domain.CursorNotFoundError
	if errors.As(err, &cnf) {
		writeJSON(w, http.StatusNotFound, CursorErrorResponse{
			Code:    ErrorCodeCursorNotFound,
			Message: cnf.Error(),
			JobID:   cnf.JobID,
			After:   cnf.StructureID,
		})
		return true
	}
	writeError(w, http.StatusNotFound, ErrorCodeCursorNotFound, msg)
	return true
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log, ok := logpkg.Lookup(ctx)
	if !ok {
		log = s.logger
	}
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func hitsToResponse(hits []hit.Hit) []HitResponse {
	items := make([]HitResponse, len(hits))
	for i, h := range hits {
		items[i] = hitToResponse(h)
	}
	return items
}

func hitToResponse(h hit.Hit) HitResponse {
	resp := HitResponse{
		Name:           h.Name(),
		StructureID:    h.StructureID(),
		PrimaryScore:   h.PrimaryScore(),
		SecondaryScore: h.SecondaryScore(),
		ClusterIndex:   h.ClusterIndex(),
		ChildIndex:     h.ChildIndex(),
	}
	if p, ok := h.AuxPath(); ok {
		resp.AuxPath = &p
	}
	return resp
}
