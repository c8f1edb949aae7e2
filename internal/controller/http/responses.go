package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
	"github.com/markoalleno/response-time-sub001/internal/domain/responses/policy"
	"github.com/markoalleno/response-time-sub001/internal/domain/responses/service"
	"github.com/markoalleno/response-time-sub001/internal/httpx/response"
)

// ResponsesPolicy defines the interface for response analytics operations
type ResponsesPolicy interface {
	GetMetrics(ctx context.Context, in policy.AnalyticsInput) (*entity.ResponseMetrics, error)
	GetScore(ctx context.Context, in policy.AnalyticsInput) (*entity.ResponseScore, error)
	GetInsights(ctx context.Context, in policy.AnalyticsInput) ([]entity.Insight, error)
	GetWindows(ctx context.Context, in policy.GetWindowsInput) (*service.GetWindowsOutput, error)
	Sync(ctx context.Context, in policy.SyncInput) error
	ExcludeParticipant(ctx context.Context, in policy.ExcludeParticipantInput) (int64, error)
	ArchiveSnapshot(ctx context.Context, in policy.AnalyticsInput) (string, error)
}

// ResponsesHandler handles HTTP requests for response analytics
type ResponsesHandler struct {
	policy ResponsesPolicy
}

// NewResponsesHandler creates a new response analytics handler
func NewResponsesHandler(p ResponsesPolicy) *ResponsesHandler {
	return &ResponsesHandler{policy: p}
}

// RegisterRoutes registers response analytics routes
func (h *ResponsesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/responses", func(r chi.Router) {
		// Percentile and trend statistics
		r.Get("/metrics", h.GetMetrics())

		// Composite performance score
		r.Get("/score", h.GetScore())

		// Ranked insight list
		r.Get("/insights", h.GetInsights())

		// Raw response windows
		r.Get("/windows", h.GetWindows())

		// Trigger ingestion for an account
		r.Post("/sync", h.Sync())

		// Archive a metrics/score snapshot
		r.Post("/snapshots", h.ArchiveSnapshot())

		// Toggle participant exclusion
		r.Post("/participants/{participantId}/exclude", h.ExcludeParticipant())
	})
}

// analyticsQuery parses the shared account_id/platform/range query
// parameters used by every analytics endpoint.
func analyticsQuery(r *http.Request) (policy.AnalyticsInput, error) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		return policy.AnalyticsInput{}, errors.New("account_id is required")
	}

	timeRange, err := entity.ParseTimeRange(r.URL.Query().Get("range"))
	if err != nil {
		return policy.AnalyticsInput{}, err
	}

	return policy.AnalyticsInput{
		AccountID: accountID,
		Platform:  r.URL.Query().Get("platform"),
		TimeRange: timeRange,
	}, nil
}

// GetMetrics handles GET /responses/metrics
func (h *ResponsesHandler) GetMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := analyticsQuery(r)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		metrics, err := h.policy.GetMetrics(r.Context(), in)
		if err != nil {
			handleResponsesError(w, err)
			return
		}

		response.OK(w, metrics)
	}
}

// GetScore handles GET /responses/score
func (h *ResponsesHandler) GetScore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := analyticsQuery(r)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		score, err := h.policy.GetScore(r.Context(), in)
		if err != nil {
			handleResponsesError(w, err)
			return
		}

		response.OK(w, score)
	}
}

// GetInsightsResponse represents the response for getting insights
type GetInsightsResponse struct {
	Insights []entity.Insight `json:"insights"`
}

// GetInsights handles GET /responses/insights
func (h *ResponsesHandler) GetInsights() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := analyticsQuery(r)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		insights, err := h.policy.GetInsights(r.Context(), in)
		if err != nil {
			handleResponsesError(w, err)
			return
		}

		response.OK(w, GetInsightsResponse{Insights: insights})
	}
}

// GetWindowsResponse represents the response for listing windows
type GetWindowsResponse struct {
	Windows []entity.ResponseWindow `json:"windows"`
	Total   int64                   `json:"total"`
	HasMore bool                    `json:"has_more"`
}

// GetWindows handles GET /responses/windows
func (h *ResponsesHandler) GetWindows() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := analyticsQuery(r)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		limit := 50
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
				if limit > 100 {
					limit = 100
				}
			}
		}

		offset := 0
		if o := r.URL.Query().Get("offset"); o != "" {
			if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
				offset = parsed
			}
		}

		result, err := h.policy.GetWindows(r.Context(), policy.GetWindowsInput{
			AccountID: in.AccountID,
			Platform:  in.Platform,
			TimeRange: in.TimeRange,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			handleResponsesError(w, err)
			return
		}

		response.OK(w, GetWindowsResponse{
			Windows: result.Windows,
			Total:   result.Total,
			HasMore: result.HasMore,
		})
	}
}

// SyncRequest represents the request body for triggering a sync
type SyncRequest struct {
	AccountID string `json:"account_id"`
}

// SyncResponse represents the response for triggering a sync
type SyncResponse struct {
	Status string `json:"status"`
}

// Sync handles POST /responses/sync
func (h *ResponsesHandler) Sync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		if req.AccountID == "" {
			response.BadRequest(w, "account_id is required")
			return
		}

		if err := h.policy.Sync(r.Context(), policy.SyncInput{AccountID: req.AccountID}); err != nil {
			handleResponsesError(w, err)
			return
		}

		response.Accepted(w, SyncResponse{Status: "synced"})
	}
}

// ArchiveSnapshotResponse represents the response for archiving a snapshot
type ArchiveSnapshotResponse struct {
	Key string `json:"key"`
}

// ArchiveSnapshot handles POST /responses/snapshots
func (h *ResponsesHandler) ArchiveSnapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := analyticsQuery(r)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		key, err := h.policy.ArchiveSnapshot(r.Context(), in)
		if err != nil {
			handleResponsesError(w, err)
			return
		}

		response.OK(w, ArchiveSnapshotResponse{Key: key})
	}
}

// ExcludeParticipantRequest represents the request body for toggling exclusion
type ExcludeParticipantRequest struct {
	AccountID string `json:"account_id"`
	Excluded  *bool  `json:"excluded"`
}

// ExcludeParticipantResponse represents the response for toggling exclusion
type ExcludeParticipantResponse struct {
	ParticipantID string `json:"participant_id"`
	Excluded      bool   `json:"excluded"`
	EventsUpdated int64  `json:"events_updated"`
}

// ExcludeParticipant handles POST /responses/participants/{participantId}/exclude
func (h *ResponsesHandler) ExcludeParticipant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participantID := chi.URLParam(r, "participantId")

		var req ExcludeParticipantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		if req.AccountID == "" {
			response.BadRequest(w, "account_id is required")
			return
		}

		// Missing flag defaults to excluding.
		excluded := true
		if req.Excluded != nil {
			excluded = *req.Excluded
		}

		updated, err := h.policy.ExcludeParticipant(r.Context(), policy.ExcludeParticipantInput{
			AccountID:     req.AccountID,
			ParticipantID: participantID,
			Excluded:      excluded,
		})
		if err != nil {
			handleResponsesError(w, err)
			return
		}

		response.OK(w, ExcludeParticipantResponse{
			ParticipantID: participantID,
			Excluded:      excluded,
			EventsUpdated: updated,
		})
	}
}

func handleResponsesError(w http.ResponseWriter, err error) {
	var syncErr *service.SyncError
	if errors.As(err, &syncErr) {
		response.Error(w, http.StatusBadGateway, syncErr.Error())
		return
	}

	switch {
	case errors.Is(err, entity.ErrInvalidTimeRange):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrInvalidDirection):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrAccountNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrEventNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrUnauthorized):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, entity.ErrRateLimited):
		response.Error(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, entity.ErrSyncInProgress):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
