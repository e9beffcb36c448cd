package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/onboardhq/intake/internal/extract"
	"github.com/onboardhq/intake/internal/httputil"
	"github.com/onboardhq/intake/internal/logging"
	"github.com/onboardhq/intake/internal/metrics"
	"github.com/onboardhq/intake/internal/models"
	"github.com/onboardhq/intake/internal/ratelimit"
	"github.com/onboardhq/intake/internal/service"
)

// IntakeProcessor is the slice of the intake service the handler needs.
type IntakeProcessor interface {
	ProcessSubmission(ctx context.Context, payload extract.Payload) (int64, error)
	GetStats() models.IntakeStats
}

type IntakeHandler struct {
	service     IntakeProcessor
	limiter     ratelimit.RateLimiter
	logger      *logging.Logger
	maxBodySize int64
}

func NewIntakeHandler(svc IntakeProcessor, limiter ratelimit.RateLimiter, logger *logging.Logger, maxBodySize int64) *IntakeHandler {
	if limiter == nil {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeHandler{
		service:     svc,
		limiter:     limiter,
		logger:      logger,
		maxBodySize: maxBodySize,
	}
}

// HandleIntake serves the webhook path. GET answers with a probe hint so the
// form tool's "test webhook" button has something friendly to show; POST runs
// the full intake flow; everything else is 405.
func (h *IntakeHandler) HandleIntake(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSON(w, http.StatusOK, models.IntakeResponse{
			OK:   true,
			Hint: "Send POST with JSON body",
		})
	case http.MethodPost:
		h.handleSubmission(w, r)
	default:
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, models.IntakeResponse{
			OK:    false,
			Error: "Method not allowed",
		})
	}
}

func (h *IntakeHandler) handleSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sourceIP := httputil.GetClientIP(r)

	allowed, err := h.limiter.Allow(ctx, sourceIP)
	if err != nil {
		// A broken limiter must not drop submissions.
		h.logger.WarnContext(ctx, "Rate limiter unavailable", "error", err.Error())
		allowed = true
	}
	if !allowed {
		metrics.SubmissionsTotal.WithLabelValues("rate_limited").Inc()
		httputil.WriteJSON(w, http.StatusTooManyRequests, models.IntakeResponse{
			OK:    false,
			Error: "Too many requests",
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		httputil.WriteJSON(w, http.StatusBadRequest, models.IntakeResponse{
			OK:    false,
			Error: "Unable to read request body",
		})
		return
	}
	defer r.Body.Close()
	metrics.SubmissionBytesTotal.Add(float64(len(body)))

	// A body that is not a JSON object parses to nil and falls through to
	// validation, surfacing as the missing-email 400 rather than a distinct
	// parse error.
	payload := extract.Parse(body)

	clientID, err := h.service.ProcessSubmission(ctx, payload)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			metrics.SubmissionsTotal.WithLabelValues("validation_error").Inc()
			httputil.WriteJSON(w, http.StatusBadRequest, models.IntakeResponse{
				OK:    false,
				Error: validationErr.Error(),
			})
			return
		}

		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		h.logger.ErrorContext(ctx, "Submission failed",
			"source_ip", sourceIP,
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, models.IntakeResponse{
			OK:    false,
			Error: err.Error(),
		})
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	h.logger.InfoContext(ctx, "Submission accepted",
		"client_id", clientID,
		"source_ip", sourceIP,
	)
	httputil.WriteJSON(w, http.StatusOK, models.IntakeResponse{
		OK:       true,
		ClientID: clientID,
	})
}

func (h *IntakeHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (h *IntakeHandler) Ready(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"stats":  h.service.GetStats(),
	})
}
