package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/citylight/citylight-go/internal/middleware"
	"github.com/citylight/citylight-go/internal/models"
	"github.com/citylight/citylight-go/internal/service"
	"github.com/citylight/citylight-go/pkg/response"
)

// LocationHandler handles HTTP requests for sample ingestion and trajectory
// reads
type LocationHandler struct {
	ingestService *service.IngestService
	traceService  *service.TraceService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(ingestService *service.IngestService, traceService *service.TraceService) *LocationHandler {
	return &LocationHandler{
		ingestService: ingestService,
		traceService:  traceService,
	}
}

// UploadLocation handles POST /location
func (h *LocationHandler) UploadLocation(c *gin.Context) {
	var upload models.LocationUpload
	if err := c.ShouldBindJSON(&upload); err != nil {
		response.ValidationFailed(c, bindingFieldErrors(err))
		return
	}
	if errs := upload.Validate(); len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	result, err := h.ingestService.Ingest(c.Request.Context(), middleware.UserID(c), &upload)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, result)
}

// GetTrajectory handles GET /trajectory?startDate=&endDate=
func (h *LocationHandler) GetTrajectory(c *gin.Context) {
	startMs, err := parseTimeBound(c.Query("startDate"), false)
	if err != nil {
		response.BadRequest(c, "invalid startDate: use epoch millis or YYYY-MM-DD")
		return
	}
	endMs, err := parseTimeBound(c.Query("endDate"), true)
	if err != nil {
		response.BadRequest(c, "invalid endDate: use epoch millis or YYYY-MM-DD")
		return
	}

	samples, err := h.traceService.GetTrajectory(middleware.UserID(c), startMs, endMs)
	if errors.Is(err, service.ErrInvalidTimeRange) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"points": samples,
		"count":  len(samples),
	})
}

// parseTimeBound accepts either epoch milliseconds or a YYYY-MM-DD calendar
// date (UTC). A date used as an end bound covers the whole day.
func parseTimeBound(raw string, endOfDay bool) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return 0, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t.UnixMilli(), nil
}

// bindingFieldErrors maps JSON binding failures onto the per-field error
// list of the validation error contract.
func bindingFieldErrors(err error) []response.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]response.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, response.FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: "failed " + fe.Tag() + " validation",
			})
		}
		return out
	}
	return []response.FieldError{{Field: "body", Message: "invalid request body"}}
}
