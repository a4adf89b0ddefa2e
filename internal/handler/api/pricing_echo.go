package api

import (
	"errors"
	"net/http"

	models "FuelPilot/internal/domain/models"
	"FuelPilot/internal/pricing"
	"FuelPilot/internal/service/ratelimit"
	"FuelPilot/internal/usecase"
	xhttp "FuelPilot/pkg/http"
	xlogger "FuelPilot/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PricingEchoHandler exposes the pricing engine over HTTP.
type PricingEchoHandler struct {
	logger  *xlogger.Logger
	pricing *usecase.PricingUsecase
	limiter *ratelimit.Limiter
}

func NewPricingEchoHandler(logger *xlogger.Logger, pricing *usecase.PricingUsecase, limiter *ratelimit.Limiter) *PricingEchoHandler {
	return &PricingEchoHandler{logger: logger, pricing: pricing, limiter: limiter}
}

func (h *PricingEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/recommend", h.Recommend)
	g.GET("/recommendation", h.GetRecommendation)
	g.POST("/history", h.AppendHistory)
	g.POST("/features/rebuild", h.RebuildFeatures)
}

type recommendResponse struct {
	Recommendation *models.Recommendation   `json:"recommendation"`
	Candidates     []models.CandidateResult `json:"candidates"`
}

// Recommend runs a full pricing pass. Model scoring can be expensive, so the
// endpoint is rate limited per client IP.
func (h *PricingEchoHandler) Recommend(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow("recommend:"+c.RealIP(), 5, 1) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
	}

	req := &models.RecommendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, candidates, err := h.pricing.Recommend(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("recommend usecase error",
			xlogger.String("product", req.Product),
			xlogger.Error(err),
		)
		return h.pricingErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, &recommendResponse{Recommendation: rec, Candidates: candidates})
}

func (h *PricingEchoHandler) GetRecommendation(c echo.Context) error {
	req := &models.RecommendationQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, err := h.pricing.GetRecommendation(c.Request().Context(), req.Product, req.Date)
	if err != nil {
		h.logger.Error("get recommendation error", xlogger.Error(err))
		return h.pricingErrorResponse(c, err)
	}
	if rec == nil {
		return xhttp.NotFoundResponse(c, "no recommendation for this product and date")
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *PricingEchoHandler) AppendHistory(c echo.Context) error {
	req := &models.HistoryAppendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.pricing.AppendHistory(c.Request().Context(), req); err != nil {
		h.logger.Error("history append error", xlogger.Error(err))
		return h.pricingErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, nil)
}

func (h *PricingEchoHandler) RebuildFeatures(c echo.Context) error {
	req := &models.FeatureRebuildRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	n, err := h.pricing.RebuildFeatures(c.Request().Context(), req.Product)
	if err != nil {
		h.logger.Error("feature rebuild error", xlogger.Error(err))
		return h.pricingErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]int{"rows": n})
}

// pricingErrorResponse maps engine errors onto HTTP statuses.
func (h *PricingEchoHandler) pricingErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, pricing.ErrInsufficientHistory), errors.Is(err, pricing.ErrInvalidRange):
		return xhttp.BadRequestResponse(c, err.Error())
	case errors.Is(err, pricing.ErrModelUnavailable):
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		return xhttp.AppErrorResponse(c, err)
	}
}
