package handlers

import (
	"context"
	"net/http"

	"price-lookup/internal/metrics"
	"price-lookup/internal/models"
	"price-lookup/pkg/errors"
	"price-lookup/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateSource returns the current retail rate.
type RateSource interface {
	RetailRate(ctx context.Context) (*models.RateQuote, error)
}

type RateHandler struct {
	logger  *zap.Logger
	rates   RateSource
	metrics *metrics.HTTPMetrics
}

func NewRateHandler(logger *zap.Logger, rates RateSource, m *metrics.HTTPMetrics) *RateHandler {
	return &RateHandler{
		logger:  logger,
		rates:   rates,
		metrics: m,
	}
}

// TasaDetal handles GET /api/tasa-detal
// @Summary      Retail currency rate
// @Description  Consulta la tasa DETAL en la API externa configurada (TASA_API_URL con cabecera x-api-key). Sin caché: cada llamada consulta el proveedor.
// @Tags         rates
// @Produce      json
// @Success      200  {object}  RateResponse   "Tasa vigente"
// @Failure      404  {object}  ErrorResponse  "El proveedor no devolvió tasa"
// @Failure      500  {object}  ErrorResponse  "Falta TASA_API_URL o TASA_API_KEY"
// @Failure      502  {object}  ErrorResponse  "El proveedor respondió con error"
// @Router       /tasa-detal [get]
func (h *RateHandler) TasaDetal(c *gin.Context) {
	quote, err := h.rates.RetailRate(c.Request.Context())
	if err != nil {
		outcome := errors.CodeInternal
		if se, ok := errors.As(err); ok {
			outcome = se.Code
		} else {
			err = errors.NewInternalError("rate lookup failed", err)
		}
		if errors.HasCode(err, errors.CodeConfig) {
			h.logger.Warn("Rate bridge not configured, set TASA_API_URL and TASA_API_KEY",
				zap.String("request_id", middleware.GetRequestID(c)),
			)
		}
		h.observe(outcome)
		c.Error(err)
		return
	}

	h.observe("ok")
	c.JSON(http.StatusOK, quote)
}

func (h *RateHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveRateLookup(outcome)
	}
}
