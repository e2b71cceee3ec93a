package handlers

import (
	"context"
	"net/http"
	"time"

	"price-lookup/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// dbProbeTimeout bounds the database health probe.
const dbProbeTimeout = 5 * time.Second

// HealthChecker probes the inventory store.
type HealthChecker interface {
	Health(ctx context.Context) ([]map[string]interface{}, error)
}

type HealthHandler struct {
	logger  *zap.Logger
	db      HealthChecker
	started time.Time
	now     func() time.Time
}

func NewHealthHandler(logger *zap.Logger, db HealthChecker) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		db:      db,
		started: time.Now(),
		now:     time.Now,
	}
}

// Health godoc
// @Summary      Health check endpoint
// @Description  Verifica que el proceso está vivo. No consulta la base de datos.
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse  "Servicio operativo"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: h.now().Sub(h.started).Seconds(),
	})
}

// DBHealth godoc
// @Summary      Database health probe
// @Description  Ejecuta una consulta mínima contra la base de inventario (ok, nombre de la base, usuario).
// @Tags         health
// @Produce      json
// @Success      200  {object}  DBHealthResponse  "Base de datos disponible"
// @Failure      500  {object}  DBHealthResponse  "Base de datos no disponible"
// @Router       /db/health [get]
func (h *HealthHandler) DBHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbProbeTimeout)
	defer cancel()

	rows, err := h.db.Health(ctx)
	if err != nil {
		h.logger.Error("Database health probe failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, DBHealthResponse{DB: "down", Error: "database unreachable"})
		return
	}

	c.JSON(http.StatusOK, DBHealthResponse{DB: "up", Result: rows})
}
