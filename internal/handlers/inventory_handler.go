package handlers

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"price-lookup/internal/metrics"
	"price-lookup/internal/models"
	"price-lookup/internal/search"
	"price-lookup/pkg/errors"
	"price-lookup/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// maxSearchBody bounds the request body read for POST searches.
const maxSearchBody = 64 << 10

// Searcher runs inventory searches.
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
}

type InventoryHandler struct {
	logger   *zap.Logger
	searcher Searcher
	metrics  *metrics.HTTPMetrics
}

// NewInventoryHandler creates the search handler. m may be nil.
func NewInventoryHandler(logger *zap.Logger, searcher Searcher, m *metrics.HTTPMetrics) *InventoryHandler {
	return &InventoryHandler{
		logger:   logger,
		searcher: searcher,
		metrics:  m,
	}
}

// Buscar handles GET|POST /api/buscar (also /buscar and /buscar.php)
// @Summary      Search inventory
// @Description  Busca artículos de inventario por código de barras (coincidencia exacta) o por referencia (subcadena, sin distinguir mayúsculas). Los precios se devuelven con IVA incluido (base × 1.16, redondeado a 2 decimales).
//
// **Parámetros aceptados (cuerpo JSON/form o query string):**
// - Código de barras: `barcode`, `codigo_barra`, `codigobarra`, `codbarra`, `ean`, `upc`
// - Referencia: `referencia`, `ref`, `q`, `termino`, `codigo`
// - `one`: modo de un solo resultado (`1`, `true`)
//
// Si se envían ambos, el código de barras tiene prioridad. Máximo 50 filas ordenadas por referencia.
//
// **Ejemplos válidos:**
// - `GET /api/buscar?barcode=7501234567890&one=1`
// - `GET /api/buscar?referencia=ABC`
// - `POST /api/buscar` con `{"ref":"SHIRT","one":true}`
//
// **Ejemplos inválidos:**
// - Sin parámetros: `GET /api/buscar`
// - Solo espacios: `GET /api/buscar?barcode=%20%20`
//
// @Tags         inventory
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        X-Request-ID  header    string         false  "Request ID for request tracking (UUID). If not provided, a new one will be generated."
// @Param        barcode       query     string         false  "Exact barcode" example(7501234567890)
// @Param        referencia    query     string         false  "Reference substring" example(ABC)
// @Param        one           query     string         false  "Single-result mode" example(1)
// @Param        request       body      SearchRequest  false  "Search parameters (POST)"
// @Success      200           {object}  SearchResponse  "Resultado de la búsqueda (count puede ser 0)"
// @Failure      400           {object}  ErrorResponse   "Falta el parámetro de búsqueda"
// @Failure      500           {object}  ErrorResponse   "Error consultando la base de datos"
// @Router       /buscar [get]
// @Router       /buscar [post]
func (h *InventoryHandler) Buscar(c *gin.Context) {
	values, err := searchParams(c)
	if err != nil {
		h.observe("none", errors.CodeValidation, 0)
		c.Error(err)
		return
	}

	q, err := search.ParseQuery(values)
	if err != nil {
		h.observe("none", errors.CodeValidation, 0)
		c.Error(err)
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), q)
	if err != nil {
		outcome := errors.CodeInternal
		if se, ok := errors.As(err); ok {
			outcome = se.Code
		}
		h.observe(q.Mode(), outcome, 0)
		h.logger.Debug("Search failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		c.Error(err)
		return
	}

	h.observe(result.By, "ok", result.Count)
	c.JSON(http.StatusOK, result)
}

func (h *InventoryHandler) observe(by, outcome string, count int) {
	if h.metrics != nil {
		h.metrics.ObserveSearch(by, outcome, count)
	}
}

// searchParams returns the body parameters when the body carries any,
// otherwise the query string.
func searchParams(c *gin.Context) (map[string]interface{}, error) {
	values := map[string]interface{}{}
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSearchBody)
	}

	switch c.ContentType() {
	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, errors.NewValidationError("invalid form body", "body")
		}
		for k, v := range c.Request.PostForm {
			values[k] = []string(v)
		}
	default:
		// numbers stay json.Number so long barcodes keep every digit
		if err := c.ShouldBindJSON(&values); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.NewValidationError("invalid JSON body", "body")
		}
	}

	if len(values) == 0 {
		for k, v := range c.Request.URL.Query() {
			values[k] = []string(v)
		}
	}
	return values, nil
}
