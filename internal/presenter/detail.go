package presenter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"price-lookup/internal/models"

	"go.uber.org/zap"
)

var (
	ErrMissingParameters = errors.New("missing parameters")
	ErrItemNotFound      = errors.New("the requested item was not found")
	ErrServer            = errors.New("error querying the server")
)

// Searcher runs inventory searches against the API.
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
}

// Detail is the item detail view. It always re-queries the API by the
// identifier it was opened with.
type Detail struct {
	searcher Searcher
	logger   *zap.Logger
}

func NewDetail(searcher Searcher, logger *zap.Logger) *Detail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detail{searcher: searcher, logger: logger}
}

// Load resolves ref to a single item; the barcode wins when both are set.
func (d *Detail) Load(ctx context.Context, ref models.ItemRef) (*models.InventoryItem, error) {
	if ref.Empty() {
		return nil, ErrMissingParameters
	}

	res, err := d.searcher.Search(ctx, ref.Query())
	if err != nil {
		d.logger.Warn("Detail lookup failed",
			zap.String("barcode", ref.Barcode),
			zap.String("reference", ref.Reference),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}
	if len(res.Data) == 0 {
		return nil, ErrItemNotFound
	}
	item := res.Data[0]
	return &item, nil
}

// Show loads ref and renders it to w, or prints why it could not.
// The loaded item is returned for follow-up copy actions.
func (d *Detail) Show(ctx context.Context, w io.Writer, ref models.ItemRef) (*models.InventoryItem, error) {
	item, err := d.Load(ctx, ref)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrServer) {
			msg = ErrServer.Error()
		}
		fmt.Fprintln(w, msg)
		return nil, err
	}
	return item, Render(w, *item)
}
