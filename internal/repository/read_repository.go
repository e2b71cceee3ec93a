package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// InventoryRepository defines the read operations against the inventory store.
// Both finders return rows ordered by reference ascending, at most limit of them.
type InventoryRepository interface {
	FindByBarcode(ctx context.Context, barcode string, limit int) ([]Record, error)
	FindByReference(ctx context.Context, reference string, limit int) ([]Record, error)
	// Health runs a trivial probe and returns its rows.
	Health(ctx context.Context) ([]map[string]interface{}, error)
	Close() error
}

// Record is one raw inventory row as read from the store, before pricing.
type Record struct {
	Reference      string
	Barcode        string
	Name           string
	ListPrice      *decimal.Decimal
	InitialCost    *decimal.Decimal
	PromotionFlag  interface{}
	PromotionPrice *decimal.Decimal
	WholesalePrice *decimal.Decimal
	AverageCost    *decimal.Decimal
	Stock          *decimal.Decimal
	Category       string
	Brand          string
	Store          string
	Region         string
}

// InMemoryRepository serves a fixed set of rows. It backs DB_DRIVER=memory and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

func NewInMemoryRepository(records ...Record) *InMemoryRepository {
	r := &InMemoryRepository{}
	r.Add(records...)
	return r
}

// Add appends rows to the store.
func (r *InMemoryRepository) Add(records ...Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
	sort.SliceStable(r.records, func(i, j int) bool {
		return r.records[i].Reference < r.records[j].Reference
	})
}

func (r *InMemoryRepository) FindByBarcode(ctx context.Context, barcode string, limit int) ([]Record, error) {
	return r.filter(limit, func(rec Record) bool { return rec.Barcode == barcode }), nil
}

func (r *InMemoryRepository) FindByReference(ctx context.Context, reference string, limit int) ([]Record, error) {
	needle := strings.ToUpper(reference)
	return r.filter(limit, func(rec Record) bool {
		return strings.Contains(strings.ToUpper(rec.Reference), needle)
	}), nil
}

func (r *InMemoryRepository) Health(ctx context.Context) ([]map[string]interface{}, error) {
	return []map[string]interface{}{{"ok": 1, "db": "memory", "userName": ""}}, nil
}

func (r *InMemoryRepository) Close() error {
	return nil
}

func (r *InMemoryRepository) filter(limit int, match func(Record) bool) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0)
	for _, rec := range r.records {
		if len(out) >= limit {
			break
		}
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out
}
