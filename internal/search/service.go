// Package search implements the inventory lookup: parameter resolution,
// the bounded store query and tax-inclusive post-processing.
package search

import (
	"context"

	"price-lookup/internal/models"
	"price-lookup/internal/pricing"
	"price-lookup/internal/repository"
	"price-lookup/pkg/errors"
	"price-lookup/pkg/middleware"

	"go.uber.org/zap"
)

// Service runs searches against the inventory repository.
type Service struct {
	repo   repository.InventoryRepository
	prices *pricing.Calculator
	logger *zap.Logger
}

func NewService(repo repository.InventoryRepository, prices *pricing.Calculator, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		prices: prices,
		logger: logger,
	}
}

// Search executes q. It never reaches the store for an empty query.
func (s *Service) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	if q.Barcode == "" && q.Reference == "" {
		return nil, ErrMissingParameter
	}

	var (
		records []repository.Record
		err     error
	)
	mode := q.Mode()
	if mode == models.ByBarcode {
		records, err = s.repo.FindByBarcode(ctx, q.Barcode, models.MaxResults)
	} else {
		records, err = s.repo.FindByReference(ctx, q.Reference, q.Limit())
	}
	if err != nil {
		s.logger.Error("Inventory query failed",
			zap.String("request_id", middleware.RequestIDFromContext(ctx)),
			zap.String("by", mode),
			zap.String("barcode", q.Barcode),
			zap.String("reference", q.Reference),
			zap.Error(err),
		)
		return nil, errors.NewDataSourceError("search "+mode, err)
	}

	if q.One && len(records) > 1 {
		records = records[:1]
	}

	items := make([]models.InventoryItem, len(records))
	for i, rec := range records {
		items[i] = s.toItem(rec)
	}

	s.logger.Debug("Inventory search",
		zap.String("by", mode),
		zap.Bool("one", q.One),
		zap.Int("count", len(items)),
	)

	return &models.SearchResult{
		OK:    true,
		By:    mode,
		One:   q.One,
		Count: len(items),
		Data:  items,
	}, nil
}

func (s *Service) toItem(rec repository.Record) models.InventoryItem {
	item := models.InventoryItem{
		Reference:      rec.Reference,
		Barcode:        rec.Barcode,
		Name:           rec.Name,
		ListPrice:      s.prices.TaxInclusive(rec.ListPrice),
		InitialCost:    pricing.Float(rec.InitialCost),
		OnPromotion:    pricing.IsTruthy(rec.PromotionFlag),
		WholesalePrice: pricing.Float(rec.WholesalePrice),
		AverageCost:    pricing.Float(rec.AverageCost),
		Stock:          pricing.Float(rec.Stock),
		Category:       rec.Category,
		Brand:          rec.Brand,
		Store:          rec.Store,
		Region:         rec.Region,
	}
	if item.OnPromotion {
		item.PromotionPrice = s.prices.TaxInclusive(rec.PromotionPrice)
	}
	return item
}
