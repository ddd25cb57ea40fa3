package service

import (
	"context"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/shopspring/decimal"
)

// Stock level at or below which a product shows up on the dashboard.
const lowStockThreshold = 5

// StatsService derives the dashboard numbers.
type StatsService struct {
	store *store.Store
}

func NewStatsService(store *store.Store) *StatsService {
	return &StatsService{store: store}
}

// Stats is the dashboard summary.
type Stats struct {
	Products         int              `json:"products"`
	Categories       int              `json:"categories"`
	Users            int              `json:"users"`
	Orders           int              `json:"orders"`
	Revenue          decimal.Decimal  `json:"revenue"`
	OrdersByStatus   map[string]int   `json:"orders_by_status"`
	LowStockProducts []models.Product `json:"low_stock_products"`
}

// GetStats computes the dashboard summary from live data.
func (s *StatsService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Revenue: decimal.Zero}

	var err error
	if stats.Products, err = s.store.CountRows(ctx, "products"); err != nil {
		return nil, err
	}
	if stats.Categories, err = s.store.CountRows(ctx, "categories"); err != nil {
		return nil, err
	}
	if stats.Users, err = s.store.CountRows(ctx, "users"); err != nil {
		return nil, err
	}
	if stats.Orders, err = s.store.CountRows(ctx, "orders"); err != nil {
		return nil, err
	}
	if stats.Revenue, err = s.store.SumOrderTotals(ctx); err != nil {
		return nil, err
	}
	if stats.OrdersByStatus, err = s.store.CountOrdersByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.LowStockProducts, err = s.store.GetLowStockProducts(ctx, lowStockThreshold); err != nil {
		return nil, err
	}
	if stats.LowStockProducts == nil {
		stats.LowStockProducts = []models.Product{}
	}
	return stats, nil
}
