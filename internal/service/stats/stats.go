package stats

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/avelorn/storefront/internal/cache"
	"github.com/avelorn/storefront/internal/models"
	"github.com/avelorn/storefront/internal/transport"
)

const statsCacheTTL = time.Minute

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type StatsService struct {
	DB    *gorm.DB
	Cache Cache
}

// Summary aggregates the numbers behind the admin dashboard. Cached for a
// minute; order placement and fulfillment invalidate the key.
func (s *StatsService) Summary(ctx context.Context) (*transport.StatsResponse, error) {
	if s.Cache != nil {
		if raw, ok := s.Cache.Get(ctx, cache.KeyAdminStats); ok {
			var cached transport.StatsResponse
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	db := s.DB.WithContext(ctx)
	var resp transport.StatsResponse

	err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&resp.Revenue).Error
	if err != nil {
		return nil, err
	}

	if err := db.Model(&models.Order{}).Count(&resp.OrderCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Where("fulfilled = ?", true).Count(&resp.FulfilledOrders).Error; err != nil {
		return nil, err
	}
	resp.PendingOrders = resp.OrderCount - resp.FulfilledOrders

	if err := db.Model(&models.Product{}).Count(&resp.ProductCount).Error; err != nil {
		return nil, err
	}

	var top []models.Product
	if err := db.Order("sales DESC").Limit(5).Find(&top).Error; err != nil {
		return nil, err
	}
	resp.TopProducts = make([]transport.TopProduct, len(top))
	for i, p := range top {
		resp.TopProducts[i] = transport.TopProduct{ID: p.ID, Name: p.Name, Sales: p.Sales}
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(&resp); err == nil {
			s.Cache.Set(ctx, cache.KeyAdminStats, string(raw), statsCacheTTL)
		}
	}
	return &resp, nil
}
