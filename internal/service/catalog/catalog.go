package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/avelorn/storefront/internal/cache"
	"github.com/avelorn/storefront/internal/logging"
	"github.com/avelorn/storefront/internal/models"
	"github.com/avelorn/storefront/internal/service"
	"github.com/avelorn/storefront/internal/transport"
)

const listCacheTTL = 30 * time.Second

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Indexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type CatalogService struct {
	DB       *gorm.DB
	Producer EventPublisher
	Indexer  Indexer
	Cache    Cache
}

func (s *CatalogService) publish(ctx context.Context, event map[string]any) {
	if s.Producer == nil {
		return
	}
	key := fmt.Sprint(event["product_id"])
	if err := s.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", "product_events", "error", err)
	}
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search index failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.Cache != nil {
		s.Cache.Delete(ctx, cache.KeyCatalogList)
	}
}

// List returns the whole catalog newest-first, served from cache when warm.
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	if s.Cache != nil {
		if raw, ok := s.Cache.Get(ctx, cache.KeyCatalogList); ok {
			var products []models.Product
			if err := json.Unmarshal([]byte(raw), &products); err == nil {
				return products, nil
			}
		}
	}

	products := make([]models.Product, 0)
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(products); err == nil {
			s.Cache.Set(ctx, cache.KeyCatalogList, string(raw), listCacheTTL)
		}
	}
	return products, nil
}

func (s *CatalogService) Create(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	product := models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		InStock:     true,
	}
	if req.InStock != nil {
		product.InStock = *req.InStock
	}
	if req.Recommended != nil {
		product.Recommended = *req.Recommended
	}

	if err := s.DB.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.index(ctx, &product)
	s.publish(ctx, map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})
	return &product, nil
}

// Update replaces the mutable fields. The sales counter is owned by order
// placement and never touched here.
func (s *CatalogService) Update(ctx context.Context, id uint, req transport.ProductRequest) (*models.Product, error) {
	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.NotFound("Product not found")
		}
		return nil, err
	}

	product.Name = req.Name
	product.Price = req.Price
	product.Description = req.Description
	product.Image = req.Image
	product.Category = req.Category
	if req.InStock != nil {
		product.InStock = *req.InStock
	}
	if req.Recommended != nil {
		product.Recommended = *req.Recommended
	}

	if err := s.DB.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.index(ctx, &product)
	s.publish(ctx, map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})
	return &product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	result := s.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return service.NotFound("Product not found")
	}

	s.invalidate(ctx)
	if s.Indexer != nil {
		if err := s.Indexer.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search delete failed", "product_id", id, "error", err)
		}
	}
	s.publish(ctx, map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	return nil
}
