package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelorn/storefront/internal/cache"
	"github.com/avelorn/storefront/internal/models"
	"github.com/avelorn/storefront/internal/service"
	"github.com/avelorn/storefront/internal/transport"
)

type nopPublisher struct{}

func (nopPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	return nil
}

type fakeIndexer struct {
	indexed []uint
	deleted []uint
}

func (f *fakeIndexer) IndexProduct(ctx context.Context, p *models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndexer) DeleteProduct(ctx context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type memCache struct {
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (m *memCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	m.data[key] = value
}

func (m *memCache) Delete(ctx context.Context, keys ...string) {
	for _, k := range keys {
		delete(m.data, k)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))
	return db
}

func newTestService(t *testing.T) (*CatalogService, *fakeIndexer, *memCache) {
	t.Helper()
	indexer := &fakeIndexer{}
	cached := newMemCache()
	svc := &CatalogService{
		DB:       newTestDB(t),
		Producer: nopPublisher{},
		Indexer:  indexer,
		Cache:    cached,
	}
	return svc, indexer, cached
}

func boolPtr(b bool) *bool { return &b }

func TestCreate_DefaultsInStock(t *testing.T) {
	svc, indexer, _ := newTestService(t)

	product, err := svc.Create(context.Background(), transport.ProductRequest{
		Name:  "Vase",
		Price: 100,
	})
	require.NoError(t, err)
	require.True(t, product.InStock)
	require.False(t, product.Recommended)
	require.Zero(t, product.Sales)
	require.Equal(t, []uint{product.ID}, indexer.indexed)
}

func TestList_NewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	older := models.Product{Name: "Old", Price: 1, CreatedAt: time.Now().Add(-time.Hour)}
	newer := models.Product{Name: "New", Price: 1, CreatedAt: time.Now()}
	require.NoError(t, svc.DB.Create(&older).Error)
	require.NoError(t, svc.DB.Create(&newer).Error)

	products, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "New", products[0].Name)
	require.Equal(t, "Old", products[1].Name)
}

func TestList_CacheInvalidatedByCreate(t *testing.T) {
	svc, _, cached := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, transport.ProductRequest{Name: "First", Price: 1})
	require.NoError(t, err)

	products, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	_, warm := cached.Get(ctx, cache.KeyCatalogList)
	require.True(t, warm)

	_, err = svc.Create(ctx, transport.ProductRequest{Name: "Second", Price: 2})
	require.NoError(t, err)
	_, warm = cached.Get(ctx, cache.KeyCatalogList)
	require.False(t, warm)

	products, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
}

func TestUpdate_NeverTouchesSales(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	product := models.Product{Name: "Vase", Price: 100, Sales: 7, InStock: true}
	require.NoError(t, svc.DB.Create(&product).Error)

	updated, err := svc.Update(ctx, product.ID, transport.ProductRequest{
		Name:        "Big Vase",
		Price:       120,
		InStock:     boolPtr(false),
		Recommended: boolPtr(true),
	})
	require.NoError(t, err)
	require.Equal(t, "Big Vase", updated.Name)
	require.Equal(t, float64(120), updated.Price)
	require.False(t, updated.InStock)
	require.True(t, updated.Recommended)
	require.Equal(t, uint(7), updated.Sales)
}

func TestUpdate_UnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 999, transport.ProductRequest{Name: "X", Price: 1})
	require.Error(t, err)
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestDelete_RemovesFromIndex(t *testing.T) {
	svc, indexer, _ := newTestService(t)
	ctx := context.Background()

	product := models.Product{Name: "Vase", Price: 100}
	require.NoError(t, svc.DB.Create(&product).Error)

	require.NoError(t, svc.Delete(ctx, product.ID))
	require.Equal(t, []uint{product.ID}, indexer.deleted)

	err := svc.Delete(ctx, product.ID)
	require.Error(t, err)
	require.True(t, errors.Is(err, service.ErrNotFound))
}
