package order

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/avelorn/storefront/internal/cache"
	"github.com/avelorn/storefront/internal/logging"
	"github.com/avelorn/storefront/internal/models"
	"github.com/avelorn/storefront/internal/service"
	"github.com/avelorn/storefront/internal/transport"
)

// totalTolerance absorbs float rounding between the client's sum and ours;
// anything beyond half a cent is a real mismatch.
const totalTolerance = 0.005

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Mailer interface {
	Enqueue(to, subject, html string)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type OrderService struct {
	DB         *gorm.DB
	Producer   EventPublisher
	Mailer     Mailer
	Cache      Cache
	AdminEmail string
}

func (s *OrderService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.PublishEvent(ctx, "order_events", key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", "order_events", "error", err)
	}
}

// Place creates the order and bumps each product's sales counter in one
// transaction, then queues the confirmation mail for the buyer and the store
// operator. Mail and events never affect the outcome.
func (s *OrderService) Place(ctx context.Context, userID uint, userEmail string, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", userID)

	if len(req.Items) == 0 {
		return nil, service.Invalid("items required")
	}

	var sum float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for i := range req.Items {
		it := &req.Items[i]
		if it.ProductID == 0 {
			return nil, service.Invalid("product id required")
		}
		if it.Quantity == 0 {
			return nil, service.Invalid("quantity must be positive")
		}
		if it.Price < 0 {
			return nil, service.Invalid("price must not be negative")
		}
		sum += it.Price * float64(it.Quantity)
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}

	if math.Abs(sum-req.Total) > totalTolerance {
		return nil, service.Invalid("total does not match order items")
	}

	order := models.Order{
		UserID:        userID,
		Items:         items,
		Total:         req.Total,
		Address:       req.Address,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, it := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ?", it.ProductID).
				UpdateColumn("sales", gorm.Expr("sales + ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info("order placed", "order_id", order.ID, "total", order.Total)

	if s.Mailer != nil {
		html := fmt.Sprintf("<h2>Order Confirmation</h2>\n<p>Order #%d</p>\n<p>Total: $%.2f</p>", order.ID, order.Total)
		s.Mailer.Enqueue(userEmail, "Order Confirmation", html)
		s.Mailer.Enqueue(s.AdminEmail, "New Order Received", html)
	}

	if s.Cache != nil {
		s.Cache.Delete(ctx, cache.KeyAdminStats)
	}
	s.publish(ctx, fmt.Sprint(order.ID), map[string]any{
		"type":     "order_placed",
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total,
	})
	return &order, nil
}

func (s *OrderService) My(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// All returns every order newest-first with the owning user attached.
func (s *OrderService) All(ctx context.Context) ([]transport.AdminOrder, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(orders))
	seen := make(map[uint]bool, len(orders))
	for _, o := range orders {
		if !seen[o.UserID] {
			seen[o.UserID] = true
			ids = append(ids, o.UserID)
		}
	}

	users := make(map[uint]models.User, len(ids))
	if len(ids) > 0 {
		var rows []models.User
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, u := range rows {
			users[u.ID] = u
		}
	}

	result := make([]transport.AdminOrder, len(orders))
	for i, o := range orders {
		u := users[o.UserID]
		result[i] = transport.AdminOrder{
			Order: o,
			User:  transport.UserSummary{Name: u.Name, Email: u.Email},
		}
	}
	return result, nil
}

// Fulfill flips the flag to true. Re-fulfilling is a no-op success; there is
// no way back to unfulfilled.
func (s *OrderService) Fulfill(ctx context.Context, id uint) (*models.Order, error) {
	result := s.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("fulfilled", true)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, service.NotFound("Order not found")
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Delete(ctx, cache.KeyAdminStats)
	}
	s.publish(ctx, fmt.Sprint(order.ID), map[string]any{
		"type":     "order_fulfilled",
		"order_id": order.ID,
	})
	return &order, nil
}
