package repository

import (
	"time"

	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"gorm.io/gorm"
)

// DailySales is one row of the sales report aggregation. Day is the
// calendar date in YYYY-MM-DD form.
type DailySales struct {
	Day        string
	OrderCount int64
	ItemCount  int64
	Revenue    float64
}

// CategorySales is a category name with the units sold, used for the
// top-categories section of the sales report.
type CategorySales struct {
	CategoryName string
	Units        int64
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindAll() ([]model.Order, error)
	FindByUserID(userID uint, includeCart bool) ([]model.Order, error)
	FindCartsByUser(userID uint) ([]model.Order, error)
	Update(order *model.Order) error
	UpdateStatus(id uint, status model.OrderStatus) error
	Delete(id uint) error
	FindSweepCandidates(pendingBefore, shippedBefore time.Time) ([]model.Order, error)
	HasPurchasedProduct(userID, productID uint) (bool, error)
	SalesBetween(since, until time.Time) ([]DailySales, error)
	CategoryUnitsBetween(since, until time.Time, limit int) ([]CategorySales, error)
	FindItem(orderID, productID uint) (*model.OrderItem, error)
	SaveItem(item *model.OrderItem) error
	DeleteItem(id uint) error
	DeleteItemsByOrder(orderID uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Product", func(pdb *gorm.DB) *gorm.DB {
			return pdb.Preload("Category")
		}).Order("order_items.created_at ASC")
	}).Preload("User")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id": order.UserID,
		"status":  order.Status,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
			"status":  order.Status,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint, includeCart bool) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id":      userID,
		"include_cart": includeCart,
	})

	query := r.preloadOrder().Where("user_id = ?", userID)
	if !includeCart {
		query = query.Where("status <> ?", model.OrderStatusPending)
	}

	var orders []model.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

// FindCartsByUser returns the user's pending orders, newest first.
func (r *orderRepository) FindCartsByUser(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().
		Where("user_id = ? AND status = ?", userID, model.OrderStatusPending).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find carts by user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		logger.Error("Failed to update order status in database", err, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return err
	}
	return nil
}

func (r *orderRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Order{}, id).Error; err != nil {
		logger.Error("Failed to delete order from database", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	return nil
}

// FindSweepCandidates returns pending orders created before pendingBefore
// and shipped orders last touched before shippedBefore.
func (r *orderRepository) FindSweepCandidates(pendingBefore, shippedBefore time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Where("status = ? AND created_at < ?", model.OrderStatusPending, pendingBefore).
		Or("status = ? AND updated_at < ?", model.OrderStatusShipped, shippedBefore).
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find sweep candidate orders", err, nil)
		return nil, err
	}
	return orders, nil
}

// HasPurchasedProduct reports whether the user has a shipped or delivered
// order containing the product.
func (r *orderRepository) HasPurchasedProduct(userID, productID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ?", userID, productID).
		Where("orders.status IN ?", []model.OrderStatus{model.OrderStatusShipped, model.OrderStatusDelivered}).
		Where("orders.deleted_at IS NULL").
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check purchase history", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *orderRepository) SalesBetween(since, until time.Time) ([]DailySales, error) {
	// Item counts come from a per-order subquery so the join cannot
	// repeat an order's total once per line.
	var rows []DailySales
	err := r.db.Raw(`
		SELECT day,
		       COUNT(*) AS order_count,
		       COALESCE(SUM(items), 0) AS item_count,
		       COALESCE(SUM(total), 0) AS revenue
		FROM (
			SELECT DATE(orders.created_at) AS day,
			       orders.total_price AS total,
			       (SELECT COALESCE(SUM(quantity), 0)
			        FROM order_items
			        WHERE order_items.order_id = orders.id
			          AND order_items.deleted_at IS NULL) AS items
			FROM orders
			WHERE orders.deleted_at IS NULL
			  AND orders.status NOT IN (?, ?)
			  AND orders.created_at >= ?
			  AND orders.created_at < ?
		) AS daily
		GROUP BY day
		ORDER BY day ASC`,
		model.OrderStatusPending, model.OrderStatusCanceled, since, until,
	).Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate sales", err, map[string]interface{}{
			"since": since,
			"until": until,
		})
		return nil, err
	}
	return rows, nil
}

func (r *orderRepository) CategoryUnitsBetween(since, until time.Time, limit int) ([]CategorySales, error) {
	var rows []CategorySales
	err := r.db.Model(&model.OrderItem{}).
		Select("categories.name AS category_name, COALESCE(SUM(order_items.quantity), 0) AS units").
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("orders.status NOT IN (?, ?)", model.OrderStatusPending, model.OrderStatusCanceled).
		Where("orders.created_at >= ? AND orders.created_at < ?", since, until).
		Group("categories.name").
		Order("units DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate category sales", err, map[string]interface{}{
			"since": since,
			"until": until,
		})
		return nil, err
	}
	return rows, nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().
		Where("status <> ?", model.OrderStatusPending).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find all orders", err, nil)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindItem(orderID, productID uint) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.Preload("Product").
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderRepository) SaveItem(item *model.OrderItem) error {
	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to save order item in database", err, map[string]interface{}{
			"order_id":   item.OrderID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) DeleteItem(id uint) error {
	if err := r.db.Delete(&model.OrderItem{}, id).Error; err != nil {
		logger.Error("Failed to delete order item from database", err, map[string]interface{}{
			"item_id": id,
		})
		return err
	}
	return nil
}

func (r *orderRepository) DeleteItemsByOrder(orderID uint) error {
	if err := r.db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		logger.Error("Failed to delete order items from database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return err
	}
	return nil
}
