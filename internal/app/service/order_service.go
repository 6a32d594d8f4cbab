package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"github.com/getter-shop/getter-backend/pkg/mailer"
	"github.com/getter-shop/getter-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrIncompleteAddress     = errors.New("shipping address is incomplete")
	ErrOrderTotalOutOfBounds = errors.New("order total is out of bounds")
	ErrInvalidOrderStatus    = errors.New("invalid order status")
	ErrNotOrderOwner         = errors.New("order belongs to another user")
)

// CheckoutInput is the shipping address submitted at checkout. City,
// Street, House and PostalCode are required.
type CheckoutInput struct {
	City       string
	Street     string
	House      string
	Apartment  string
	PostalCode string
	Comment    string
}

type OrderService interface {
	Checkout(userID uint, input CheckoutInput) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetAllOrders() ([]model.Order, error)
	GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartSvc   CartService
	mail      mailer.Mailer
	checkout  config.CheckoutConfig
	db        *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartSvc CartService,
	mail mailer.Mailer,
	checkout config.CheckoutConfig,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartSvc:   cartSvc,
		mail:      mail,
		checkout:  checkout,
		db:        db,
	}
}

func (input CheckoutInput) validate() error {
	if input.City == "" || input.Street == "" || input.House == "" || input.PostalCode == "" {
		return ErrIncompleteAddress
	}
	return nil
}

// Checkout turns the pending cart into a placed order. Stock checks,
// stock decrements and the status change commit atomically; a failure on
// any line leaves every product untouched.
func (s *orderService) Checkout(userID uint, input CheckoutInput) (*model.Order, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id": userID,
		"city":    input.City,
	})

	if err := input.validate(); err != nil {
		logger.Warn("Checkout rejected: incomplete address", map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	cart, err := s.cartSvc.GetCart(userID)
	if err != nil {
		return nil, err
	}

	if len(cart.Items) == 0 {
		logger.Warn("Checkout rejected: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var order model.Order
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, cart.ID).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to lock cart during checkout", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": cart.ID,
		})
		return nil, err
	}

	if order.Status != model.OrderStatusPending {
		tx.Rollback()
		logger.Warn("Checkout rejected: order already placed", map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
			"status":   order.Status,
		})
		return nil, ErrInvalidOrderStatus
	}

	total := decimal.Zero
	for _, cartItem := range cart.Items {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product vanished during checkout", map[string]interface{}{
					"user_id":    userID,
					"product_id": cartItem.ProductID,
				})
				return nil, ErrProductNotFound
			}
			logger.Error("Failed to fetch product during checkout", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, err
		}

		if !product.IsAvailable {
			tx.Rollback()
			logger.Warn("Checkout failed: product unavailable", map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, ErrProductUnavailable
		}

		if product.Stock < cartItem.Quantity {
			tx.Rollback()
			logger.Warn("Checkout failed: insufficient stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
				"requested":  cartItem.Quantity,
				"available":  product.Stock,
			})
			return nil, ErrInsufficientStock
		}

		line := model.OrderItem{Quantity: cartItem.Quantity, Product: product}
		total = total.Add(line.LinePrice())

		if err := tx.Model(&model.Product{}).
			Where("id = ?", product.ID).
			Update("stock", gorm.Expr("stock - ?", cartItem.Quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to decrement stock during checkout", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, err
		}
	}

	total = total.Round(2)
	minTotal := decimal.NewFromFloat(s.checkout.MinOrderTotal)
	maxTotal := decimal.NewFromFloat(s.checkout.MaxOrderTotal)
	if total.LessThan(minTotal) || total.GreaterThan(maxTotal) {
		tx.Rollback()
		logger.Warn("Checkout failed: total out of bounds", map[string]interface{}{
			"user_id": userID,
			"total":   total.String(),
			"min":     s.checkout.MinOrderTotal,
			"max":     s.checkout.MaxOrderTotal,
		})
		return nil, ErrOrderTotalOutOfBounds
	}

	now := time.Now()
	order.Status = model.OrderStatusAssembling
	order.TotalPrice = total
	order.OrderNumber = util.GenerateOrderNumber(now)
	order.ShippingCity = input.City
	order.ShippingStreet = input.Street
	order.ShippingHouse = input.House
	order.ShippingApartment = input.Apartment
	order.ShippingPostalCode = input.PostalCode
	order.ShippingComment = input.Comment

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to place order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	// A fresh cart replaces the one that just became an order.
	newCart := &model.Order{UserID: userID, Status: model.OrderStatusPending}
	if err := tx.Create(newCart).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create replacement cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	placed, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Order placed successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     placed.ID,
		"order_number": placed.OrderNumber,
		"total":        placed.TotalPrice.String(),
		"item_count":   len(placed.Items),
	})

	s.sendConfirmation(placed)

	return placed, nil
}

// sendConfirmation emails the buyer after commit. Delivery problems are
// logged, never surfaced to the checkout caller.
func (s *orderService) sendConfirmation(order *model.Order) {
	if s.mail == nil || order.User.Email == "" {
		return
	}

	subject, body := mailer.OrderConfirmation(order.User.Name, order.OrderNumber, order.ShippingAddress(), order.TotalPrice.StringFixed(2))
	if err := s.mail.Send(order.User.Email, subject, body); err != nil {
		logger.Error("Failed to send order confirmation email", err, map[string]interface{}{
			"order_id": order.ID,
			"email":    order.User.Email,
		})
	}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID, false)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetAllOrders() ([]model.Order, error) {
	orders, err := s.orderRepo.FindAll()
	if err != nil {
		logger.Error("Failed to fetch all orders", err, nil)
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !isAdmin && order.UserID != userID {
		logger.Warn("Order access denied", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrNotOrderOwner
	}

	return order, nil
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	valid := false
	for _, candidate := range model.ValidOrderStatuses {
		if status == candidate {
			valid = true
			break
		}
	}
	if !valid || status == model.OrderStatusPending {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.IsCart() {
		logger.Warn("Status update rejected for cart", map[string]interface{}{
			"order_id": orderID,
		})
		return nil, ErrInvalidOrderStatus
	}

	previous := order.Status
	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return nil, err
	}
	order.Status = status

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     previous,
		"to":       status,
	})

	if s.mail != nil && order.User.Email != "" {
		subject, body := mailer.OrderStatusUpdate(order.User.Name, order.OrderNumber, string(status))
		if err := s.mail.Send(order.User.Email, subject, body); err != nil {
			logger.Error("Failed to send status update email", err, map[string]interface{}{
				"order_id": orderID,
				"email":    order.User.Email,
			})
		}
	}

	return order, nil
}
