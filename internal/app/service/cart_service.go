package service

import (
	"errors"

	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)

type CartService interface {
	GetCart(userID uint) (*model.Order, error)
	AddItem(userID, productID uint, quantity int) (*model.Order, error)
	UpdateItemQuantity(userID, productID uint, quantity int) (*model.Order, error)
	RemoveItem(userID, productID uint) (*model.Order, error)
	ClearCart(userID uint) (*model.Order, error)
}

type cartService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewCartService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's single pending order, creating one when none
// exists. Stray duplicates are merged into the newest cart so the pending
// order stays unique per user.
func (s *cartService) GetCart(userID uint) (*model.Order, error) {
	carts, err := s.orderRepo.FindCartsByUser(userID)
	if err != nil {
		return nil, err
	}

	if len(carts) == 0 {
		cart := &model.Order{
			UserID: userID,
			Status: model.OrderStatusPending,
		}
		if err := s.orderRepo.Create(cart); err != nil {
			return nil, err
		}
		logger.Info("Cart created", map[string]interface{}{
			"user_id":  userID,
			"order_id": cart.ID,
		})
		return cart, nil
	}

	if len(carts) == 1 {
		return &carts[0], nil
	}

	return s.mergeCarts(carts)
}

// mergeCarts folds older pending orders into the newest one. Quantities
// for the same product are summed.
func (s *cartService) mergeCarts(carts []model.Order) (*model.Order, error) {
	newest := &carts[0]

	logger.Warn("Merging duplicate carts", map[string]interface{}{
		"user_id": newest.UserID,
		"count":   len(carts),
	})

	quantities := make(map[uint]int)
	for _, item := range newest.Items {
		quantities[item.ProductID] = item.Quantity
	}

	for _, stale := range carts[1:] {
		for _, item := range stale.Items {
			quantities[item.ProductID] += item.Quantity
		}
		if err := s.orderRepo.DeleteItemsByOrder(stale.ID); err != nil {
			return nil, err
		}
		if err := s.orderRepo.Delete(stale.ID); err != nil {
			return nil, err
		}
	}

	for productID, quantity := range quantities {
		item, err := s.orderRepo.FindItem(newest.ID, productID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			item = &model.OrderItem{OrderID: newest.ID, ProductID: productID}
		}
		item.Quantity = quantity
		if err := s.orderRepo.SaveItem(item); err != nil {
			return nil, err
		}
	}

	return s.refreshTotal(newest.ID)
}

// refreshTotal reloads the cart and persists the recomputed total.
func (s *cartService) refreshTotal(orderID uint) (*model.Order, error) {
	cart, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	cart.TotalPrice = cart.CalculateTotalPrice()
	if err := s.orderRepo.Update(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) AddItem(userID, productID uint, quantity int) (*model.Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsAvailable {
		return nil, ErrProductUnavailable
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	item, err := s.orderRepo.FindItem(cart.ID, productID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		item = &model.OrderItem{OrderID: cart.ID, ProductID: productID}
	}

	requested := item.Quantity + quantity
	if !product.InStock(requested) {
		logger.Warn("Add to cart rejected: insufficient stock", map[string]interface{}{
			"product_id": productID,
			"requested":  requested,
			"stock":      product.Stock,
		})
		return nil, ErrInsufficientStock
	}

	item.Quantity = requested
	if err := s.orderRepo.SaveItem(item); err != nil {
		return nil, err
	}

	return s.refreshTotal(cart.ID)
}

func (s *cartService) UpdateItemQuantity(userID, productID uint, quantity int) (*model.Order, error) {
	if quantity <= 0 {
		return s.RemoveItem(userID, productID)
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	item, err := s.orderRepo.FindItem(cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock(quantity) {
		return nil, ErrInsufficientStock
	}

	item.Quantity = quantity
	if err := s.orderRepo.SaveItem(item); err != nil {
		return nil, err
	}

	logger.Info("Cart item quantity updated", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	return s.refreshTotal(cart.ID)
}

func (s *cartService) RemoveItem(userID, productID uint) (*model.Order, error) {
	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	item, err := s.orderRepo.FindItem(cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	if err := s.orderRepo.DeleteItem(item.ID); err != nil {
		return nil, err
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	return s.refreshTotal(cart.ID)
}

func (s *cartService) ClearCart(userID uint) (*model.Order, error) {
	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.DeleteItemsByOrder(cart.ID); err != nil {
		return nil, err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id":  userID,
		"order_id": cart.ID,
	})

	return s.refreshTotal(cart.ID)
}
