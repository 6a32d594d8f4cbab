package service

import (
	"context"
	"errors"

	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"github.com/getter-shop/getter-backend/pkg/redis"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrSKUAlreadyExists = errors.New("sku already exists")
	ErrInvalidPrice     = errors.New("price must be positive")
	ErrInvalidDiscount  = errors.New("discount must be between 0 and 100")
)

// ProductInput carries the writable product fields for create and update.
type ProductInput struct {
	Name             string
	SKU              string
	Description      string
	Price            decimal.Decimal
	Discount         int
	Stock            int
	IsAvailable      *bool
	CategoryID       uint
	ImageURL         string
	DocumentationURL string
	Specifications   map[string]string
}

// ProductView is a product together with its cached review average.
type ProductView struct {
	model.Product
	Rating float64 `json:"rating"`
}

type ProductService interface {
	CreateProduct(input ProductInput) (*model.Product, error)
	GetProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProductByID(ctx context.Context, id uint) (*ProductView, error)
	UpdateProduct(id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(id uint) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	ratingCache  *redis.RatingCache
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	ratingCache *redis.RatingCache,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ratingCache:  ratingCache,
	}
}

func validateProductInput(input ProductInput) error {
	if input.Price.Sign() <= 0 {
		return ErrInvalidPrice
	}
	if input.Discount < 0 || input.Discount > 100 {
		return ErrInvalidDiscount
	}
	return nil
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name": input.Name,
		"sku":  input.SKU,
	})

	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	existing, err := s.productRepo.FindBySKU(input.SKU)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		logger.Warn("Product creation failed: duplicate sku", map[string]interface{}{
			"sku": input.SKU,
		})
		return nil, ErrSKUAlreadyExists
	}

	available := input.Stock > 0
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	product := &model.Product{
		Name:             input.Name,
		SKU:              input.SKU,
		Description:      input.Description,
		Price:            input.Price,
		Discount:         input.Discount,
		Stock:            input.Stock,
		IsAvailable:      available,
		CategoryID:       input.CategoryID,
		ImageURL:         input.ImageURL,
		DocumentationURL: input.DocumentationURL,
		Specifications:   input.Specifications,
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
	})
	return product, nil
}

func (s *productService) GetProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindWithFilter(filter)
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (*ProductView, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	view := &ProductView{Product: *product}
	if s.ratingCache != nil {
		if rating, ok := s.ratingCache.Get(ctx, id); ok {
			view.Rating = rating
		}
	}
	return view, nil
}

func (s *productService) UpdateProduct(id uint, input ProductInput) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	if input.SKU != "" && input.SKU != product.SKU {
		existing, err := s.productRepo.FindBySKU(input.SKU)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrSKUAlreadyExists
		}
		product.SKU = input.SKU
	}

	if input.CategoryID != 0 && input.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		product.CategoryID = input.CategoryID
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	product.Price = input.Price
	product.Discount = input.Discount
	product.Stock = input.Stock
	if input.IsAvailable != nil {
		product.IsAvailable = *input.IsAvailable
	}
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}
	if input.DocumentationURL != "" {
		product.DocumentationURL = input.DocumentationURL
	}
	if input.Specifications != nil {
		product.Specifications = input.Specifications
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
	})
	return product, nil
}

func (s *productService) DeleteProduct(id uint) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.productRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}
