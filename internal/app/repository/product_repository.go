package repository

import (
	"fmt"

	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortDiscount  ProductSort = "discount"
	ProductSortRating    ProductSort = "rating"
)

type ProductFilter struct {
	CategoryID    *uint
	IsAvailable   *bool
	HasDiscount   bool
	MinDiscount   *int
	MinRating     *float64
	Search        string
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

// ProductRating is a product id paired with its review average.
type ProductRating struct {
	ProductID uint
	Average   float64
	Count     int64
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
	UpdateStock(id uint, delta int) error
	MarkUnavailableOutOfStock() (int64, error)
	MarkAvailableInStock() (int64, error)
	AverageRatings() ([]ProductRating, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":        product.Name,
		"sku":         product.SKU,
		"category_id": product.CategoryID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"sku":  product.SKU,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
	})
	return nil
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).Preload("Category")
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{})
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category_id":  filter.CategoryID,
		"is_available": filter.IsAvailable,
		"has_discount": filter.HasDiscount,
		"min_rating":   filter.MinRating,
		"search":       filter.Search,
		"sort_by":      filter.SortBy,
		"limit":        filter.Limit,
		"offset":       filter.Offset,
	})

	query := r.baseQuery()

	ratingsSubquery := r.db.Table("reviews").
		Select("reviews.product_id, AVG(reviews.rating) AS average").
		Where("reviews.deleted_at IS NULL").
		Group("reviews.product_id")

	query = query.Joins("LEFT JOIN (?) AS product_ratings ON product_ratings.product_id = products.id", ratingsSubquery)
	query = query.Select("products.*, COALESCE(product_ratings.average, 0) AS rating")

	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}

	if filter.IsAvailable != nil {
		query = query.Where("products.is_available = ?", *filter.IsAvailable)
	}

	if filter.HasDiscount {
		query = query.Where("products.discount > 0")
	}

	if filter.MinDiscount != nil {
		query = query.Where("products.discount >= ?", *filter.MinDiscount)
	}

	if filter.MinRating != nil {
		query = query.Where("COALESCE(product_ratings.average, 0) >= ?", *filter.MinRating)
	}

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("products.name LIKE ? OR products.description LIKE ? OR products.sku LIKE ?", like, like, like)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}

	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order("products.price " + direction)
	case ProductSortDiscount:
		query = query.Order("products.discount " + direction)
		query = query.Order("products.created_at DESC")
	case ProductSortRating:
		query = query.Order("COALESCE(product_ratings.average, 0) " + direction)
		query = query.Order("products.created_at DESC")
	case ProductSortCreatedAt:
		fallthrough
	default:
		query = query.Order("products.created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"category_id": filter.CategoryID,
			"search":      filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

// UpdateStock adjusts stock by delta and fails if the result would go negative.
func (r *productRepository) UpdateStock(id uint, delta int) error {
	result := r.db.Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		logger.Error("Failed to update product stock", result.Error, map[string]interface{}{
			"product_id": id,
			"delta":      delta,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) MarkUnavailableOutOfStock() (int64, error) {
	result := r.db.Model(&model.Product{}).
		Where("stock <= 0 AND is_available = ?", true).
		Update("is_available", false)
	if result.Error != nil {
		logger.Error("Failed to mark out-of-stock products unavailable", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *productRepository) MarkAvailableInStock() (int64, error) {
	result := r.db.Model(&model.Product{}).
		Where("stock > 0 AND is_available = ?", false).
		Update("is_available", true)
	if result.Error != nil {
		logger.Error("Failed to mark in-stock products available", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *productRepository) AverageRatings() ([]ProductRating, error) {
	var ratings []ProductRating
	err := r.db.Table("reviews").
		Select("reviews.product_id, AVG(reviews.rating) AS average, COUNT(*) AS count").
		Where("reviews.deleted_at IS NULL").
		Group("reviews.product_id").
		Scan(&ratings).Error
	if err != nil {
		logger.Error("Failed to aggregate product ratings", err, nil)
		return nil, err
	}
	return ratings, nil
}
