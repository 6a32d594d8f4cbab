package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/internal/app/service"
	apperrors "github.com/getter-shop/getter-backend/internal/errors"
	"github.com/getter-shop/getter-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

type ProductRequest struct {
	Name             string            `json:"name" binding:"required"`
	SKU              string            `json:"sku" binding:"required"`
	Description      string            `json:"description"`
	Price            decimal.Decimal   `json:"price" binding:"required"`
	Discount         int               `json:"discount"`
	Stock            int               `json:"stock"`
	IsAvailable      *bool             `json:"is_available"`
	CategoryID       uint              `json:"category_id" binding:"required"`
	ImageURL         string            `json:"image_url"`
	DocumentationURL string            `json:"documentation_url"`
	Specifications   map[string]string `json:"specifications"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:             r.Name,
		SKU:              r.SKU,
		Description:      r.Description,
		Price:            r.Price,
		Discount:         r.Discount,
		Stock:            r.Stock,
		IsAvailable:      r.IsAvailable,
		CategoryID:       r.CategoryID,
		ImageURL:         r.ImageURL,
		DocumentationURL: r.DocumentationURL,
		Specifications:   r.Specifications,
	}
}

// parseProductFilter builds a catalog filter from query parameters.
// Unknown sort keys fall back to newest-first.
func parseProductFilter(c *gin.Context) repository.ProductFilter {
	filter := repository.ProductFilter{
		Search: c.Query("search"),
		SortBy: repository.ProductSortCreatedAt,
		Limit:  defaultProductLimit,
	}

	if v, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		id := uint(v)
		filter.CategoryID = &id
	}
	if v, err := strconv.ParseBool(c.Query("available")); err == nil {
		filter.IsAvailable = &v
	}
	if v, err := strconv.ParseBool(c.Query("has_discount")); err == nil && v {
		filter.HasDiscount = true
	}
	if v, err := strconv.Atoi(c.Query("min_discount")); err == nil && v > 0 {
		filter.MinDiscount = &v
	}
	if v, err := strconv.ParseFloat(c.Query("min_rating"), 64); err == nil && v > 0 {
		filter.MinRating = &v
	}

	switch repository.ProductSort(c.Query("sort")) {
	case repository.ProductSortPrice:
		filter.SortBy = repository.ProductSortPrice
	case repository.ProductSortDiscount:
		filter.SortBy = repository.ProductSortDiscount
	case repository.ProductSortRating:
		filter.SortBy = repository.ProductSortRating
	}
	filter.SortAscending = c.Query("order") == "asc"

	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		if v > maxProductLimit {
			v = maxProductLimit
		}
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		filter.Offset = v
	}

	return filter
}

// GetProducts lists products matching the query filters.
// GET /api/v1/products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := parseProductFilter(c)
	products, err := ctrl.productService.GetProducts(filter)
	if err != nil {
		log.Error("Failed to list products", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns a single product with its review rating.
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	product, err := ctrl.productService.GetProductByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to get product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct creates a product (admin only).
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product, err := ctrl.productService.CreateProduct(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSKUAlreadyExists):
			apperrors.Conflict(c, apperrors.ProductSKUExists, "A product with this SKU already exists")
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.BadRequest(c, apperrors.CategoryNotFound, "Category not found")
		case errors.Is(err, service.ErrInvalidPrice), errors.Is(err, service.ErrInvalidDiscount):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, err.Error())
		default:
			log.Error("Failed to create product", err, map[string]interface{}{
				"sku": req.SKU,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create product")
		}
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct updates a product (admin only).
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product, err := ctrl.productService.UpdateProduct(uint(id), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrSKUAlreadyExists):
			apperrors.Conflict(c, apperrors.ProductSKUExists, "A product with this SKU already exists")
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.BadRequest(c, apperrors.CategoryNotFound, "Category not found")
		case errors.Is(err, service.ErrInvalidPrice), errors.Is(err, service.ErrInvalidDiscount):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, err.Error())
		default:
			log.Error("Failed to update product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct removes a product (admin only).
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	if err := ctrl.productService.DeleteProduct(uint(id)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
