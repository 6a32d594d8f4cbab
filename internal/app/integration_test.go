package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/controller"
	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/internal/app/service"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/getter-shop/getter-backend/internal/middleware"
	"github.com/getter-shop/getter-backend/pkg/mailer"
	"github.com/getter-shop/getter-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)

	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	productService := service.NewProductService(productRepo, categoryRepo, nil)
	cartService := service.NewCartService(orderRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartService, mailer.NewNoopMailer(), config.CheckoutConfig{
		MinOrderTotal: 1,
		MaxOrderTotal: 1000000,
	}, testDB)
	reviewService := service.NewReviewService(reviewRepo, orderRepo, productRepo)

	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	products := router.Group("/api/v1/products")
	{
		products.GET("", productController.GetProducts)
		products.GET("/:id", productController.GetProduct)
		products.GET("/:id/reviews", reviewController.GetProductReviews)
		products.POST("/:id/reviews", authMiddleware.Authenticate(), reviewController.CreateReview)
	}

	cart := router.Group("/api/v1/cart")
	cart.Use(authMiddleware.Authenticate())
	{
		cart.GET("", cartController.GetCart)
		cart.POST("/items", cartController.AddItem)
		cart.PUT("/items/:productId", cartController.UpdateItem)
		cart.DELETE("/items/:productId", cartController.RemoveItem)
	}

	orders := router.Group("/api/v1/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.POST("/checkout", orderController.Checkout)
		orders.GET("", orderController.GetOrders)
		orders.GET("/:id", orderController.GetOrder)
	}

	admin := router.Group("/api/v1/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"))
	{
		admin.PATCH("/orders/:id/status", orderController.UpdateStatus)
	}

	return &TestServer{Router: router, DB: testDB}
}

func (ts *TestServer) do(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func adminToken(t *testing.T, ts *TestServer) string {
	admin := &model.User{
		Email:        "staff@example.com",
		PasswordHash: "hash",
		Name:         "Staff",
		Role:         model.RoleAdmin,
	}
	require.NoError(t, ts.DB.Create(admin).Error)

	tokens, err := util.GenerateTokenPair(admin.ID, admin.Email, string(admin.Role), "test-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func TestCompleteShoppingJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// Register a customer
	w := ts.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "buyer@example.com",
		"password": "password123",
		"name":     "Test Buyer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	registerResp := decodeBody(t, w)
	tokens := registerResp["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	// Seed the catalog directly
	category := &model.Category{Name: "Electronics"}
	require.NoError(t, ts.DB.Create(category).Error)

	product := &model.Product{
		Name:        "Wireless Keyboard",
		SKU:         "KB-100",
		Description: "Low profile wireless keyboard",
		Price:       decimal.NewFromFloat(100.00),
		Discount:    10,
		Stock:       10,
		IsAvailable: true,
		CategoryID:  category.ID,
	}
	require.NoError(t, ts.DB.Create(product).Error)

	// Browse the catalog
	w = ts.do("GET", "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decodeBody(t, w)["products"])

	// Add to cart
	w = ts.do("POST", "/api/v1/cart/items", accessToken, map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// View the cart, discounted total should be 2 x 90.00
	w = ts.do("GET", "/api/v1/cart", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decodeBody(t, w)["cart"].(map[string]interface{})
	total, err := decimal.NewFromString(cart["total_price"].(string))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(180)), "total was %s", total)

	// Checkout
	w = ts.do("POST", "/api/v1/orders/checkout", accessToken, map[string]string{
		"city":        "Springfield",
		"street":      "Evergreen Terrace",
		"house":       "742",
		"postal_code": "49007",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	order := decodeBody(t, w)["order"].(map[string]interface{})
	orderID := uint(order["id"].(float64))
	assert.NotEmpty(t, order["order_number"])
	assert.Equal(t, "assembling", order["status"])

	// Order history now holds the placed order
	w = ts.do("GET", "/api/v1/orders", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])

	// Reviews are blocked until the order ships
	w = ts.do("POST", fmt.Sprintf("/api/v1/products/%d/reviews", product.ID), accessToken, map[string]interface{}{
		"rating":  5,
		"comment": "Great keyboard",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin ships the order
	staffToken := adminToken(t, ts)
	w = ts.do("PATCH", fmt.Sprintf("/api/v1/admin/orders/%d/status", orderID), staffToken, map[string]string{
		"status": "shipped",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Customer can now review
	w = ts.do("POST", fmt.Sprintf("/api/v1/products/%d/reviews", product.ID), accessToken, map[string]interface{}{
		"rating":  5,
		"comment": "Great keyboard",
		"pros":    "Battery life",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do("GET", fmt.Sprintf("/api/v1/products/%d/reviews", product.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])
}

func TestAdminStatusEndpointRequiresRole(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	w := ts.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "customer@example.com",
		"password": "password123",
		"name":     "Customer",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tokens := decodeBody(t, w)["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	w = ts.do("PATCH", "/api/v1/admin/orders/1/status", accessToken, map[string]string{
		"status": "shipped",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCheckoutValidationOverHTTP(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	w := ts.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "empty@example.com",
		"password": "password123",
		"name":     "Empty Cart",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tokens := decodeBody(t, w)["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	// Missing address fields fail binding before the service runs
	w = ts.do("POST", "/api/v1/orders/checkout", accessToken, map[string]string{
		"city": "Springfield",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Complete address but empty cart
	w = ts.do("POST", "/api/v1/orders/checkout", accessToken, map[string]string{
		"city":        "Springfield",
		"street":      "Evergreen Terrace",
		"house":       "742",
		"postal_code": "49007",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CART_EMPTY")
}
