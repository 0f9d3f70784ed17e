package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fruitpos-backend/internal/handler"
	"fruitpos-backend/internal/middleware"
	"fruitpos-backend/internal/model"
	"fruitpos-backend/internal/repository"
	"fruitpos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	adminToken string
	staffToken string
}

// newTestEnv wires the app the same way cmd/api does, against an
// in-memory database, and returns tokens for one admin and one staff user.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Product{}, &model.Transaction{}))

	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)

	authService := service.NewAuthService(userRepo, testSecret)
	catalogService := service.NewCatalogService(productRepo, nil)
	salesService := service.NewSalesService(productRepo, txRepo, nil, nil)
	analyticsService := service.NewAnalyticsService(txRepo, nil)
	userService := service.NewUserService(userRepo)

	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	salesHandler := handler.NewSalesHandler(salesService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	userHandler := handler.NewUserHandler(userService)

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)

	protected := api.Group("", middleware.RequireAuth(testSecret))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	protected.Get("/products", catalogHandler.GetProducts)
	protected.Get("/products/:id", catalogHandler.GetProduct)
	protected.Post("/products", adminOnly, catalogHandler.CreateProduct)
	protected.Put("/products/:id/reduce-stock", salesHandler.ReduceStock)
	protected.Put("/products/:id", adminOnly, catalogHandler.UpdateProduct)
	protected.Delete("/products/:id", adminOnly, catalogHandler.DeleteProduct)

	protected.Get("/transactions", salesHandler.GetTransactions)
	protected.Post("/transactions", salesHandler.CreateTransaction)

	protected.Get("/analytics/summary", analyticsHandler.GetSummary)
	protected.Get("/analytics/best-selling", analyticsHandler.GetBestSelling)
	protected.Get("/analytics/daily-sales", analyticsHandler.GetDailySales)

	protected.Get("/users", adminOnly, userHandler.GetUsers)
	protected.Get("/users/:id", adminOnly, userHandler.GetUser)
	protected.Put("/users/:id", adminOnly, userHandler.UpdateUser)
	protected.Delete("/users/:id", adminOnly, userHandler.DeleteUser)

	env := &testEnv{app: app, db: db}

	_, err = authService.Register(&service.RegisterRequest{Username: "boss", Password: "rahasia1", Role: model.RoleAdmin})
	require.NoError(t, err)
	_, err = authService.Register(&service.RegisterRequest{Username: "kasir", Password: "rahasia1"})
	require.NoError(t, err)

	admin, err := authService.Login("boss", "rahasia1")
	require.NoError(t, err)
	env.adminToken = admin.Token
	staff, err := authService.Login("kasir", "rahasia1")
	require.NoError(t, err)
	env.staffToken = staff.Token

	return env
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, "POST", "/api/register", "", fiber.Map{"username": "baru", "password": "rahasia1"})
	assert.Equal(t, 201, resp.StatusCode)

	// Duplicate username.
	resp, body := env.request(t, "POST", "/api/register", "", fiber.Map{"username": "baru", "password": "rahasia1"})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, string(body), "username already exists")
}

func TestLoginEndpoint_GenericUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	respWrong, bodyWrong := env.request(t, "POST", "/api/login", "", fiber.Map{"username": "kasir", "password": "salah"})
	respUnknown, bodyUnknown := env.request(t, "POST", "/api/login", "", fiber.Map{"username": "hantu", "password": "salah"})

	assert.Equal(t, 401, respWrong.StatusCode)
	assert.Equal(t, 401, respUnknown.StatusCode)
	assert.Equal(t, string(bodyWrong), string(bodyUnknown), "failure responses must be indistinguishable")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, "GET", "/api/products", "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	resp, _ = env.request(t, "GET", "/api/transactions", "invalid-token", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestCatalogRoleGating(t *testing.T) {
	env := newTestEnv(t)
	product := fiber.Map{"nama": "Mangga", "harga": 25000, "stok": 40}

	resp, _ := env.request(t, "POST", "/api/products", env.staffToken, product)
	assert.Equal(t, 403, resp.StatusCode)

	resp, body := env.request(t, "POST", "/api/products", env.adminToken, product)
	require.Equal(t, 201, resp.StatusCode)

	var created model.Product
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Mangga", created.Name)

	// Staff can still read the catalog.
	resp, _ = env.request(t, "GET", "/api/products", env.staffToken, nil)
	assert.Equal(t, 200, resp.StatusCode)

	// But not delete from it.
	resp, _ = env.request(t, "DELETE", "/api/products/"+created.ID.String(), env.staffToken, nil)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestProductLifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, "POST", "/api/products", env.adminToken, fiber.Map{
		"nama": "Jeruk", "harga": 10000, "stok": 20, "image_url": "https://cdn.example.com/jeruk.jpg",
	})
	require.Equal(t, 201, resp.StatusCode)
	var created model.Product
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body = env.request(t, "GET", "/api/products/"+created.ID.String(), env.staffToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	var fetched model.Product
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created.Name, fetched.Name)
	assert.Equal(t, created.Price, fetched.Price)
	assert.Equal(t, created.Stock, fetched.Stock)
	assert.Equal(t, created.ImageURL, fetched.ImageURL)

	resp, body = env.request(t, "PUT", "/api/products/"+created.ID.String(), env.adminToken, fiber.Map{"harga": 12000})
	require.Equal(t, 200, resp.StatusCode)
	var updated model.Product
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, int64(12000), updated.Price)
	assert.Equal(t, "Jeruk", updated.Name)

	resp, _ = env.request(t, "DELETE", "/api/products/"+created.ID.String(), env.adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp, _ = env.request(t, "GET", "/api/products/"+created.ID.String(), env.staffToken, nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestReduceStockEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.request(t, "POST", "/api/products", env.adminToken, fiber.Map{"nama": "Apel", "harga": 15000, "stok": 5})
	var product model.Product
	require.NoError(t, json.Unmarshal(body, &product))
	path := "/api/products/" + product.ID.String() + "/reduce-stock"

	// Staff records sales, so reduce-stock is not admin-gated.
	resp, body := env.request(t, "PUT", path, env.staffToken, fiber.Map{"quantity": 2})
	require.Equal(t, 200, resp.StatusCode)
	var updated model.Product
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, 3, updated.Stock)

	// Insufficient stock is rejected with the shortfall details.
	resp, body = env.request(t, "PUT", path, env.staffToken, fiber.Map{"quantity": 10})
	require.Equal(t, 400, resp.StatusCode)
	var failure struct {
		Message   string `json:"message"`
		Available int    `json:"available"`
		Requested int    `json:"requested"`
	}
	require.NoError(t, json.Unmarshal(body, &failure))
	assert.Equal(t, 3, failure.Available)
	assert.Equal(t, 10, failure.Requested)

	resp, _ = env.request(t, "PUT", path, env.staffToken, fiber.Map{"quantity": 0})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestTransactionEndpoints(t *testing.T) {
	env := newTestEnv(t)

	// Legacy aliases from the old mobile client.
	resp, body := env.request(t, "POST", "/api/transactions", env.staffToken, fiber.Map{
		"namaBuah": "Mangga", "jumlah": 2, "totalHarga": 50000,
	})
	require.Equal(t, 201, resp.StatusCode)
	var tx model.Transaction
	require.NoError(t, json.Unmarshal(body, &tx))
	assert.Equal(t, "Mangga", tx.ProductName)
	assert.Equal(t, 2, tx.Quantity)
	assert.Equal(t, int64(50000), tx.TotalPrice)

	resp, _ = env.request(t, "POST", "/api/transactions", env.staffToken, fiber.Map{
		"product_name": "Jeruk", "quantity": 1, "total_price": 10000,
	})
	require.Equal(t, 201, resp.StatusCode)

	resp, body = env.request(t, "GET", "/api/transactions", env.staffToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	var list []model.Transaction
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Jeruk", list[0].ProductName, "newest first")

	// Missing required fields after mapping.
	resp, _ = env.request(t, "POST", "/api/transactions", env.staffToken, fiber.Map{"jumlah": 2})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, sale := range []fiber.Map{
		{"product_name": "Mangga", "quantity": 2, "total_price": 100},
		{"product_name": "Mangga", "quantity": 1, "total_price": 50},
		{"product_name": "Jeruk", "quantity": 1, "total_price": 30},
	} {
		resp, _ := env.request(t, "POST", "/api/transactions", env.staffToken, sale)
		require.Equal(t, 201, resp.StatusCode)
	}

	resp, body := env.request(t, "GET", "/api/analytics/summary", env.staffToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	var summary service.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, int64(180), summary.TotalSales)
	assert.Equal(t, int64(180), summary.TodaySales)
	assert.Equal(t, 3, summary.TransactionCount)

	resp, body = env.request(t, "GET", "/api/analytics/best-selling", env.staffToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	var items []service.BestSellingItem
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Mangga", items[0].ProductName)
	assert.Equal(t, 3, items[0].TotalQuantity)

	resp, body = env.request(t, "GET", "/api/analytics/daily-sales?days=7", env.staffToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	var daily struct {
		Period int                       `json:"period"`
		Data   []service.DailySalesEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &daily))
	assert.Equal(t, 7, daily.Period)
	require.Len(t, daily.Data, 7)
	assert.Equal(t, int64(180), daily.Data[6].Total)
}

func TestUserManagement(t *testing.T) {
	env := newTestEnv(t)

	// Staff cannot touch user management.
	resp, _ := env.request(t, "GET", "/api/users", env.staffToken, nil)
	assert.Equal(t, 403, resp.StatusCode)

	resp, body := env.request(t, "GET", "/api/users", env.adminToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.NotContains(t, string(body), "password", "password hash must never be serialized")

	var users []model.UserResponse
	require.NoError(t, json.Unmarshal(body, &users))
	require.Len(t, users, 2)

	// Role filter.
	resp, body = env.request(t, "GET", "/api/users?role=staff", env.adminToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "kasir", users[0].Username)

	// Promote the staff user.
	resp, body = env.request(t, "PUT", "/api/users/"+users[0].ID.String(), env.adminToken, fiber.Map{"role": "admin"})
	require.Equal(t, 200, resp.StatusCode)
	var updated model.UserResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, model.RoleAdmin, updated.Role)

	// Delete and verify 404 afterwards.
	resp, _ = env.request(t, "DELETE", "/api/users/"+users[0].ID.String(), env.adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)
	resp, _ = env.request(t, "GET", "/api/users/"+users[0].ID.String(), env.adminToken, nil)
	assert.Equal(t, 404, resp.StatusCode)
}
