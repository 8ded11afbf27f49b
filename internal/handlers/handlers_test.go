package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"furniture_shop/internal/database/databasetest"
	"furniture_shop/internal/models"
	"furniture_shop/internal/redis"
	"furniture_shop/internal/repository"
	"furniture_shop/internal/services"
	"furniture_shop/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSender struct {
	mu     sync.Mutex
	bodies []string
}

func (s *recordingSender) Send(ctx context.Context, subject, body, recipient string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, body)
	return nil
}

func (s *recordingSender) lastOTP(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.bodies)
	body := s.bodies[len(s.bodies)-1]
	const marker = "Here is your OTP: "
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0, body)
	return body[i+len(marker) : i+len(marker)+4]
}

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	redis    *miniredis.Miniredis
	sender   *recordingSender
	users    services.UserService
	armchair models.Product
	stool    models.Product
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := databasetest.Open(t)
	mr := miniredis.RunT(t)
	ttl := time.Hour
	store, err := redis.Initialize("redis://"+mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	userRepo := repository.NewUserRepository(db)

	sender := &recordingSender{}
	catalogService := services.NewCatalogService(categoryRepo, productRepo, orderItemRepo)
	cartService := services.NewCartService(productRepo)
	checkoutService := services.NewCheckoutService(cartService, orderRepo, 5)
	orderService := services.NewOrderService(orderRepo)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userService, userRepo, sender)

	router := gin.New()
	router.Use(session.Middleware(store, session.NewCodec("test-secret", ttl), ttl))
	RegisterRoutes(router,
		NewShopHandler(catalogService, cartService, checkoutService, orderService),
		NewAuthHandler(userService, authService),
		NewAdminHandler(orderService, catalogService),
		authService,
	)

	srv := &testServer{router: router, db: db, redis: mr, sender: sender, users: userService}

	chairs := models.Category{Name: "Chairs", Slug: "chairs"}
	require.NoError(t, db.Create(&chairs).Error)
	srv.armchair = models.Product{CategoryID: chairs.ID, Name: "Armchair", Slug: "armchair", Price: decimal.NewFromInt(100)}
	srv.stool = models.Product{CategoryID: chairs.ID, Name: "Stool", Slug: "stool", Price: decimal.NewFromInt(50)}
	require.NoError(t, db.Create(&srv.armchair).Error)
	require.NoError(t, db.Create(&srv.stool).Error)
	return srv
}

func (s *testServer) createUser(t *testing.T, username string, role models.UserRole) {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Role: string(role), IsActive: true}
	require.NoError(t, s.users.CreateUser(context.Background(), user, "Secret123"))
}

// client keeps the session cookie between requests like a browser would.
type client struct {
	t      *testing.T
	srv    *testServer
	cookie *http.Cookie
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, srv: s}
}

type response struct {
	Code int
	Body map[string]interface{}
}

func (c *client) do(method, path string, payload interface{}) response {
	c.t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(c.t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	w := httptest.NewRecorder()
	c.srv.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.CookieName {
			c.cookie = ck
		}
	}

	resp := response{Code: w.Code}
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp.Body), w.Body.String())
	}
	return resp
}

func (c *client) login(username string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": "Secret123"})
	require.Equal(c.t, http.StatusOK, resp.Code, spew.Sdump(resp))
	resp = c.do(http.MethodPost, "/api/auth/login", gin.H{
		"username": username,
		"password": "Secret123",
		"otp":      c.srv.sender.lastOTP(c.t),
	})
	require.Equal(c.t, http.StatusOK, resp.Code, spew.Sdump(resp))
}

func checkoutPayload() gin.H {
	return gin.H{
		"name":           "Ann Lee",
		"phone":          "5550100",
		"email":          "ann@example.com",
		"address":        "1 Main St",
		"city":           "Pune",
		"postal_code":    "411001",
		"payment_method": "COD",
	}
}

func TestCartFlow(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	resp := c.do(http.MethodPost, fmt.Sprintf("/api/cart/add/%d", srv.armchair.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Added to cart.", resp.Body["message"])
	c.do(http.MethodPost, fmt.Sprintf("/api/cart/add/%d", srv.armchair.ID), nil)
	c.do(http.MethodPost, fmt.Sprintf("/api/cart/add/%d", srv.stool.ID), nil)

	resp = c.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "250", resp.Body["total"])
	assert.Len(t, resp.Body["items"], 2)

	resp = c.do(http.MethodGet, "/api/nav", nil)
	assert.Equal(t, float64(3), resp.Body["cart_count"])

	resp = c.do(http.MethodPost, fmt.Sprintf("/api/cart/remove/%d", srv.stool.ID), nil)
	assert.Equal(t, "Removed from cart.", resp.Body["message"])
	assert.Equal(t, "200", resp.Body["total"])

	resp = c.do(http.MethodPost, "/api/cart/add/chair", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCartIsPerSession(t *testing.T) {
	srv := newTestServer(t)
	a := srv.client(t)
	b := srv.client(t)

	a.do(http.MethodPost, fmt.Sprintf("/api/cart/add/%d", srv.stool.ID), nil)

	resp := b.do(http.MethodGet, "/api/cart", nil)
	assert.Empty(t, resp.Body["items"])
}

func TestTamperedCookieStartsFreshSession(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.do(http.MethodPost, fmt.Sprintf("/api/cart/add/%d", srv.stool.ID), nil)

	c.cookie.Value += "x"
	resp := c.do(http.MethodGet, "/api/cart", nil)
	assert.Empty(t, resp.Body["items"])
}

func TestCheckout(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	resp := c.do(http.MethodPost, "/api/checkout", checkoutPayload())
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "/api/cart", resp.Body["redirect"])

	resp = c.do(http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Your cart is empty.", resp.Body["error"])
	assert.Equal(t, "/api/cart", resp.Body["redirect"])

	c.do(http.MethodPost, fmt.Sprintf("/api/cart/add/%d", srv.armchair.ID), nil)

	bad := checkoutPayload()
	bad["email"] = "nope"
	resp = c.do(http.MethodPost, "/api/checkout", bad)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body["fields"], "email")

	resp = c.do(http.MethodGet, "/api/checkout", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "100", resp.Body["total"])

	resp = c.do(http.MethodPost, "/api/checkout", checkoutPayload())
	require.Equal(t, http.StatusCreated, resp.Code, spew.Sdump(resp))
	assert.Equal(t, "pending", resp.Body["status"])
	assert.Equal(t, "Order placed and currently pending. You will be notified after processing.", resp.Body["message"])
	orderID := uint(resp.Body["order_id"].(float64))
	assert.Equal(t, fmt.Sprintf("/api/orders/%d", orderID), resp.Body["redirect"])

	resp = c.do(http.MethodGet, "/api/cart", nil)
	assert.Empty(t, resp.Body["items"])

	resp = c.do(http.MethodGet, fmt.Sprintf("/api/orders/%d/status", orderID), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "pending", resp.Body["status"])

	resp = c.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/pay", orderID), gin.H{"payment_reference": "TXN1"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Thanks! We'll verify your payment shortly.", resp.Body["message"])

	resp = c.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	order := resp.Body["order"].(map[string]interface{})
	assert.Equal(t, "awaiting_confirmation", order["status"])
	assert.Equal(t, "TXN1", order["payment_reference"])
}

func TestOrderNotFound(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	resp := c.do(http.MethodGet, "/api/orders/9999/status", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "not_found", resp.Body["error"])

	resp = c.do(http.MethodPost, "/api/orders/9999/pay", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "/", resp.Body["redirect"])
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	resp := c.do(http.MethodGet, "/api/categories/chairs/products", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Chairs", resp.Body["title"])
	assert.Len(t, resp.Body["products"], 2)

	resp = c.do(http.MethodGet, "/api/categories/beds/products", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = c.do(http.MethodGet, fmt.Sprintf("/api/products/%d", srv.stool.ID), nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "ann", models.Customer)
	c := srv.client(t)

	resp := c.do(http.MethodGet, "/api/auth/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = c.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ann", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = c.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ann", "password": "Secret123"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "otp_required", resp.Body["step"])

	resp = c.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ann", "password": "Secret123", "otp": "0"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid OTP. Please try again.", resp.Body["error"])

	resp = c.do(http.MethodPost, "/api/auth/login/resend", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "A new OTP has been sent to your email.", resp.Body["message"])

	resp = c.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ann", "password": "Secret123", "otp": srv.sender.lastOTP(t)})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "authenticated", resp.Body["step"])

	resp = c.do(http.MethodGet, "/api/auth/profile", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	user := resp.Body["user"].(map[string]interface{})
	assert.Equal(t, "ann", user["username"])
	assert.NotContains(t, user, "password_hash")

	c.do(http.MethodPost, "/api/auth/logout", nil)
	resp = c.do(http.MethodGet, "/api/auth/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestResendWithoutPendingLogin(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	resp := c.do(http.MethodPost, "/api/auth/login/resend", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "/api/auth/login", resp.Body["redirect"])
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	form := gin.H{"username": "new_user", "email": "new@example.com", "password1": "Secret123", "password2": "Secret123"}
	resp := c.do(http.MethodPost, "/api/auth/register", form)
	require.Equal(t, http.StatusCreated, resp.Code, spew.Sdump(resp))
	assert.Equal(t, "Account created. You can now log in.", resp.Body["message"])

	resp = c.do(http.MethodPost, "/api/auth/register", form)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body["fields"], "username")
}

func TestAdminRequiresStaff(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "ann", models.Customer)

	anon := srv.client(t)
	resp := anon.do(http.MethodGet, "/api/admin/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	customer := srv.client(t)
	customer.login("ann")
	resp = customer.do(http.MethodGet, "/api/admin/orders", nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAdminOrderActions(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "boss", models.Admin)

	shopper := srv.client(t)
	var ids []uint
	var codes []string
	for i := 0; i < 2; i++ {
		shopper.do(http.MethodPost, fmt.Sprintf("/api/cart/add/%d", srv.stool.ID), nil)
		resp := shopper.do(http.MethodPost, "/api/checkout", checkoutPayload())
		require.Equal(t, http.StatusCreated, resp.Code)
		ids = append(ids, uint(resp.Body["order_id"].(float64)))
		codes = append(codes, resp.Body["order_code"].(string))
	}

	admin := srv.client(t)
	admin.login("boss")

	resp := admin.do(http.MethodGet, "/api/admin/orders?status=pending", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, float64(2), resp.Body["count"])

	resp = admin.do(http.MethodPost, "/api/admin/orders/actions", gin.H{"action": "proceed_order", "ids": ids, "code": strings.ToLower(codes[0])})
	require.Equal(t, http.StatusOK, resp.Code, spew.Sdump(resp))
	assert.Equal(t, float64(1), resp.Body["updated"])
	assert.Equal(t, "success", resp.Body["level"])

	resp = admin.do(http.MethodGet, fmt.Sprintf("/api/orders/%d/status", ids[0]), nil)
	assert.Equal(t, "paid", resp.Body["status"])
	resp = admin.do(http.MethodGet, fmt.Sprintf("/api/orders/%d/status", ids[1]), nil)
	assert.Equal(t, "pending", resp.Body["status"])

	resp = admin.do(http.MethodPost, "/api/admin/orders/actions", gin.H{"action": "explode", "ids": ids})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = admin.do(http.MethodPatch, fmt.Sprintf("/api/admin/orders/%d", ids[1]), gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, resp.Code)
	order := resp.Body["order"].(map[string]interface{})
	assert.Equal(t, "cancelled", order["status"])
	assert.Equal(t, codes[1], order["order_code"])

	resp = admin.do(http.MethodPatch, fmt.Sprintf("/api/admin/orders/%d", ids[1]), gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = admin.do(http.MethodDelete, fmt.Sprintf("/api/admin/products/%d", srv.stool.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestAdminCatalog(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "boss", models.Admin)
	admin := srv.client(t)
	admin.login("boss")

	resp := admin.do(http.MethodPost, "/api/admin/categories", gin.H{"name": "Outdoor Living"})
	require.Equal(t, http.StatusCreated, resp.Code, spew.Sdump(resp))
	category := resp.Body["category"].(map[string]interface{})
	assert.Equal(t, "outdoor-living", category["slug"])

	resp = admin.do(http.MethodPost, "/api/admin/products", gin.H{
		"category_id": category["id"],
		"name":        "Garden Bench",
		"price":       "149.90",
	})
	require.Equal(t, http.StatusCreated, resp.Code, spew.Sdump(resp))
	product := resp.Body["product"].(map[string]interface{})
	assert.Equal(t, "garden-bench", product["slug"])

	resp = admin.do(http.MethodDelete, fmt.Sprintf("/api/admin/categories/%d", uint(category["id"].(float64))), nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = admin.do(http.MethodGet, "/api/categories/outdoor-living/products", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
