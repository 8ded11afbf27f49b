package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"furniture_shop/internal/services"
	"furniture_shop/internal/session"

	"github.com/gin-gonic/gin"
)

type ShopHandler struct {
	catalogService  services.CatalogService
	cartService     services.CartService
	checkoutService services.CheckoutService
	orderService    services.OrderService
}

func NewShopHandler(
	catalogService services.CatalogService,
	cartService services.CartService,
	checkoutService services.CheckoutService,
	orderService services.OrderService,
) *ShopHandler {
	return &ShopHandler{
		catalogService:  catalogService,
		cartService:     cartService,
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// Catalog endpoints
func (h *ShopHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"categories": categories})
}

func (h *ShopHandler) CategoryProducts(c *gin.Context) {
	category, products, err := h.catalogService.GetCategoryProducts(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"title": category.Name, "category": category, "products": products})
}

func (h *ShopHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"product": product})
}

// Nav is the data every storefront page shows: categories and the cart badge.
func (h *ShopHandler) Nav(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	links := make([]gin.H, 0, len(categories))
	for _, cat := range categories {
		links = append(links, gin.H{"name": cat.Name, "slug": cat.Slug})
	}
	respond(c, http.StatusOK, gin.H{
		"categories": links,
		"cart_count": session.FromContext(c).CartCount(),
	})
}

// Cart endpoints
func (h *ShopHandler) ViewCart(c *gin.Context) {
	h.renderCart(c, "")
}

func (h *ShopHandler) AddToCart(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	h.cartService.Add(session.FromContext(c), id)
	h.renderCart(c, "Added to cart.")
}

func (h *ShopHandler) RemoveFromCart(c *gin.Context) {
	id, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	h.cartService.Remove(session.FromContext(c), id)
	h.renderCart(c, "Removed from cart.")
}

func (h *ShopHandler) renderCart(c *gin.Context, message string) {
	st := session.FromContext(c)
	view, err := h.cartService.View(c.Request.Context(), st.Cart)
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{
		"items":      view.Items,
		"total":      view.Total,
		"cart_count": st.CartCount(),
	}
	if message != "" {
		body["message"] = message
	}
	respond(c, http.StatusOK, body)
}

// Checkout endpoints
func (h *ShopHandler) CheckoutSummary(c *gin.Context) {
	view, err := h.checkoutService.Summary(c.Request.Context(), session.FromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(view.Items) == 0 {
		respondError(c, services.ErrEmptyCart)
		return
	}
	respond(c, http.StatusOK, gin.H{"items": view.Items, "total": view.Total})
}

func (h *ShopHandler) Checkout(c *gin.Context) {
	// an empty cart wins over a malformed body
	view, err := h.checkoutService.Summary(c.Request.Context(), session.FromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(view.Items) == 0 {
		respondError(c, services.ErrEmptyCart)
		return
	}

	var form services.CheckoutForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	order, err := h.checkoutService.PlaceOrder(c.Request.Context(), session.FromContext(c), form)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"message":    "Order placed and currently pending. You will be notified after processing.",
		"order_id":   order.ID,
		"order_code": order.OrderCode,
		"status":     order.Status,
		"redirect":   fmt.Sprintf("/api/orders/%d", order.ID),
	})
}

// Order endpoints
func (h *ShopHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order})
}

func (h *ShopHandler) ConfirmPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		PaymentReference string `json:"payment_reference" form:"payment_reference"`
	}
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "Invalid request format")
			return
		}
	}

	order, err := h.orderService.ConfirmPayment(c.Request.Context(), id, req.PaymentReference)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"message": "Thanks! We'll verify your payment shortly.",
		"order":   order,
	})
}

// OrderStatus never falls back to a default status for unknown orders.
func (h *ShopHandler) OrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	status, err := h.orderService.GetStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			respond(c, http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"status": status})
}
