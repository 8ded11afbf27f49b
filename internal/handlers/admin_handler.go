package handlers

import (
	"net/http"

	"furniture_shop/internal/models"
	"furniture_shop/internal/repository"
	"furniture_shop/internal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	orderService   services.OrderService
	catalogService services.CatalogService
}

func NewAdminHandler(orderService services.OrderService, catalogService services.CatalogService) *AdminHandler {
	return &AdminHandler{orderService: orderService, catalogService: catalogService}
}

// Order management endpoints
func (h *AdminHandler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{
		Status:        c.Query("status"),
		PaymentMethod: c.Query("payment_method"),
	}
	if filter.Status != "" && !models.OrderStatus(filter.Status).IsValid() {
		respondError(c, services.ErrInvalidStatus)
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func (h *AdminHandler) GetOrder(c *gin.Context) {
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

func (h *AdminHandler) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	ctx := c.Request.Context()
	if err := h.orderService.SetStatus(ctx, id, models.OrderStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}
	order, err := h.orderService.GetOrder(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order})
}

func (h *AdminHandler) ApplyAction(c *gin.Context) {
	var req struct {
		Action string `json:"action" form:"action"`
		IDs    []uint `json:"ids" form:"ids"`
		Code   string `json:"code" form:"code"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	action, err := services.ParseAdminAction(req.Action, req.Code)
	if err != nil {
		badRequest(c, "Unknown action")
		return
	}
	if len(req.IDs) == 0 {
		respond(c, http.StatusOK, gin.H{
			"action":  action.Name(),
			"updated": 0,
			"level":   services.LevelWarning,
			"message": "Items must be selected in order to perform actions on them.",
		})
		return
	}

	result, err := h.orderService.ApplyAction(c.Request.Context(), req.IDs, action)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"action":  result.Action,
		"updated": result.Updated,
		"level":   result.Level,
		"message": result.Message,
	})
}

// Catalog management endpoints
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" form:"name"`
		Slug string `json:"slug" form:"slug"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"category": category})
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Category deleted."})
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"product": product})
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Product deleted."})
}
