package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"furniture_shop/internal/services"
	"furniture_shop/internal/session"

	"github.com/gin-gonic/gin"
)

const loginPath = "/api/auth/login"

// respond persists the session before writing the body, so the client's
// next request already sees the change.
func respond(c *gin.Context, status int, body gin.H) {
	session.Save(c)
	c.JSON(status, body)
}

// respondError maps service errors to status codes and user-facing messages.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respond(c, http.StatusUnprocessableEntity, gin.H{
			"error":  "Please correct the errors below.",
			"fields": verr.Fields,
		})
	case errors.Is(err, services.ErrEmptyCart):
		respond(c, http.StatusBadRequest, gin.H{"error": "Your cart is empty.", "redirect": "/api/cart"})
	case errors.Is(err, services.ErrOrderNotFound):
		respond(c, http.StatusNotFound, gin.H{"error": "Order not found.", "redirect": "/"})
	case errors.Is(err, services.ErrCategoryNotFound):
		respond(c, http.StatusNotFound, gin.H{"error": "Category not found.", "redirect": "/"})
	case errors.Is(err, services.ErrProductNotFound):
		respond(c, http.StatusNotFound, gin.H{"error": "Product not found."})
	case errors.Is(err, services.ErrProductInUse):
		respond(c, http.StatusConflict, gin.H{"error": "This item is referenced by existing orders and cannot be deleted."})
	case errors.Is(err, services.ErrInvalidStatus):
		respond(c, http.StatusBadRequest, gin.H{"error": "Select a valid status."})
	case errors.Is(err, services.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, gin.H{"error": "Invalid username or password."})
	case errors.Is(err, services.ErrInvalidOTP):
		respond(c, http.StatusBadRequest, gin.H{"error": "Invalid OTP. Please try again.", "step": services.StepOTPRequired})
	case errors.Is(err, services.ErrOTPSessionExpired):
		respond(c, http.StatusBadRequest, gin.H{"error": "OTP session expired. Please try logging in again.", "redirect": loginPath})
	case errors.Is(err, services.ErrNoPendingLogin):
		respond(c, http.StatusBadRequest, gin.H{"error": "Please enter your username and password first to generate an OTP.", "redirect": loginPath})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		respond(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	respond(c, http.StatusBadRequest, gin.H{"error": msg})
}

// paramID parses a positive integer path parameter, answering 400 when it
// is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
