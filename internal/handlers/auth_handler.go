package handlers

import (
	"net/http"

	"furniture_shop/internal/services"
	"furniture_shop/internal/session"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form services.RegistrationForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{
		"message":  "Account created. You can now log in.",
		"user":     user,
		"redirect": loginPath,
	})
}

// Login is called twice: first with username and password, then again with
// the emailed OTP added.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
		OTP      string `json:"otp" form:"otp"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), session.FromContext(c), req.Username, req.Password, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{"step": result.Step, "message": result.Notice}
	switch result.Step {
	case services.StepAuthenticated:
		body["user"] = result.User
		body["redirect"] = "/"
	default:
		body["otp_sent"] = result.Delivered
	}
	respond(c, http.StatusOK, body)
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	result, err := h.authService.ResendOTP(c.Request.Context(), session.FromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"step":     result.Step,
		"message":  result.Notice,
		"otp_sent": result.Delivered,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.authService.Logout(session.FromContext(c))
	respond(c, http.StatusOK, gin.H{"message": "Logged out.", "redirect": "/"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context(), session.FromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respond(c, http.StatusUnauthorized, gin.H{"error": "Login required", "redirect": loginPath})
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user})
}
