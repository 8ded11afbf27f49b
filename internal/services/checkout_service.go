package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"furniture_shop/internal/database"
	"furniture_shop/internal/models"
	"furniture_shop/internal/repository"
	"furniture_shop/internal/session"

	"github.com/go-playground/validator/v10"
)

// CheckoutForm is the shipping and payment data submitted at checkout.
type CheckoutForm struct {
	Name          string `json:"name" form:"name" validate:"required,max=150"`
	Phone         string `json:"phone" form:"phone" validate:"required,max=20"`
	Email         string `json:"email" form:"email" validate:"required,email,max=254"`
	Address       string `json:"address" form:"address" validate:"required"`
	City          string `json:"city" form:"city" validate:"required,max=80"`
	PostalCode    string `json:"postal_code" form:"postal_code" validate:"required,max=12"`
	PaymentMethod string `json:"payment_method" form:"payment_method" validate:"required,oneof=COD UPI"`
}

func (f *CheckoutForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
}

type CheckoutService interface {
	Summary(ctx context.Context, state *session.State) (*CartView, error)
	PlaceOrder(ctx context.Context, state *session.State, form CheckoutForm) (*models.Order, error)
}

type checkoutService struct {
	cartService CartService
	orderRepo   repository.OrderRepository
	validate    *validator.Validate
	newCode     func() (string, error)
	maxAttempts int
}

func NewCheckoutService(cartService CartService, orderRepo repository.OrderRepository, maxAttempts int) CheckoutService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &checkoutService{
		cartService: cartService,
		orderRepo:   orderRepo,
		validate:    newValidator(),
		newCode:     models.NewOrderCode,
		maxAttempts: maxAttempts,
	}
}

func (s *checkoutService) Summary(ctx context.Context, state *session.State) (*CartView, error) {
	return s.cartService.View(ctx, state.Cart)
}

// PlaceOrder turns the session cart into a pending order. The order and its
// items are written in one transaction; if the generated code is already
// taken the transaction is retried with a new code.
func (s *checkoutService) PlaceOrder(ctx context.Context, state *session.State, form CheckoutForm) (*models.Order, error) {
	view, err := s.cartService.View(ctx, state.Cart)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(view.Items) == 0 {
		return nil, ErrEmptyCart
	}

	form.normalize()
	if err := validateStruct(s.validate, form); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}

		order := newOrder(form, view, code)
		err = s.orderRepo.CreateWithItems(ctx, order)
		if err == nil {
			s.cartService.Clear(state)
			log.Printf("Order %d placed with code %s (%d items, total %s)", order.ID, order.OrderCode, len(order.Items), order.Total)
			return order, nil
		}
		if !database.IsDuplicateKey(err) {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		log.Printf("Warning: order code %s already taken (attempt %d/%d)", code, attempt, s.maxAttempts)
	}
	return nil, ErrOrderCodeExhausted
}

func newOrder(form CheckoutForm, view *CartView, code string) *models.Order {
	items := make([]models.OrderItem, 0, len(view.Items))
	for _, line := range view.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ID,
			Product:   line.product,
			Price:     line.Price,
			Qty:       line.Qty,
		})
	}

	return &models.Order{
		Name:          form.Name,
		Phone:         form.Phone,
		Email:         form.Email,
		Address:       form.Address,
		City:          form.City,
		PostalCode:    form.PostalCode,
		PaymentMethod: form.PaymentMethod,
		Total:         view.Total,
		Status:        string(models.OrderPending),
		OrderCode:     code,
		Items:         items,
	}
}
