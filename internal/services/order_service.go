package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"furniture_shop/internal/models"
	"furniture_shop/internal/repository"

	"gorm.io/gorm"
)

type OrderService interface {
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetStatus(ctx context.Context, id uint) (models.OrderStatus, error)
	ConfirmPayment(ctx context.Context, id uint, reference string) (*models.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error)
	SetStatus(ctx context.Context, id uint, status models.OrderStatus) error
	ApplyAction(ctx context.Context, ids []uint, action AdminAction) (*ActionResult, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetStatus(ctx context.Context, id uint) (models.OrderStatus, error) {
	status, err := s.orderRepo.GetStatus(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrOrderNotFound
		}
		return "", err
	}
	return models.OrderStatus(status), nil
}

// ConfirmPayment records the customer's claim that they paid. The reference
// is stored as given and not checked.
func (s *orderService) ConfirmPayment(ctx context.Context, id uint, reference string) (*models.Order, error) {
	fields := map[string]interface{}{
		"status": string(models.OrderAwaitingConfirmation),
	}
	if ref := strings.TrimSpace(reference); ref != "" {
		fields["payment_reference"] = ref
	}

	if err := s.orderRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}
	return s.orderRepo.GetByID(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	return s.orderRepo.List(ctx, filter)
}

func (s *orderService) SetStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if err := s.orderRepo.Update(ctx, id, map[string]interface{}{"status": string(status)}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}

// ApplyAction runs one admin bulk action over the selected orders.
func (s *orderService) ApplyAction(ctx context.Context, ids []uint, action AdminAction) (*ActionResult, error) {
	var (
		result *ActionResult
		err    error
	)
	switch a := action.(type) {
	case MarkPaid:
		result, err = s.markPaid(ctx, ids)
	case MarkCancelled:
		result, err = s.markCancelled(ctx, ids)
	case ProceedWithCode:
		result, err = s.proceedWithCode(ctx, ids, a.Code)
	default:
		return nil, fmt.Errorf("unsupported admin action %T", action)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("Admin action %s on %d selected order(s): %s", result.Action, len(ids), result.Message)
	return result, nil
}

func (s *orderService) markPaid(ctx context.Context, ids []uint) (*ActionResult, error) {
	n, err := s.orderRepo.SetStatus(ctx, ids, string(models.OrderPaid))
	if err != nil {
		return nil, err
	}
	return &ActionResult{
		Action:  MarkPaid{}.Name(),
		Updated: n,
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Marked %d order(s) as paid.", n),
	}, nil
}

func (s *orderService) markCancelled(ctx context.Context, ids []uint) (*ActionResult, error) {
	n, err := s.orderRepo.SetStatus(ctx, ids, string(models.OrderCancelled))
	if err != nil {
		return nil, err
	}
	return &ActionResult{
		Action:  MarkCancelled{}.Name(),
		Updated: n,
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Cancelled %d order(s).", n),
	}, nil
}

func (s *orderService) proceedWithCode(ctx context.Context, ids []uint, code string) (*ActionResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	result := &ActionResult{Action: ProceedWithCode{}.Name()}
	if code == "" {
		result.Level = LevelWarning
		result.Message = "Please enter an order code in the action form."
		return result, nil
	}

	n, err := s.orderRepo.SetStatusWhereCode(ctx, ids, code, string(models.OrderPaid))
	if err != nil {
		return nil, err
	}
	result.Updated = n
	if n == 0 {
		result.Level = LevelWarning
		result.Message = "No selected orders matched the provided code."
		return result, nil
	}
	result.Level = LevelSuccess
	result.Message = fmt.Sprintf("Proceeded %d order(s) with code %s.", n, code)
	return result, nil
}
