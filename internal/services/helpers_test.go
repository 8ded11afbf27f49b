package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"furniture_shop/internal/database/databasetest"
	"furniture_shop/internal/models"
	"furniture_shop/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	categories repository.CategoryRepository
	products   repository.ProductRepository
	orders     repository.OrderRepository
	orderItems repository.OrderItemRepository
	users      repository.UserRepository

	chairs   models.Category
	armchair models.Product
	stool    models.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := databasetest.Open(t)
	env := &testEnv{
		db:         db,
		categories: repository.NewCategoryRepository(db),
		products:   repository.NewProductRepository(db),
		orders:     repository.NewOrderRepository(db),
		orderItems: repository.NewOrderItemRepository(db),
		users:      repository.NewUserRepository(db),
	}

	env.chairs = models.Category{Name: "Chairs", Slug: "chairs"}
	require.NoError(t, db.Create(&env.chairs).Error)
	env.armchair = models.Product{CategoryID: env.chairs.ID, Name: "Armchair", Slug: "armchair", Price: decimal.NewFromInt(100)}
	env.stool = models.Product{CategoryID: env.chairs.ID, Name: "Stool", Slug: "stool", Price: decimal.NewFromInt(50)}
	require.NoError(t, db.Create(&env.armchair).Error)
	require.NoError(t, db.Create(&env.stool).Error)
	return env
}

func (env *testEnv) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(model).Count(&n).Error)
	return n
}

func validCheckoutForm() CheckoutForm {
	return CheckoutForm{
		Name:          "Ann Lee",
		Phone:         "5550100",
		Email:         "ann@example.com",
		Address:       "1 Main St",
		City:          "Pune",
		PostalCode:    "411001",
		PaymentMethod: "UPI",
	}
}

// codes hands out the given codes in order, then fails.
func codes(list ...string) func() (string, error) {
	var mu sync.Mutex
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(list) == 0 {
			return "", errors.New("out of codes")
		}
		code := list[0]
		list = list[1:]
		return code, nil
	}
}

type sentMail struct {
	Subject   string
	Body      string
	Recipient string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(ctx context.Context, subject, body, recipient string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{Subject: subject, Body: body, Recipient: recipient})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func cartKeyFor(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
