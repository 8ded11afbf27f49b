package services

import (
	"context"
	"sort"
	"strconv"

	"furniture_shop/internal/models"
	"furniture_shop/internal/repository"
	"furniture_shop/internal/session"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	Image     *string         `json:"image_url"`
	LineTotal decimal.Decimal `json:"line_total"`

	product *models.Product
}

type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type CartService interface {
	Add(state *session.State, productID uint)
	Remove(state *session.State, productID uint)
	Clear(state *session.State)
	View(ctx context.Context, cart session.Cart) (*CartView, error)
}

type cartService struct {
	productRepo repository.ProductRepository
}

func NewCartService(productRepo repository.ProductRepository) CartService {
	return &cartService{productRepo: productRepo}
}

func (s *cartService) Add(state *session.State, productID uint) {
	state.AddToCart(productID)
}

func (s *cartService) Remove(state *session.State, productID uint) {
	state.RemoveFromCart(productID)
}

func (s *cartService) Clear(state *session.State) {
	state.ClearCart()
}

// View prices the cart against the current catalog. Entries whose product is
// gone, or whose key or quantity is unusable, are left out of the view but
// stay in the session.
func (s *cartService) View(ctx context.Context, cart session.Cart) (*CartView, error) {
	view := &CartView{Items: []CartLine{}, Total: decimal.Zero}

	qty := make(map[uint]int, len(cart))
	ids := make([]uint, 0, len(cart))
	for key, entry := range cart {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || id == 0 || entry.Qty < 1 {
			continue
		}
		qty[uint(id)] = entry.Qty
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return view, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(qty[id])))
		view.Total = view.Total.Add(lineTotal)
		view.Items = append(view.Items, CartLine{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Qty:       qty[id],
			Image:     p.Image,
			LineTotal: lineTotal,
			product:   p,
		})
	}
	return view, nil
}
