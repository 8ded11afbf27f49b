package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"furniture_shop/internal/database"
	"furniture_shop/internal/models"
	"furniture_shop/internal/repository"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CatalogService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryProducts(ctx context.Context, slug string) (*models.Category, []models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateCategory(ctx context.Context, name, slug string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

// decimal(10,2)
var maxPrice = decimal.New(1, 8)

type ProductInput struct {
	CategoryID uint            `json:"category_id"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	Price      decimal.Decimal `json:"price"`
	Image      *string         `json:"image"`
}

type catalogService struct {
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	orderItemRepo repository.OrderItemRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository, orderItemRepo repository.OrderItemRepository) CatalogService {
	return &catalogService{categoryRepo: categoryRepo, productRepo: productRepo, orderItemRepo: orderItemRepo}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

func (s *catalogService) GetCategoryProducts(ctx context.Context, slug string) (*models.Category, []models.Product, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}

	products, err := s.productRepo.GetByCategorySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	return category, products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, name, categorySlug string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	categorySlug = strings.TrimSpace(categorySlug)

	verr := &ValidationError{}
	if name == "" {
		verr.Add("name", "This field is required.")
	} else if len([]rune(name)) > 100 {
		verr.Add("name", "Ensure this value has at most 100 characters.")
	}
	if categorySlug == "" {
		categorySlug = slug.Make(name)
	}
	if categorySlug == "" || !slug.IsSlug(categorySlug) {
		verr.Add("slug", "Enter a valid slug.")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Slug: categorySlug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if database.IsDuplicateKey(err) {
			verr.Add("slug", "Category with this slug already exists.")
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes the category and its products, unless one of those
// products was already ordered.
func (s *catalogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	count, err := s.orderItemRepo.CountByCategoryID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrProductInUse
	}
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.TrimSpace(input.Slug)

	verr := &ValidationError{}
	if input.Name == "" {
		verr.Add("name", "This field is required.")
	} else if len([]rune(input.Name)) > 200 {
		verr.Add("name", "Ensure this value has at most 200 characters.")
	}
	if input.Slug == "" {
		input.Slug = slug.Make(input.Name)
	}
	if input.Slug == "" || !slug.IsSlug(input.Slug) {
		verr.Add("slug", "Enter a valid slug.")
	}
	if input.Price.IsNegative() {
		verr.Add("price", "Ensure this value is greater than or equal to 0.")
	}
	if !input.Price.Equal(input.Price.Round(2)) {
		verr.Add("price", "Ensure that there are no more than 2 decimal places.")
	} else if input.Price.GreaterThanOrEqual(maxPrice) {
		verr.Add("price", "Ensure that there are no more than 10 digits in total.")
	}
	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		verr.Add("category_id", "Select a valid choice.")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID: input.CategoryID,
		Name:       input.Name,
		Slug:       input.Slug,
		Price:      input.Price,
		Image:      input.Image,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if database.IsDuplicateKey(err) {
			verr.Add("slug", "Product with this slug already exists.")
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// DeleteProduct refuses while order items still point at the product.
func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}

	count, err := s.orderItemRepo.CountByProductID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrProductInUse
	}
	return s.productRepo.Delete(ctx, id)
}
