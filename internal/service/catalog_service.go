package service

import (
	"errors"
	"fmt"

	"fruitpos-backend/internal/model"
	"fruitpos-backend/internal/repository"
	"fruitpos-backend/internal/ws"
	"fruitpos-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

type CatalogService interface {
	GetAllProducts() ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(id uuid.UUID, req *ProductUpdateRequest) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
}

// ProductUpdateRequest carries a partial update: only non-nil fields
// change, and the image is replaced only when a new one is supplied.
type ProductUpdateRequest struct {
	Name     *string `json:"nama"`
	Price    *int64  `json:"harga" validate:"omitempty,gte=0"`
	Stock    *int    `json:"stok" validate:"omitempty,gte=0"`
	ImageURL *string `json:"image_url"`
}

type catalogService struct {
	productRepo repository.ProductRepository
	wsHub       *ws.Hub
}

func NewCatalogService(productRepo repository.ProductRepository, hub *ws.Hub) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		wsHub:       hub,
	}
}

func (s *catalogService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *catalogService) CreateProduct(product *model.Product) error {
	if errs := validator.ValidateStruct(product); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	if err := s.productRepo.Create(product); err != nil {
		return err
	}

	go s.wsHub.BroadcastEvent("product_created", map[string]interface{}{
		"product": product,
	})
	return nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *ProductUpdateRequest) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	product, err := s.productRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	} else if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != nil && *req.ImageURL != "" {
		product.ImageURL = *req.ImageURL
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	go s.wsHub.BroadcastEvent("product_updated", map[string]interface{}{
		"product": product,
	})
	return product, nil
}

// DeleteProduct is idempotent and does not cascade: transactions keep
// their denormalized product name and image.
func (s *catalogService) DeleteProduct(id uuid.UUID) error {
	return s.productRepo.Delete(id)
}
