package repository

import (
	"fmt"

	"fruitpos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InsufficientStockError is returned when a stock reduction asks for more
// units than the product holds. The sale is rejected and stock is left
// unchanged.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	ReduceStock(id uuid.UUID, quantity int) (*model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Product{}, "id = ?", id).Error
}

// ReduceStock decrements stock as a single conditional UPDATE so that
// concurrent sales can never race a read-then-write: the row only changes
// when it still holds enough units.
func (r *productRepo) ReduceStock(id uuid.UUID, quantity int) (*model.Product, error) {
	res := r.db.Model(&model.Product{}).
		Where("id = ? AND stok >= ?", id, quantity).
		Update("stok", gorm.Expr("stok - ?", quantity))
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		// Either the product is gone or it holds too little stock.
		product, err := r.FindByID(id)
		if err != nil {
			return nil, err
		}
		return nil, &InsufficientStockError{Available: product.Stock, Requested: quantity}
	}

	return r.FindByID(id)
}
