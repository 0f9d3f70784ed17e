package service

import (
	"context"
	"errors"
	"time"

	"fruitpos-backend/internal/cache"
	"fruitpos-backend/internal/model"
	"fruitpos-backend/internal/repository"
	"fruitpos-backend/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrMissingSaleName  = errors.New("product name is required")
	ErrMissingSaleTotal = errors.New("total price or unit price is required")
)

type SalesService interface {
	RecordSale(req *SaleRequest) (*model.Transaction, error)
	GetAllTransactions() ([]model.Transaction, error)
	ReduceStock(id uuid.UUID, quantity int) (*model.Product, error)
}

// SaleRequest accepts both the canonical field names and the aliases the
// older mobile clients still send. Canonical values win when both appear.
type SaleRequest struct {
	ProductID   *string `json:"product_id"`
	ProductName *string `json:"product_name"`
	Quantity    *int    `json:"quantity"`
	Price       *int64  `json:"price"`
	TotalPrice  *int64  `json:"total_price"`
	ImageURL    *string `json:"image_url"`

	// Legacy aliases
	LegacyProductID *string `json:"productId"`
	LegacyName      *string `json:"namaBuah"`
	LegacyQuantity  *int    `json:"jumlah"`
	LegacyPrice     *int64  `json:"harga"`
	LegacyTotal     *int64  `json:"totalHarga"`
}

type salesService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	cache       *cache.Cache
	wsHub       *ws.Hub
}

func NewSalesService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, c *cache.Cache, hub *ws.Hub) SalesService {
	return &salesService{
		productRepo: pRepo,
		txRepo:      tRepo,
		cache:       c,
		wsHub:       hub,
	}
}

// canonicalize maps a sale request onto a transaction record using
// first-non-null-wins resolution between canonical and legacy names.
func (req *SaleRequest) canonicalize() (*model.Transaction, error) {
	tx := &model.Transaction{}

	name := firstString(req.ProductName, req.LegacyName)
	if name == nil || *name == "" {
		return nil, ErrMissingSaleName
	}
	tx.ProductName = *name

	qty := firstInt(req.Quantity, req.LegacyQuantity)
	if qty == nil || *qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	tx.Quantity = *qty

	price := firstInt64(req.Price, req.LegacyPrice)
	total := firstInt64(req.TotalPrice, req.LegacyTotal)
	if total == nil && price == nil {
		return nil, ErrMissingSaleTotal
	}
	if price != nil {
		tx.Price = *price
	}
	if total != nil {
		tx.TotalPrice = *total
	} else {
		tx.TotalPrice = int64(tx.Quantity) * tx.Price
	}

	if rawID := firstString(req.ProductID, req.LegacyProductID); rawID != nil && *rawID != "" {
		id, err := uuid.Parse(*rawID)
		if err != nil {
			return nil, errors.New("invalid product id")
		}
		tx.ProductID = &id
	}

	if req.ImageURL != nil {
		tx.ImageURL = *req.ImageURL
	}

	return tx, nil
}

func (s *salesService) RecordSale(req *SaleRequest) (*model.Transaction, error) {
	tx, err := req.canonicalize()
	if err != nil {
		return nil, err
	}

	// The server stamps the sale time; client clocks are not trusted.
	tx.Date = time.Now()

	// Denormalize the product image when the client did not send one.
	if tx.ImageURL == "" && tx.ProductID != nil {
		if product, err := s.productRepo.FindByID(*tx.ProductID); err == nil {
			tx.ImageURL = product.ImageURL
		}
	}

	if err := s.txRepo.Create(tx); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(context.Background(), analyticsCacheKeys()...); err != nil {
		logrus.WithError(err).Warn("failed to invalidate analytics cache")
	}

	go s.wsHub.BroadcastEvent("sale_recorded", map[string]interface{}{
		"transaction": tx,
	})

	logrus.WithFields(logrus.Fields{
		"product":  tx.ProductName,
		"quantity": tx.Quantity,
		"total":    tx.TotalPrice,
	}).Info("sale recorded")
	return tx, nil
}

func (s *salesService) GetAllTransactions() ([]model.Transaction, error) {
	return s.txRepo.FindAll()
}

// ReduceStock rejects sales that ask for more units than available; the
// conditional update in the repository keeps concurrent reductions from
// ever driving stock negative.
func (s *salesService) ReduceStock(id uuid.UUID, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.ReduceStock(id, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	} else if err != nil {
		return nil, err
	}

	go s.wsHub.BroadcastEvent("stock_update", map[string]interface{}{
		"product": product,
	})
	return product, nil
}

func firstString(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstInt64(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
