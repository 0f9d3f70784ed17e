package model

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a sale ledger entry. ProductID is a soft reference:
// products may be deleted after transactions point at them, so there is
// no foreign-key constraint and the product name/image are denormalized
// onto the record at sale time.
type Transaction struct {
	BaseModel
	ProductID   *uuid.UUID `gorm:"column:product_id;type:uuid;index" json:"product_id,omitempty"`
	ProductName string     `gorm:"column:product_name;type:varchar(255)" json:"product_name"`
	Quantity    int        `gorm:"column:quantity" json:"quantity"`
	Price       int64      `gorm:"column:price" json:"price"`
	TotalPrice  int64      `gorm:"column:total_price" json:"total_price"`
	Date        time.Time  `gorm:"column:tanggal;index" json:"tanggal"`
	ImageURL    string     `gorm:"column:image_url;type:varchar(512)" json:"image_url"`

	// Legacy columns left behind by earlier revisions of the store.
	// Only cmd/migrate reads these; the API never serializes them.
	LegacyName     *string `gorm:"column:nama_buah" json:"-"`
	LegacyQuantity *int    `gorm:"column:jumlah" json:"-"`
	LegacyTotal    *int64  `gorm:"column:total_harga" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
