package model

type Product struct {
	BaseModel
	Name     string `gorm:"column:nama;type:varchar(255);not null" json:"nama" validate:"required"`
	Price    int64  `gorm:"column:harga;not null;default:0" json:"harga" validate:"gte=0"`
	Stock    int    `gorm:"column:stok;not null;default:0" json:"stok" validate:"gte=0"`
	ImageURL string `gorm:"column:image_url;type:varchar(512)" json:"image_url"`
}

func (Product) TableName() string {
	return "products"
}
