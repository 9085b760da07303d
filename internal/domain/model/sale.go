package model

import "time"

// 販売台帳の1行。作成後は変更しない（追記専用）。
// Priceは購入時点の商品価格を写し取る。後からProduct.Priceを
// 変えても過去のSaleには影響しない。
type Sale struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Price     float64   `gorm:"not null" json:"price"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}
