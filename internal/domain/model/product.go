package model

import (
	"time"

	"gorm.io/gorm"
)

const ProductStatusActive = "active"

type Product struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"column:product_name;type:varchar(100);not null" json:"product_name"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
	//在庫がこの値以下になったら発注アラーム
	AlarmAt   int64          `gorm:"not null" json:"alarm_at"`
	IsAlarm   bool           `gorm:"not null;default:false" json:"is_alarm"`
	Price     float64        `gorm:"not null" json:"price"`
	Status    string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	ImagePath string         `gorm:"type:varchar(255)" json:"image_path"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
