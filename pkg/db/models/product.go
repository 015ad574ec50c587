package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryAll is the sentinel category meaning "no category filter".
const CategoryAll = "all"

// Product represents a catalog listing. The core only reads products; it
// never mutates the catalog.
type Product struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name     string          `gorm:"column:name;not null"`
	Brand    string          `gorm:"column:brand;not null;default:''"`
	Category string          `gorm:"column:category;not null;default:''"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	// Image is an optional reference; the empty string is the defined
	// default when a listing has no image.
	Image     string    `gorm:"column:image;not null;default:''"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
