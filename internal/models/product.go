package models

import "time"

type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	Barcode      string    `gorm:"size:13;uniqueIndex" json:"barcode"` // derived from ID, zero-padded to 12 digits
	UnitCost     float64   `gorm:"not null" json:"unit_cost"`
	SalePrice    *float64  `json:"sale_price"` // nil falls back to UnitCost at sale time
	Unit         string    `gorm:"size:20" json:"unit"`
	Description  string    `gorm:"size:255" json:"description"`
	LabelPrinted bool      `gorm:"not null;default:false" json:"label_printed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Price resolves the effective selling price: sale price when set,
// otherwise the unit cost.
func (p *Product) Price() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.UnitCost
}
