package models

import "time"

type SaleStatus string

const (
	SaleStatusNormal    SaleStatus = "normal"
	SaleStatusCancelled SaleStatus = "cancelled"
)

type Sale struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID *uint      `gorm:"index" json:"customer_id"`
	Customer   *Customer  `json:"customer,omitempty"`
	Total      float64    `gorm:"not null;default:0" json:"total"`
	Status     SaleStatus `gorm:"size:20;not null;default:normal" json:"status"`
	Items      []SaleItem `json:"items,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SaleItem records quantity and unit price at the time of sale. The price is
// copied from the product, so later price edits never touch historical sales.
type SaleItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SaleID    uint    `gorm:"index;not null" json:"sale_id"`
	ProductID uint    `gorm:"index;not null" json:"product_id"`
	Product   Product `json:"product,omitempty"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
}

// Subtotal is derived, never stored.
func (i *SaleItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}
