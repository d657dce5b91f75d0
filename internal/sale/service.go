package sale

import (
	"errors"
	"fmt"

	"pdv-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNoItems              = errors.New("sale must contain at least one item")
	ErrSaleNotFound         = errors.New("sale not found")
	ErrSaleAlreadyCancelled = errors.New("sale is already cancelled")
)

type InvalidQuantityError struct {
	Barcode string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity for %s must be a positive integer", e.Barcode)
}

type ProductNotFoundError struct {
	Barcode string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("no product with barcode %s", e.Barcode)
}

type InsufficientStockError struct {
	Barcode   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Barcode, e.Requested, e.Available)
}

// ItemRequest is one scanned line at the point of sale.
type ItemRequest struct {
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create runs the whole sale inside one transaction: header insert, then per
// item in input order a stock check, line item insert and guarded stock
// decrement, then the accumulated total written back onto the header. Any
// failure rolls everything back; no partial sale is ever visible.
func (s *Service) Create(customerID *uint, items []ItemRequest) (*models.Sale, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	var sale models.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if customerID != nil {
			var cus models.Customer
			if err := tx.First(&cus, *customerID).Error; err != nil {
				return fmt.Errorf("customer %d not found", *customerID)
			}
		}

		sale = models.Sale{CustomerID: customerID, Status: models.SaleStatusNormal}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		var total float64
		for _, it := range items {
			if it.Quantity <= 0 {
				return &InvalidQuantityError{Barcode: it.Barcode}
			}

			var product models.Product
			if err := tx.Where("barcode = ?", it.Barcode).First(&product).Error; err != nil {
				return &ProductNotFoundError{Barcode: it.Barcode}
			}

			var stock models.Stock
			if err := tx.Where("product_id = ?", product.ID).First(&stock).Error; err != nil {
				return &InsufficientStockError{Barcode: it.Barcode, Requested: it.Quantity}
			}
			if stock.Quantity < it.Quantity {
				return &InsufficientStockError{
					Barcode:   it.Barcode,
					Requested: it.Quantity,
					Available: stock.Quantity,
				}
			}

			price := product.Price()
			item := models.SaleItem{
				SaleID:    sale.ID,
				ProductID: product.ID,
				Quantity:  it.Quantity,
				UnitPrice: price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			sale.Items = append(sale.Items, item)

			// Guarded decrement: the quantity >= ? predicate makes the
			// check-and-decrement a single statement, so a concurrent sale
			// cannot push stock below zero.
			res := tx.Model(&models.Stock{}).
				Where("product_id = ? AND quantity >= ?", product.ID, it.Quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{
					Barcode:   it.Barcode,
					Requested: it.Quantity,
					Available: stock.Quantity,
				}
			}

			total += float64(it.Quantity) * price
		}

		sale.Total = total
		return tx.Model(&models.Sale{}).Where("id = ?", sale.ID).Update("total", total).Error
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// Cancel reverses a sale: the status flip is a conditional single-statement
// update, so two concurrent reversals cannot both restock, then every line
// item quantity goes back onto its product's stock.
func (s *Service) Cancel(saleID uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Sale{}).
			Where("id = ? AND status = ?", saleID, models.SaleStatusNormal).
			Update("status", models.SaleStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.First(&models.Sale{}, saleID).Error; err != nil {
				return ErrSaleNotFound
			}
			return ErrSaleAlreadyCancelled
		}

		var items []models.SaleItem
		if err := tx.Where("sale_id = ?", saleID).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			res := tx.Model(&models.Stock{}).
				Where("product_id = ?", it.ProductID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
		}

		return tx.Preload("Items").Preload("Customer").First(&sale, saleID).Error
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// Get loads a sale with items, products and customer.
func (s *Service) Get(saleID uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.Preload("Items.Product").Preload("Customer").First(&sale, saleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}
