package models

import "time"

// API request models

// ReserveRequest represents a request to reserve stock against a product
type ReserveRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	OrderID   string `json:"order_id"`
}

// ReleaseRequest represents a request to release previously held stock
type ReleaseRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// API response models

// ProductStock is the transport view of a product with derived fields
// computed at read time.
type ProductStock struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Reserved  int         `json:"reserved"`
	Available int         `json:"available"`
	Status    StockStatus `json:"status"`
	Warehouse string      `json:"warehouse"`
}

// NewProductStock builds the transport view from a product snapshot.
func NewProductStock(p Product, lowStockThreshold int) ProductStock {
	return ProductStock{
		ProductID: p.ProductID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Reserved:  p.Reserved,
		Available: p.Available(),
		Status:    p.Status(lowStockThreshold),
		Warehouse: p.Warehouse,
	}
}

// InventoryListResponse is the response for the inventory listing
type InventoryListResponse struct {
	Products   []ProductStock `json:"products"`
	Total      int            `json:"total"`
	LowStock   int            `json:"low_stock"`
	OutOfStock int            `json:"out_of_stock"`
}

// ReleaseResponse is the response after releasing stock
type ReleaseResponse struct {
	ProductID      string    `json:"product_id"`
	Released       int       `json:"released"`
	AvailableAfter int       `json:"available_after"`
	Timestamp      time.Time `json:"timestamp"`
}

// ErrorResponse is a plain error payload
type ErrorResponse struct {
	Error     string `json:"error"`
	ProductID string `json:"product_id,omitempty"`
}

// StockConflictResponse is returned when a reservation exceeds the
// available stock; it carries the counts callers need for diagnostics.
type StockConflictResponse struct {
	Error     string `json:"error"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}
