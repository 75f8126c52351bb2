package models

// StockStatus represents the availability bucket of a product
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// Product represents a catalog entry with its stock counters.
// Quantity is the total owned stock; Reserved is the portion currently
// held by active reservations. Both counters are mutated only by the
// store under its lock.
type Product struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Reserved  int    `json:"reserved"`
	Warehouse string `json:"warehouse"`
}

// Available returns the stock that can still be reserved, clamped at 0.
func (p *Product) Available() int {
	available := p.Quantity - p.Reserved
	if available < 0 {
		return 0
	}
	return available
}

// Status derives the stock bucket from the available count.
func (p *Product) Status(lowStockThreshold int) StockStatus {
	available := p.Available()
	switch {
	case available <= 0:
		return StockStatusOutOfStock
	case available < lowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
