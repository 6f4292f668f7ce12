package domain

import catalog "github.com/moksh1tha/nuastore/internal/catalog/domain"

// MaxQuantity is the most of one product a cart line may hold.
const MaxQuantity = 10

// Line is one product-plus-quantity entry. The product is a shared
// read-only snapshot; the cart never mutates it.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart is an ordered sequence of lines, at most one per product id.
type Cart struct {
	Lines []Line `json:"lines"`
}

// ClampQuantity bounds a requested quantity into [1, MaxQuantity].
func ClampQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}

// ItemCount is the sum of quantities across all lines.
func (c Cart) ItemCount() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice sums price times quantity over all lines.
func (c Cart) TotalPrice() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Product.Price * float64(l.Quantity)
	}
	return total
}

// Clone returns a copy whose lines slice is independent of the original.
func (c Cart) Clone() Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}
