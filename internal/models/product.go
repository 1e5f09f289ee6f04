package models

// Product is a catalog item as served by the storefront API.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Category    string `json:"category"`
	Price       int    `json:"price"`
}

// InStock reports whether the product has remaining quantity.
func (p Product) InStock() bool {
	return p.Quantity > 0
}
