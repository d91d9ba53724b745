package orderitem

// OrderItem is one purchased line. Name and price are snapshots taken at
// checkout time; later catalog edits do not rewrite history.
type OrderItem struct {
	OrderID     int64   `json:"-"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}
