package models

import "time"

type Product struct {
	ID          string
	Name        string
	Description string
	PriceInINR  int64
	ImageURL    string
	CreatedAt   time.Time
}

type Cart struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Qty       int
	CreatedAt time.Time
}

// CartLine joins an item with its product for totals and display.
type CartLine struct {
	Item    CartItem
	Product Product
}
