package domain

import "time"

// Cart is the single per-customer cart. It outlives checkouts; only its lines are cleared.
type Cart struct {
	ID         int64      `json:"cartId"`
	CustomerID int64      `json:"customerId"`
	CreatedAt  time.Time  `json:"createdAt"`
	Lines      []CartLine `json:"items"`
}

type CartLine struct {
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"addedAt"`
}
