package domain

import "time"

type Product struct {
	ID        int64
	Code      string
	Name      string
	Unit      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientType is the pricing dimension (bodega, minimarket, restaurant, wholesaler).
type ClientType struct {
	ID       int64
	Name     string
	IsActive bool
}
