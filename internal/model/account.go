package model

import "github.com/shopspring/decimal"

// Account is a workspace account as read from the store.
type Account struct {
	ID      string
	Name    string
	Balance decimal.Decimal
}

// Category is a workspace category as read from the store.
type Category struct {
	ID   string
	Name string
	Kind Kind
}
