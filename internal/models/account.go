package models

import "github.com/shopspring/decimal"

type Account struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

func NewAccount(client ClientID) Account {
	return Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Locked:    false,
	}
}

// Total is always derived from Available and Held.
func (a Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}
