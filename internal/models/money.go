package models

import "fmt"

// Money — сумма в минорных единицах + код валюты.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) Valid() bool {
	return m.Amount >= 0 && len(m.Currency) == 3
}

func (m Money) Add(o Money) (Money, error) {
	if m.Currency == "" {
		return o, nil
	}
	if o.Currency == "" {
		return m, nil
	}
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: currency mismatch %s vs %s", ErrValidation, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}, nil
}
