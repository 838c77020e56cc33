package model

import "time"

// Payment stores only the last four digits of the card. Full card data
// never reaches the database.
type Payment struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	CardLastFour  string    `json:"-"`
	CardHolder    string    `json:"card_holder"`
	ExpiryMonth   string    `json:"-"`
	ExpiryYear    string    `json:"-"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"payment_date"`
	TransactionID string    `json:"transaction_id"`
}
