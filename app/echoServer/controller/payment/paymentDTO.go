package payment

import (
	"time"

	"stayin/model"
	ps "stayin/service/payment"
)

type ProcessPaymentReq struct {
	CardNumber  string  `json:"card_number" validate:"required"`
	CardHolder  string  `json:"card_holder" validate:"required"`
	ExpiryMonth int     `json:"expiry_month" validate:"required"`
	ExpiryYear  int     `json:"expiry_year" validate:"required"`
	CVV         string  `json:"cvv" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
}

// PaymentResp is a payment with the stored digits rendered masked.
type PaymentResp struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	CardNumber    string    `json:"card_number"`
	CardHolder    string    `json:"card_holder"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"payment_date"`
	TransactionID string    `json:"transaction_id"`
}

func toResp(p *model.Payment) PaymentResp {
	return PaymentResp{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		CardNumber:    ps.Masked(p.CardLastFour),
		CardHolder:    p.CardHolder,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		TransactionID: p.TransactionID,
	}
}

type HistoryResp struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	ListingTitle  string    `json:"listing_title"`
	CardNumber    string    `json:"card_number"`
	CardHolder    string    `json:"card_holder"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"payment_date"`
	TransactionID string    `json:"transaction_id"`
}

func toHistoryResp(rows []ps.HistoryRow) []HistoryResp {
	out := make([]HistoryResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, HistoryResp{
			ID:            r.ID,
			ReservationID: r.ReservationID,
			ListingTitle:  r.ListingTitle,
			CardNumber:    ps.Masked(r.CardLastFour),
			CardHolder:    r.CardHolder,
			Amount:        r.Amount,
			PaymentDate:   r.PaymentDate,
			TransactionID: r.TransactionID,
		})
	}
	return out
}
