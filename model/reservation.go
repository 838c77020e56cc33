// model/reservation.go
package model

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "Pending"
	ReservationApproved  ReservationStatus = "Approved"
	ReservationRejected  ReservationStatus = "Rejected"
	ReservationCancelled ReservationStatus = "Cancelled"
)

type Reservation struct {
	ID            int64             `json:"id"`
	ListingID     int64             `json:"listing_id"`
	GuestID       int64             `json:"guest_id"`
	HostID        int64             `json:"host_id"` // listing owner at creation time
	CheckInDate   time.Time         `json:"check_in_date"`
	CheckOutDate  time.Time         `json:"check_out_date"` // exclusive
	Guests        int               `json:"guests"`
	TotalPrice    float64           `json:"total_price"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	RespondedAt   *time.Time        `json:"responded_at,omitempty"`
	IsPaid        bool              `json:"is_paid"`
	PaymentDate   *time.Time        `json:"payment_date,omitempty"`
	TransactionID *string           `json:"transaction_id,omitempty"`
}
