package model

import "time"

type Review struct {
	ID            int64     `json:"id"`
	ListingID     int64     `json:"listing_id"`
	GuestID       int64     `json:"guest_id"`
	ReservationID int64     `json:"reservation_id"`
	Rating        int       `json:"rating"` // 1-5
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}
