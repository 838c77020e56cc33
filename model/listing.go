// model/listing.go
package model

import "time"

type Address struct {
	Country    string  `json:"country"`
	City       string  `json:"city"`
	District   string  `json:"district"`
	Street     string  `json:"street"`
	Building   *string `json:"building,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Region     *string `json:"region,omitempty"`
}

type Listing struct {
	ID                int64     `json:"id"`
	UserID            *int64    `json:"user_id,omitempty"` // nil for seed rows
	PlaceType         string    `json:"place_type"`
	AccommodationType string    `json:"accommodation_type"`
	Guests            int       `json:"guests"`
	Bedrooms          int       `json:"bedrooms"`
	Beds              int       `json:"beds"`
	Bathrooms         int       `json:"bathrooms"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Price             float64   `json:"price"` // nightly
	Address           Address   `json:"address"`
	Amenities         []string  `json:"amenities"`
	PhotoURLs         []string  `json:"photo_urls"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	IsArchived        bool      `json:"is_archived"`
	CreatedAt         time.Time `json:"created_at"`
}
