package listing

import "stayin/model"

type AddressReq struct {
	Country    string  `json:"country" validate:"required"`
	City       string  `json:"city" validate:"required"`
	District   string  `json:"district" validate:"required"`
	Street     string  `json:"street" validate:"required"`
	Building   *string `json:"building"`
	PostalCode *string `json:"postal_code"`
	Region     *string `json:"region"`
}

type ListingReq struct {
	PlaceType         string     `json:"place_type" validate:"required"`
	AccommodationType string     `json:"accommodation_type" validate:"required"`
	Guests            int        `json:"guests" validate:"required,gt=0"`
	Bedrooms          int        `json:"bedrooms" validate:"gte=0"`
	Beds              int        `json:"beds" validate:"gte=0"`
	Bathrooms         int        `json:"bathrooms" validate:"gte=0"`
	Title             string     `json:"title" validate:"required,max=200"`
	Description       string     `json:"description" validate:"required"`
	Price             float64    `json:"price" validate:"required,gt=0"`
	Address           AddressReq `json:"address" validate:"required"`
	Amenities         []string   `json:"amenities"`
	PhotoURLs         []string   `json:"photo_urls"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
}

func (r ListingReq) toModel() *model.Listing {
	return &model.Listing{
		PlaceType:         r.PlaceType,
		AccommodationType: r.AccommodationType,
		Guests:            r.Guests,
		Bedrooms:          r.Bedrooms,
		Beds:              r.Beds,
		Bathrooms:         r.Bathrooms,
		Title:             r.Title,
		Description:       r.Description,
		Price:             r.Price,
		Address: model.Address{
			Country:    r.Address.Country,
			City:       r.Address.City,
			District:   r.Address.District,
			Street:     r.Address.Street,
			Building:   r.Address.Building,
			PostalCode: r.Address.PostalCode,
			Region:     r.Address.Region,
		},
		Amenities: r.Amenities,
		PhotoURLs: r.PhotoURLs,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}
