package reservation

import "time"

// CreateReservationReq carries dates as plain YYYY-MM-DD strings.
type CreateReservationReq struct {
	ListingID    int64  `json:"listing_id" validate:"required,gt=0"`
	CheckInDate  string `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"check_out_date" validate:"required,datetime=2006-01-02"`
	Guests       int    `json:"guests" validate:"required,gt=0"`
}

func (r CreateReservationReq) dates() (time.Time, time.Time, error) {
	in, err := time.Parse("2006-01-02", r.CheckInDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := time.Parse("2006-01-02", r.CheckOutDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}
