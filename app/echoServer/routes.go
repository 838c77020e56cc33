package echoServer

import (
	"stayin/app/echoServer/controller/auth"
	"stayin/app/echoServer/controller/favorite"
	"stayin/app/echoServer/controller/listing"
	"stayin/app/echoServer/controller/payment"
	"stayin/app/echoServer/controller/reservation"
	"stayin/app/echoServer/controller/review"
	"stayin/app/echoServer/controller/user"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth        *auth.Controller
	User        *user.Controller
	Listing     *listing.Controller
	Favorite    *favorite.Controller
	Reservation *reservation.Controller
	Payment     *payment.Controller
	Review      *review.Controller
	JWTSecret   string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.POST("/auth/forgot-password", c.Auth.ForgotPassword)
	pub.POST("/auth/verify-code", c.Auth.VerifyCode)
	pub.POST("/auth/reset-password", c.Auth.ResetPassword)

	pub.GET("/listings", c.Listing.List)
	pub.GET("/listings/:id", c.Listing.Detail)
	pub.GET("/reviews/listing/:listingId", c.Review.ForListing)
	pub.GET("/users/:id", c.User.Profile)

	// Authenticated
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),
	}))
	authed.Use(ExtractUser())

	// Host listings
	authed.GET("/mylistings", c.Listing.Mine)
	authed.GET("/mylistings/archived", c.Listing.MineArchived)
	authed.POST("/mylistings", c.Listing.Create)
	authed.PUT("/mylistings/:id", c.Listing.Update)
	authed.DELETE("/mylistings/:id", c.Listing.Delete)
	authed.POST("/mylistings/:id/archive", c.Listing.Archive)
	authed.POST("/mylistings/:id/unarchive", c.Listing.Unarchive)

	// Favorites
	authed.GET("/favorites", c.Favorite.List)
	authed.GET("/favorites/ids", c.Favorite.ListIDs)
	authed.POST("/favorites/:listingId", c.Favorite.Add)
	authed.DELETE("/favorites/:listingId", c.Favorite.Remove)

	// Reservations
	authed.POST("/reservations", c.Reservation.Create)
	authed.GET("/reservations/my-reservations", c.Reservation.MyReservations)
	authed.GET("/reservations/incoming-requests", c.Reservation.IncomingRequests)
	authed.GET("/reservations/check/:listingId", c.Reservation.CheckExisting)
	authed.POST("/reservations/:id/approve", c.Reservation.Approve)
	authed.POST("/reservations/:id/reject", c.Reservation.Reject)
	authed.POST("/reservations/:id/cancel", c.Reservation.Cancel)

	// Payments
	authed.POST("/payments/reservation/:id", c.Payment.Process)
	authed.GET("/payments/reservation/:id", c.Payment.ByReservation)
	authed.GET("/payments/my-payments", c.Payment.MyPayments)

	// Reviews
	authed.POST("/reviews", c.Review.Create)
	authed.GET("/reviews/my-reviews", c.Review.Mine)
	authed.PUT("/reviews/:id", c.Review.Update)
	authed.DELETE("/reviews/:id", c.Review.Delete)
}
