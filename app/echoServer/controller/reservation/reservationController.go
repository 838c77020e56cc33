package reservation

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	rs "stayin/service/reservation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/reservations
func (h *Controller) Create(c echo.Context) error {
	var req CreateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	checkIn, checkOut, err := req.dates()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date format"})
	}
	uid, _ := c.Get("user_id").(int64)

	res, err := h.Svc.Create(c.Request().Context(), uid, req.ListingID, checkIn, checkOut, req.Guests)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrListingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "listing not found"})
		case rs.ErrSelfBooking:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "you cannot book your own listing"})
		case rs.ErrDuplicateActive:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "you already have an active reservation for this listing"})
		case rs.ErrDateConflict:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "the selected dates are not available"})
		case rs.ErrInvalidDates:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "check-out must be after check-in"})
		case rs.ErrPastCheckIn:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "check-in date cannot be in the past"})
		default:
			h.Log.Error("reservation create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "reservation requested", "data": res})
}

// GET /v1/reservations/my-reservations
func (h *Controller) MyReservations(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyReservations(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my reservations", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/reservations/incoming-requests
func (h *Controller) IncomingRequests(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.IncomingRequests(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("incoming requests", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/reservations/check/:listingId
func (h *Controller) CheckExisting(c echo.Context) error {
	listingID, err := strconv.ParseInt(c.Param("listingId"), 10, 64)
	if err != nil || listingID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	active, err := h.Svc.CheckExisting(c.Request().Context(), uid, listingID)
	if err != nil {
		h.Log.Error("reservation check", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"has_active_reservation": active})
}

// POST /v1/reservations/:id/approve
func (h *Controller) Approve(c echo.Context) error {
	return h.transition(c, h.Svc.Approve, "reservation approved")
}

// POST /v1/reservations/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	return h.transition(c, h.Svc.Reject, "reservation rejected")
}

// POST /v1/reservations/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	return h.transition(c, h.Svc.Cancel, "reservation cancelled")
}

func (h *Controller) transition(c echo.Context, fn func(ctx context.Context, userID, id int64) error, okMsg string) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := fn(c.Request().Context(), uid, id); err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
		case rs.ErrNotHost, rs.ErrNotGuest:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case rs.ErrAlreadyResponded:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "reservation was already responded to"})
		case rs.ErrAlreadyCancelled:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "reservation is already cancelled"})
		default:
			h.Log.Error("reservation transition", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": okMsg})
}
