package payment

import (
	"log/slog"
	"net/http"
	"strconv"

	ps "stayin/service/payment"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ps.Service
	V   *validator.Validate
	Log *slog.Logger
}

func reservationID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// POST /v1/payments/reservation/:id
func (h *Controller) Process(c echo.Context) error {
	id, ok := reservationID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	var req ProcessPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	p, err := h.Svc.Process(c.Request().Context(), uid, id, ps.CardInput{
		CardNumber:  req.CardNumber,
		CardHolder:  req.CardHolder,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVV:         req.CVV,
		Amount:      req.Amount,
	})
	if err != nil {
		switch ps.Code(err) {
		case ps.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
		case ps.ErrNotGuest:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case ps.ErrNotApproved:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "only approved reservations can be paid"})
		case ps.ErrAlreadyPaid:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "reservation is already paid"})
		case ps.ErrAmountMismatch:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount does not match the reservation total"})
		case ps.ErrBadCard:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid card details"})
		default:
			h.Log.Error("payment process", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "payment recorded", "data": toResp(p)})
}

// GET /v1/payments/reservation/:id
func (h *Controller) ByReservation(c echo.Context) error {
	id, ok := reservationID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	p, err := h.Svc.ByReservation(c.Request().Context(), uid, id)
	if err != nil {
		switch ps.Code(err) {
		case ps.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case ps.ErrNoAccess:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("payment lookup", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toResp(p)})
}

// GET /v1/payments/my-payments
func (h *Controller) MyPayments(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyPayments(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("payment history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toHistoryResp(rows)})
}
