package review

import (
	"log/slog"
	"net/http"
	"strconv"

	rvs "stayin/service/review"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CreateReviewReq struct {
	ReservationID int64  `json:"reservation_id" validate:"required,gt=0"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"required"`
}

type UpdateReviewReq struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

type Controller struct {
	Svc rvs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/reviews
func (h *Controller) Create(c echo.Context) error {
	var req CreateReviewReq
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

	rev, err := h.Svc.Create(c.Request().Context(), uid, req.ReservationID, req.Rating, req.Comment)
	if err != nil {
		switch rvs.Code(err) {
		case rvs.ErrBadRating:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be between 1 and 5"})
		case rvs.ErrEmptyComment:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "comment is required"})
		case rvs.ErrReservationMissing:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
		case rvs.ErrNotGuest:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case rvs.ErrNotApproved:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "only approved reservations can be reviewed"})
		case rvs.ErrStayNotOver:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "only completed stays can be reviewed"})
		case rvs.ErrAlreadyReviewed:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "you already reviewed this reservation"})
		default:
			h.Log.Error("review create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "review created", "data": rev})
}

// GET /v1/reviews/listing/:listingId
func (h *Controller) ForListing(c echo.Context) error {
	listingID, err := strconv.ParseInt(c.Param("listingId"), 10, 64)
	if err != nil || listingID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	sum, err := h.Svc.ForListing(c.Request().Context(), listingID)
	if err != nil {
		if rvs.Code(err) == rvs.ErrListingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "listing not found"})
		}
		h.Log.Error("listing reviews", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": sum})
}

// GET /v1/reviews/my-reviews
func (h *Controller) Mine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Mine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my reviews", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PUT /v1/reviews/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	var req UpdateReviewReq
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

	rev, err := h.Svc.Update(c.Request().Context(), uid, id, req.Rating, req.Comment)
	if err != nil {
		return h.mapErr(c, err, "review update")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review updated", "data": rev})
}

// DELETE /v1/reviews/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return h.mapErr(c, err, "review delete")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted"})
}

func (h *Controller) mapErr(c echo.Context, err error, op string) error {
	switch rvs.Code(err) {
	case rvs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "review not found"})
	case rvs.ErrNotAuthor:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case rvs.ErrBadRating:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be between 1 and 5"})
	case rvs.ErrEmptyComment:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "comment is required"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
