package listing

import (
	"log/slog"
	"net/http"
	"strconv"

	ls "stayin/service/listing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ls.Service
	V   *validator.Validate
	Log *slog.Logger
}

func paramID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// GET /v1/listings
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("listing list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/listings/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	l, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if ls.Code(err) == ls.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "listing not found"})
		}
		h.Log.Error("listing detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": l})
}

// GET /v1/mylistings
func (h *Controller) Mine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Mine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my listings", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/mylistings/archived
func (h *Controller) MineArchived(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Archived(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("archived listings", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/mylistings
func (h *Controller) Create(c echo.Context) error {
	var req ListingReq
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

	l := req.toModel()
	if err := h.Svc.Create(c.Request().Context(), uid, l); err != nil {
		h.Log.Error("listing create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "listing created", "data": l})
}

// PUT /v1/mylistings/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	var req ListingReq
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

	l := req.toModel()
	if err := h.Svc.Update(c.Request().Context(), uid, id, l); err != nil {
		return h.mapErr(c, err, "listing update")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "listing updated", "data": l})
}

// DELETE /v1/mylistings/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return h.mapErr(c, err, "listing delete")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "listing archived"})
}

// POST /v1/mylistings/:id/archive
func (h *Controller) Archive(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	archived, err := h.Svc.Archive(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapErr(c, err, "listing archive")
	}
	msg := "listing unarchived"
	if archived {
		msg = "listing archived"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "is_archived": archived})
}

// POST /v1/mylistings/:id/unarchive
func (h *Controller) Unarchive(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Unarchive(c.Request().Context(), uid, id); err != nil {
		if ls.Code(err) == ls.ErrNotArchived {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "listing is not archived"})
		}
		return h.mapErr(c, err, "listing unarchive")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "listing unarchived"})
}

func (h *Controller) mapErr(c echo.Context, err error, op string) error {
	switch ls.Code(err) {
	case ls.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "listing not found"})
	case ls.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
