package favorite

import (
	"log/slog"
	"net/http"
	"strconv"

	fs "stayin/service/favorite"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc fs.Service
	Log *slog.Logger
}

func listingID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("listingId"), 10, 64)
	return id, err == nil && id > 0
}

// GET /v1/favorites
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("favorites list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/favorites/ids
func (h *Controller) ListIDs(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	ids, err := h.Svc.ListIDs(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("favorite ids", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": ids})
}

// POST /v1/favorites/:listingId
func (h *Controller) Add(c echo.Context) error {
	id, ok := listingID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Add(c.Request().Context(), uid, id); err != nil {
		switch fs.Code(err) {
		case fs.ErrListingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "listing not found"})
		case fs.ErrAlreadyFavorite:
			return c.JSON(http.StatusConflict, echo.Map{"message": "already a favorite"})
		default:
			h.Log.Error("favorite add", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "favorite added"})
}

// DELETE /v1/favorites/:listingId
func (h *Controller) Remove(c echo.Context) error {
	id, ok := listingID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Remove(c.Request().Context(), uid, id); err != nil {
		if fs.Code(err) == fs.ErrNotFavorite {
			return c.JSON(http.StatusConflict, echo.Map{"message": "not a favorite"})
		}
		h.Log.Error("favorite remove", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "favorite removed"})
}
