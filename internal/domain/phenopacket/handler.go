package phenopacket

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/phenopackets", h.Create)
	g.GET("/phenopackets/:id", h.Get)
	g.PUT("/phenopackets/:id", h.Update)
	g.DELETE("/phenopackets/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var p Phenopacket
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePhenopacket(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

// Get resolves either the row UUID or the curated packet identifier.
func (h *Handler) Get(c echo.Context) error {
	raw := c.Param("id")
	if id, err := uuid.Parse(raw); err == nil {
		p, err := h.svc.GetPhenopacket(c.Request().Context(), id)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "phenopacket not found")
		}
		return c.JSON(http.StatusOK, p)
	}
	p, err := h.svc.GetByPacketID(c.Request().Context(), raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "phenopacket not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Phenopacket
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePhenopacket(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePhenopacket(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
