package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"civicreport/internal/service"
)

const maxPhotoBytes = 10 << 20

// IncidentHandler handles incident endpoints.
type IncidentHandler struct {
	incidentService service.IncidentService
}

// NewIncidentHandler creates a new incident handler.
func NewIncidentHandler(incidentService service.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidentService: incidentService}
}

// CreateIncidentRequest is accepted as JSON or multipart form. The
// description may be base64 encoded.
type CreateIncidentRequest struct {
	CategoryID  uint        `json:"category_id" form:"category_id" validate:"required"`
	CityID      uint        `json:"city_id,omitempty" form:"city_id"`
	Latitude    json.Number `json:"latitude" form:"latitude" validate:"required"`
	Longitude   json.Number `json:"longitude" form:"longitude" validate:"required"`
	Description string      `json:"description,omitempty" form:"description"`
	AddressRef  string      `json:"address_ref,omitempty" form:"address_ref" validate:"max=200"`
}

// UpdateStatusRequest changes the status of an incident.
type UpdateStatusRequest struct {
	StatusID uint `json:"status_id" validate:"required"`
}

// Create godoc
// @Summary Report an incident
// @Tags incidents
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncidentRequest true "Incident"
// @Param photo formData file false "Photo"
// @Success 201 {object} model.Incident
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /incidents [post]
func (h *IncidentHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req CreateIncidentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	lat, err := decimal.NewFromString(req.Latitude.String())
	if err != nil {
		return invalidRequest("invalid latitude")
	}
	lon, err := decimal.NewFromString(req.Longitude.String())
	if err != nil {
		return invalidRequest("invalid longitude")
	}

	in := service.CreateIncidentInput{
		CategoryID:  req.CategoryID,
		Latitude:    lat,
		Longitude:   lon,
		Description: req.Description,
	}
	if req.CityID != 0 {
		in.CityID = &req.CityID
	}
	if req.AddressRef != "" {
		in.AddressRef = &req.AddressRef
	}

	file, err := c.FormFile("photo")
	switch {
	case err == nil:
		if file.Size > maxPhotoBytes {
			return invalidRequest("photo too large")
		}
		src, err := file.Open()
		if err != nil {
			return invalidRequest("unreadable photo")
		}
		defer src.Close()
		in.Photo = &service.Photo{
			Filename:    file.Filename,
			ContentType: file.Header.Get(echo.HeaderContentType),
			Body:        src,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return invalidRequest("invalid photo upload")
	}

	incident, err := h.incidentService.Create(c.Request().Context(), p.ID, in)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, incident)
}

// Get godoc
// @Summary Get an incident
// @Tags incidents
// @Produce json
// @Param id path int true "Incident ID"
// @Success 200 {object} model.Incident
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /incidents/{id} [get]
func (h *IncidentHandler) Get(c echo.Context) error {
	id, err := incidentID(c)
	if err != nil {
		return err
	}

	incident, err := h.incidentService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, incident)
}

// UpdateStatus godoc
// @Summary Change the status of an incident
// @Tags incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Incident ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} model.Incident
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /incidents/{id}/status [patch]
func (h *IncidentHandler) UpdateStatus(c echo.Context) error {
	id, err := incidentID(c)
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	incident, err := h.incidentService.UpdateStatus(c.Request().Context(), id, req.StatusID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, incident)
}

// Delete godoc
// @Summary Delete an incident
// @Description Only the reporting user or an ADMIN may delete.
// @Tags incidents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Incident ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /incidents/{id} [delete]
func (h *IncidentHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := incidentID(c)
	if err != nil {
		return err
	}

	if err := h.incidentService.Delete(c.Request().Context(), p, id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "incident deleted"})
}

func incidentID(c echo.Context) (uint, error) {
	var id uint
	if err := echo.PathParamsBinder(c).MustUint("id", &id).BindError(); err != nil || id == 0 {
		return 0, invalidRequest("invalid incident id")
	}
	return id, nil
}
