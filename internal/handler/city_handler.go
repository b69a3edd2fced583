package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/citylight/citylight-go/internal/middleware"
	"github.com/citylight/citylight-go/internal/service"
	"github.com/citylight/citylight-go/pkg/response"
)

// CityHandler handles HTTP requests for city visit rows
type CityHandler struct {
	visitService *service.VisitService
}

// NewCityHandler creates a new city handler
func NewCityHandler(visitService *service.VisitService) *CityHandler {
	return &CityHandler{visitService: visitService}
}

// ListCities handles GET /cities
func (h *CityHandler) ListCities(c *gin.Context) {
	var lighted *bool
	if raw := c.Query("lighted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "invalid lighted parameter")
			return
		}
		lighted = &v
	}

	visits, err := h.visitService.ListVisits(middleware.UserID(c), lighted)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"cities": visits,
		"count":  len(visits),
	})
}

// GetCityByID handles GET /cities/:id
func (h *CityHandler) GetCityByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid city visit ID")
		return
	}

	visit, err := h.visitService.GetVisit(middleware.UserID(c), id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if visit == nil {
		response.NotFound(c, "city visit not found")
		return
	}

	response.Success(c, visit)
}
