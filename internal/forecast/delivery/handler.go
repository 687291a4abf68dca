package delivery

import (
	"errors"
	"net/http"

	forecastdomain "migralog-backend/internal/forecast/domain"
	"migralog-backend/internal/forecast/repository"
	"migralog-backend/internal/forecast/usecase"

	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	forecastUsecase usecase.ForecastUsecase
}

func NewForecastHandler(forecastUsecase usecase.ForecastUsecase) *ForecastHandler {
	return &ForecastHandler{
		forecastUsecase: forecastUsecase,
	}
}

func (h *ForecastHandler) GetForecast(c *gin.Context) {
	userID := c.GetString("userID")

	days, err := h.forecastUsecase.GetForecast(userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "forecast is not available: scoring is not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *ForecastHandler) GetSettings(c *gin.Context) {
	settings, err := h.forecastUsecase.GetSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if settings == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "forecast settings not configured"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *ForecastHandler) UpdateSettings(c *gin.Context) {
	var settings forecastdomain.ForecastSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.forecastUsecase.UpdateSettings(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *ForecastHandler) ClassifyEvent(c *gin.Context) {
	var mapping forecastdomain.SeverityMapping
	if err := c.ShouldBindJSON(&mapping); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if mapping.EventName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_name is required"})
		return
	}

	if err := h.forecastUsecase.ClassifyEvent(&mapping); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, mapping)
}

func (h *ForecastHandler) GetSeverityMap(c *gin.Context) {
	severities, err := h.forecastUsecase.GetSeverityMap()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"severities": severities})
}
