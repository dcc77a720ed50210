package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gh-wrapped/wrapped-backend/config"
	"github.com/gh-wrapped/wrapped-backend/model"
	"github.com/gh-wrapped/wrapped-backend/service"
	"github.com/gin-gonic/gin"
)

// defaultYear is used when the year query parameter is absent or not numeric
const defaultYear = 2025

type APIController interface {
	GetUserWrapped(ctx *gin.Context)
	CompareUsers(ctx *gin.Context)
	HealthCheck(ctx *gin.Context)
}

type apiController struct {
	wrappedService service.WrappedService
	config         config.Config
}

func NewAPIController(config config.Config, service service.WrappedService) APIController {
	return apiController{
		wrappedService: service,
		config:         config,
	}
}

// GetUserWrapped handles GET /users/:username/wrapped?year=YYYY
func (s apiController) GetUserWrapped(c *gin.Context) {
	username := c.Param("username")

	profile, err := s.wrappedService.FetchUserProfile(c.Request.Context(), username, parseYear(c))
	if err != nil {
		c.JSON(model.HTTPStatusForError(err), gin.H{"error": model.NewAPIError(err)})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// CompareUsers handles GET /compare?usernames=a,b,c&year=YYYY
func (s apiController) CompareUsers(c *gin.Context) {
	usernames := make([]string, 0)

	for _, username := range strings.Split(c.Query("usernames"), ",") {
		if username = strings.TrimSpace(username); username != "" {
			usernames = append(usernames, username)
		}
	}

	if len(usernames) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": model.APIError{
			Code:    "BAD_REQUEST",
			Message: "usernames query parameter is required, comma separated",
		}})
		return
	}

	profiles, err := s.wrappedService.FetchUserProfiles(c.Request.Context(), usernames, parseYear(c))
	if err != nil {
		c.JSON(model.HTTPStatusForError(err), gin.H{"error": model.NewAPIError(err)})
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// HealthCheck handles GET /health
func (s apiController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseYear(c *gin.Context) int {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		return defaultYear
	}

	return year
}
