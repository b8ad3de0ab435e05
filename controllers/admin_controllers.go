package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
)

type AdminController struct {
	Dashboard *services.DashboardService
	Logos     *services.LogoService
}

func NewAdminController(dashboard *services.DashboardService, logos *services.LogoService) *AdminController {
	return &AdminController{Dashboard: dashboard, Logos: logos}
}

func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Dashboard.Stats(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"stats":           stats,
		"revenue_display": utils.FormatKyats(stats.Revenue),
	})
}

func (ac *AdminController) UploadLogo(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+(1<<20))

	upload, file, ok, err := formUpload(c, "logo")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("logo file is required"))
		return
	}
	defer file.Close()

	logo, err := ac.Logos.UploadLogo(c.Request.Context(), *upload)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Logo uploaded", logo)
}

func (ac *AdminController) GetLogo(c *gin.Context) {
	logo, err := ac.Logos.CurrentLogo(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current logo", logo)
}
