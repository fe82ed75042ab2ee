// server/internal/api/handlers/service_history_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/models"
	"motohub-api-server/internal/service"
)

type ServiceHistoryHandler struct {
	Reports ReportReader
	Creator ReportCreator
	Logger  *log.Logger
}

type ServiceReportBody struct {
	CarID           string            `json:"carId" binding:"required"`
	Diagnosis       string            `json:"diagnosis" binding:"required"`
	WorkPerformed   string            `json:"workPerformed" binding:"required"`
	Recommendations string            `json:"recommendations"`
	LaborHours      float64           `json:"laborHours" binding:"gte=0"`
	LaborRate       float64           `json:"laborRate" binding:"gte=0"`
	LaborCost       float64           `json:"laborCost" binding:"gte=0"`
	PartsUsed       []models.PartLine `json:"partsUsed" binding:"dive"`
	ServiceDate     *time.Time        `json:"serviceDate"`
}

// ListReports returns a customer's service history, optionally for one car (?carId=).
func (h *ServiceHistoryHandler) ListReports(c *gin.Context) {
	reports, err := h.Reports.List(c.Request.Context(), c.Param("uid"), c.Query("carId"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to list service history")
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *ServiceHistoryHandler) GetReport(c *gin.Context) {
	report, err := h.Reports.FindByID(c.Request.Context(), c.Param("uid"), c.Param("reportId"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load service report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ServiceHistoryHandler) CreateReport(c *gin.Context) {
	var req ServiceReportBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := service.NewReport{
		CarID:           req.CarID,
		Diagnosis:       req.Diagnosis,
		WorkPerformed:   req.WorkPerformed,
		Recommendations: req.Recommendations,
		LaborHours:      req.LaborHours,
		LaborRate:       req.LaborRate,
		LaborCost:       req.LaborCost,
		PartsUsed:       req.PartsUsed,
	}
	if req.ServiceDate != nil {
		in.ServiceDate = req.ServiceDate.UTC()
	}

	report, err := h.Creator.Create(c.Request.Context(), currentUser(c), c.Param("uid"), in)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to create service report")
		return
	}
	c.JSON(http.StatusCreated, report)
}
