// server/internal/api/handlers/request_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/models"
	"motohub-api-server/internal/service"
)

type RequestHandler struct {
	Requests RequestReader
	Workflow RequestWorkflow
	Logger   *log.Logger
}

type CreatePartRequestBody struct {
	Car      models.CarSnapshot      `json:"car" binding:"required"`
	Customer models.CustomerSnapshot `json:"customer" binding:"required"`
	Parts    []models.PartLine       `json:"parts" binding:"required,min=1,dive"`
	Urgent   bool                    `json:"urgent"`
	Notes    string                  `json:"notes"`
}

type ReviewRequestBody struct {
	ReviewNote string `json:"reviewNote"`
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req CreatePartRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.Workflow.Create(c.Request.Context(), currentUser(c), service.NewRequest{
		Car:      req.Car,
		Customer: req.Customer,
		Parts:    req.Parts,
		Urgent:   req.Urgent,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(c, h.Logger, err, "Failed to create parts request")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListRequests returns every request to admins and only their own to mechanics.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	filter := models.PartRequestFilter{Status: c.Query("status")}
	if actor := currentUser(c); actor.Role != models.RoleAdmin {
		filter.MechanicID = actor.ID
	}

	requests, err := h.Requests.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to list parts requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.Requests.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load parts request")
		return
	}
	if actor := currentUser(c); actor.Role != models.RoleAdmin && req.Mechanic.ID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	var body ReviewRequestBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, err)
		return
	}

	req, err := h.Workflow.Approve(c.Request.Context(), currentUser(c), c.Param("id"), body.ReviewNote)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to approve parts request")
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) RejectRequest(c *gin.Context) {
	var body ReviewRequestBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, err)
		return
	}

	req, err := h.Workflow.Reject(c.Request.Context(), currentUser(c), c.Param("id"), body.ReviewNote)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to reject parts request")
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	if err := h.Workflow.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, h.Logger, err, "Failed to delete parts request")
		return
	}
	c.Status(http.StatusNoContent)
}
