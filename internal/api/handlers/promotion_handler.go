// server/internal/api/handlers/promotion_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/models"
	"motohub-api-server/internal/pricing"
)

const resourcePromotions = "promotions"

type PromotionHandler struct {
	Promotions PromotionStore
	Recorder   Recorder
	Logger     *log.Logger
}

type PromotionRequestBody struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Discount    float64   `json:"discount"`
	ValidUntil  time.Time `json:"validUntil" binding:"required"`
	Features    []string  `json:"features"`
	Active      *bool     `json:"active"`
}

func (b *PromotionRequestBody) apply(p *models.Promotion) {
	p.Title = strings.TrimSpace(b.Title)
	p.Description = b.Description
	p.Discount = b.Discount
	p.ValidUntil = b.ValidUntil.UTC()
	p.Features = b.Features
	if p.Features == nil {
		p.Features = []string{}
	}
	if b.Active != nil {
		p.Active = *b.Active
	}
}

// ListPromotions returns all promotions, or only current ones with ?active=true.
func (h *PromotionHandler) ListPromotions(c *gin.Context) {
	h.list(c, c.Query("active") == "true")
}

// ListCurrentPromotions is the unauthenticated listing of running promotions.
func (h *PromotionHandler) ListCurrentPromotions(c *gin.Context) {
	h.list(c, true)
}

func (h *PromotionHandler) list(c *gin.Context, currentOnly bool) {
	promotions, err := h.Promotions.List(c.Request.Context(), currentOnly, time.Now().UTC())
	if err != nil {
		respondError(c, h.Logger, err, "Failed to list promotions")
		return
	}
	c.JSON(http.StatusOK, promotions)
}

func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	p, err := h.Promotions.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load promotion")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var req PromotionRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := pricing.ValidateDiscount(req.Discount); err != nil {
		badRequest(c, err)
		return
	}

	p := &models.Promotion{ID: uuid.NewString(), Active: true}
	req.apply(p)

	ctx := c.Request.Context()
	if err := h.Promotions.Create(ctx, p); err != nil {
		respondError(c, h.Logger, err, "Failed to create promotion")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityCreate,
		Action:       "Created promotion " + p.Title,
		ResourceType: resourcePromotions,
		ResourceID:   p.ID,
		After:        p,
	})
	c.JSON(http.StatusCreated, p)
}

func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	var req PromotionRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := pricing.ValidateDiscount(req.Discount); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	p, err := h.Promotions.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load promotion")
		return
	}
	before := *p

	req.apply(p)
	if err := h.Promotions.Update(ctx, p); err != nil {
		respondError(c, h.Logger, err, "Failed to update promotion")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityUpdate,
		Action:       "Updated promotion " + p.Title,
		ResourceType: resourcePromotions,
		ResourceID:   p.ID,
		Before:       &before,
		After:        p,
	})
	c.JSON(http.StatusOK, p)
}

// TogglePromotion flips the active flag in the store. The value sent back is
// whatever the store holds after the flip, not the negation of the read.
func (h *PromotionHandler) TogglePromotion(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.Promotions.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load promotion")
		return
	}

	updated, err := h.Promotions.Toggle(ctx, p.ID)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to toggle promotion")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityUpdate,
		Action:       "Toggled promotion " + p.Title,
		ResourceType: resourcePromotions,
		ResourceID:   p.ID,
		Before:       p,
		After:        updated,
	})
	c.JSON(http.StatusOK, updated)
}

func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.Promotions.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load promotion")
		return
	}
	if err := h.Promotions.Delete(ctx, p.ID); err != nil {
		respondError(c, h.Logger, err, "Failed to delete promotion")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityDelete,
		Action:       "Deleted promotion " + p.Title,
		ResourceType: resourcePromotions,
		ResourceID:   p.ID,
		Before:       p,
	})
	c.Status(http.StatusNoContent)
}
