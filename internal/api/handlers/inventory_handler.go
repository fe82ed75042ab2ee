// server/internal/api/handlers/inventory_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
	"motohub-api-server/internal/notify"
	"motohub-api-server/internal/pricing"
	"motohub-api-server/internal/s3"
)

const (
	resourceInventory = "inventory"
	maxImageSize      = 5 << 20
)

type InventoryHandler struct {
	Parts PartStore
	// Uploader is nil when S3 is not configured.
	Uploader ImageUploader
	Notifier RoleNotifier
	Recorder Recorder
	Logger   *log.Logger
}

type PartRequestBody struct {
	Name             string  `json:"name" binding:"required"`
	Category         string  `json:"category" binding:"required"`
	Quantity         int64   `json:"quantity" binding:"gte=0"`
	MinStock         int64   `json:"minStock" binding:"gte=0"`
	UnitPrice        float64 `json:"unitPrice" binding:"gte=0"`
	MarkupPercentage float64 `json:"markupPercentage" binding:"gte=0"`
	Supplier         string  `json:"supplier"`
}

type RestockRequest struct {
	Quantity int64  `json:"quantity"`
	Supplier string `json:"supplier"`
}

func (b *PartRequestBody) apply(p *models.Part) {
	p.Name = strings.TrimSpace(b.Name)
	p.Category = strings.TrimSpace(b.Category)
	p.Quantity = b.Quantity
	p.MinStock = b.MinStock
	p.UnitPrice = b.UnitPrice
	p.MarkupPercentage = b.MarkupPercentage
	p.Supplier = b.Supplier
	pricing.ApplyDerived(p)
}

// ListParts supports ?category=, ?status=, ?search= and ?lowStock=true.
func (h *InventoryHandler) ListParts(c *gin.Context) {
	parts, err := h.Parts.List(c.Request.Context(), models.PartFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   strings.TrimSpace(c.Query("search")),
		LowStock: c.Query("lowStock") == "true",
	})
	if err != nil {
		respondError(c, h.Logger, err, "Failed to list parts")
		return
	}
	c.JSON(http.StatusOK, parts)
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	parts, err := h.Parts.List(c.Request.Context(), models.PartFilter{LowStock: true})
	if err != nil {
		respondError(c, h.Logger, err, "Failed to list low-stock parts")
		return
	}
	c.JSON(http.StatusOK, parts)
}

func (h *InventoryHandler) GetPart(c *gin.Context) {
	part, err := h.Parts.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load part")
		return
	}
	c.JSON(http.StatusOK, part)
}

func (h *InventoryHandler) CreatePart(c *gin.Context) {
	var req PartRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	part := &models.Part{ID: uuid.NewString()}
	req.apply(part)
	if err := pricing.ValidatePart(part); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.Parts.Create(ctx, part); err != nil {
		respondError(c, h.Logger, err, "Failed to create part")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityCreate,
		Action:       "Added part " + part.Name,
		ResourceType: resourceInventory,
		ResourceID:   part.ID,
		After:        part,
	})
	c.JSON(http.StatusCreated, part)
}

func (h *InventoryHandler) UpdatePart(c *gin.Context) {
	var req PartRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	part, err := h.Parts.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load part")
		return
	}
	before := *part

	req.apply(part)
	if err := pricing.ValidatePart(part); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Parts.Update(ctx, part); err != nil {
		if errors.Is(err, database.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Part was modified since it was loaded, reload and try again"})
			return
		}
		respondError(c, h.Logger, err, "Failed to update part")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityUpdate,
		Action:       "Updated part " + part.Name,
		ResourceType: resourceInventory,
		ResourceID:   part.ID,
		Before:       &before,
		After:        part,
	})
	if !before.IsLowStock() {
		h.notifyIfLow(part)
	}
	c.JSON(http.StatusOK, part)
}

func (h *InventoryHandler) DeletePart(c *gin.Context) {
	ctx := c.Request.Context()
	part, err := h.Parts.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load part")
		return
	}
	if err := h.Parts.Delete(ctx, part.ID); err != nil {
		respondError(c, h.Logger, err, "Failed to delete part")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityDelete,
		Action:       "Deleted part " + part.Name,
		ResourceType: resourceInventory,
		ResourceID:   part.ID,
		Before:       part,
	})
	c.Status(http.StatusNoContent)
}

// Restock adds stock with a single atomic increment in the store.
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := pricing.Restock(0, req.Quantity); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	part, err := h.Parts.Restock(ctx, c.Param("id"), req.Quantity, strings.TrimSpace(req.Supplier), time.Now().UTC())
	if err != nil {
		respondError(c, h.Logger, err, "Failed to restock part")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityRestock,
		Action:       fmt.Sprintf("Restocked %d x %s", req.Quantity, part.Name),
		ResourceType: resourceInventory,
		ResourceID:   part.ID,
		After:        part,
		Metadata:     map[string]any{"quantity": req.Quantity, "supplier": part.Supplier},
	})
	c.JSON(http.StatusOK, part)
}

// UploadImage stores a multipart "image" file in S3 and saves its URL on the part.
func (h *InventoryHandler) UploadImage(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be an image"})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image is larger than 5MB"})
		return
	}

	ctx := c.Request.Context()
	part, err := h.Parts.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load part")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.Logger, err, "Failed to read image")
		return
	}
	defer file.Close()

	url, err := h.Uploader.UploadFile(ctx, file, s3.ObjectKey("inventory/"+part.ID, fileHeader.Filename), contentType)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to upload image")
		return
	}

	updated, err := h.Parts.SetImage(ctx, part.ID, url)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to save image")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityUpdate,
		Action:       "Uploaded image for " + part.Name,
		ResourceType: resourceInventory,
		ResourceID:   part.ID,
		Before:       part,
		After:        updated,
	})
	c.JSON(http.StatusOK, updated)
}

// notifyIfLow alerts admins when a part is at or below its minimum.
func (h *InventoryHandler) notifyIfLow(part *models.Part) {
	if part.IsLowStock() {
		h.Notifier.ToRole(models.RoleAdmin, notify.EventLowStock, part)
	}
}
