// server/internal/api/handlers/dashboard_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/models"
	"motohub-api-server/internal/pricing"
)

const recentActivityLimit = 10

type UserCounter interface {
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

type PartLister interface {
	List(ctx context.Context, f models.PartFilter) ([]models.Part, error)
}

type RequestCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type PromotionCounter interface {
	CountCurrent(ctx context.Context, now time.Time) (int64, error)
}

type DashboardHandler struct {
	Users      UserCounter
	Parts      PartLister
	Requests   RequestCounter
	Promotions PromotionCounter
	Logs       LogStore
	Logger     *log.Logger
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.Users.CountByRole(ctx)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to build dashboard")
		return
	}
	parts, err := h.Parts.List(ctx, models.PartFilter{})
	if err != nil {
		respondError(c, h.Logger, err, "Failed to build dashboard")
		return
	}
	requests, err := h.Requests.CountByStatus(ctx)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to build dashboard")
		return
	}
	promotions, err := h.Promotions.CountCurrent(ctx, time.Now().UTC())
	if err != nil {
		respondError(c, h.Logger, err, "Failed to build dashboard")
		return
	}
	recent, err := h.Logs.List(ctx, models.ActivityFilter{Limit: recentActivityLimit})
	if err != nil {
		respondError(c, h.Logger, err, "Failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, models.Dashboard{
		UsersByRole:      users,
		Inventory:        summarize(parts),
		RequestsByStatus: requests,
		ActivePromotions: promotions,
		RecentActivity:   recent,
	})
}

func summarize(parts []models.Part) models.InventorySummary {
	return models.InventorySummary{
		Parts:      int64(len(parts)),
		Units:      lo.SumBy(parts, func(p models.Part) int64 { return p.Quantity }),
		StockValue: pricing.StockValue(parts),
		LowStock: int64(lo.CountBy(parts, func(p models.Part) bool {
			return p.Quantity > 0 && p.IsLowStock()
		})),
		OutOfStock: int64(lo.CountBy(parts, func(p models.Part) bool { return p.Quantity <= 0 })),
	}
}
