package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"motohub-api-server/internal/models"
)

func mustField(t *testing.T, body []byte, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	return m[key]
}

func TestDashboardHandler(t *testing.T) {
	users := &mockUserStore{}
	parts := &mockPartStore{}
	reqs := &mockRequests{}
	promos := &mockPromotions{}
	logs := &mockLogs{}

	users.On("CountByRole", mock.Anything).Return(map[models.Role]int64{models.RoleAdmin: 1, models.RoleUser: 4}, nil)
	parts.On("List", mock.Anything, models.PartFilter{}).Return([]models.Part{
		{ID: "a", Quantity: 0, MinStock: 2, UnitPrice: 10},
		{ID: "b", Quantity: 2, MinStock: 5, UnitPrice: 5},
		{ID: "c", Quantity: 10, MinStock: 1, UnitPrice: 1.5},
	}, nil)
	reqs.On("CountByStatus", mock.Anything).Return(map[string]int64{models.RequestStatusPending: 3}, nil)
	promos.On("CountCurrent", mock.Anything, mock.Anything).Return(int64(2), nil)
	logs.On("List", mock.Anything, models.ActivityFilter{Limit: recentActivityLimit}).Return([]models.ActivityLog{{ID: "l1"}}, nil)

	h := &DashboardHandler{Users: users, Parts: parts, Requests: reqs, Promotions: promos, Logs: logs, Logger: nullLogger}
	r := gin.New()
	r.GET("/admin/dashboard", h.GetDashboard)

	w := doJSON(r, http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	d := decode[models.Dashboard](w)
	assert.Equal(t, int64(4), d.UsersByRole[models.RoleUser])
	assert.Equal(t, models.InventorySummary{Parts: 3, Units: 12, StockValue: 25, LowStock: 1, OutOfStock: 1}, d.Inventory)
	assert.Equal(t, int64(3), d.RequestsByStatus[models.RequestStatusPending])
	assert.Equal(t, int64(2), d.ActivePromotions)
	assert.Len(t, d.RecentActivity, 1)
}
