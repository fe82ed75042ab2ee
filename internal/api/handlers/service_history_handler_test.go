package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
	"motohub-api-server/internal/service"
)

func newServiceHistoryRouter(reports *mockReports, creator *mockReportCreator, id string, role models.Role) *gin.Engine {
	h := &ServiceHistoryHandler{Reports: reports, Creator: creator, Logger: nullLogger}

	r := gin.New()
	g := r.Group("/users/:uid/service-history", as(id, role))
	g.GET("", h.ListReports)
	g.GET("/:reportId", h.GetReport)
	g.POST("", h.CreateReport)
	return r
}

func TestServiceHistoryHandler_List(t *testing.T) {
	reports := &mockReports{}
	r := newServiceHistoryRouter(reports, &mockReportCreator{}, "u1", models.RoleUser)
	reports.On("List", mock.Anything, "u1", "").Return([]models.ServiceReport{{ID: "s1"}, {ID: "s2"}}, nil)
	reports.On("List", mock.Anything, "u1", "c1").Return([]models.ServiceReport{{ID: "s1", CarID: "c1"}}, nil)

	assert.Len(t, decode[[]models.ServiceReport](doJSON(r, http.MethodGet, "/users/u1/service-history", nil)), 2)

	w := doJSON(r, http.MethodGet, "/users/u1/service-history?carId=c1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[[]models.ServiceReport](w)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].CarID)
}

func TestServiceHistoryHandler_Get(t *testing.T) {
	reports := &mockReports{}
	r := newServiceHistoryRouter(reports, &mockReportCreator{}, "u1", models.RoleUser)
	reports.On("FindByID", mock.Anything, "u1", "s1").Return(&models.ServiceReport{ID: "s1", TotalCost: 120}, nil)
	reports.On("FindByID", mock.Anything, "u1", "s9").Return(nil, database.ErrNotFound)

	w := doJSON(r, http.MethodGet, "/users/u1/service-history/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 120.0, decode[models.ServiceReport](w).TotalCost)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/users/u1/service-history/s9", nil).Code)
}

func TestServiceHistoryHandler_Create(t *testing.T) {
	serviceDate := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	body := gin.H{
		"carId":         "c1",
		"diagnosis":     "Worn pads",
		"workPerformed": "Replaced front pads",
		"laborHours":    1.5,
		"laborRate":     40,
		"partsUsed":     []gin.H{{"partId": "p1", "quantity": 2}},
		"serviceDate":   serviceDate,
	}

	t.Run("mechanic files a report for the customer", func(t *testing.T) {
		creator := &mockReportCreator{}
		r := newServiceHistoryRouter(&mockReports{}, creator, "m1", models.RoleMechanic)
		creator.On("Create", mock.Anything,
			mock.MatchedBy(func(who models.Identity) bool { return who.ID == "m1" && who.Role == models.RoleMechanic }),
			"u1",
			mock.MatchedBy(func(in service.NewReport) bool {
				return in.CarID == "c1" && in.LaborRate == 40 && len(in.PartsUsed) == 1 && in.ServiceDate.Equal(serviceDate)
			}),
		).Return(&models.ServiceReport{ID: "s1", CarID: "c1", LaborCost: 60}, nil)

		w := doJSON(r, http.MethodPost, "/users/u1/service-history", body)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "s1", decode[models.ServiceReport](w).ID)
		creator.AssertExpectations(t)
	})

	t.Run("missing required fields", func(t *testing.T) {
		creator := &mockReportCreator{}
		r := newServiceHistoryRouter(&mockReports{}, creator, "m1", models.RoleMechanic)

		w := doJSON(r, http.MethodPost, "/users/u1/service-history", gin.H{"carId": "c1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		creator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("negative labor", func(t *testing.T) {
		creator := &mockReportCreator{}
		r := newServiceHistoryRouter(&mockReports{}, creator, "m1", models.RoleMechanic)

		bad := gin.H{"carId": "c1", "diagnosis": "x", "workPerformed": "y", "laborHours": -1}
		assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/users/u1/service-history", bad).Code)
		creator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown car", func(t *testing.T) {
		creator := &mockReportCreator{}
		r := newServiceHistoryRouter(&mockReports{}, creator, "m1", models.RoleMechanic)
		creator.On("Create", mock.Anything, mock.Anything, "u1", mock.Anything).
			Return(nil, fmt.Errorf("service.reports.Create: %w", service.ErrUnknownCar))

		w := doJSON(r, http.MethodPost, "/users/u1/service-history", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"unknown car"}`, w.Body.String())
	})
}
