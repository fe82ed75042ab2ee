package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"motohub-api-server/internal/models"
	"motohub-api-server/internal/service"
)

func newRequestRouter(reqs *mockRequests, wf *mockWorkflow, id string, role models.Role) *gin.Engine {
	h := &RequestHandler{Requests: reqs, Workflow: wf, Logger: nullLogger}

	r := gin.New()
	g := r.Group("/requests", as(id, role))
	g.POST("", h.CreateRequest)
	g.GET("", h.ListRequests)
	g.GET("/:id", h.GetRequest)
	g.POST("/:id/approve", h.ApproveRequest)
	g.POST("/:id/reject", h.RejectRequest)
	g.DELETE("/:id", h.DeleteRequest)
	return r
}

func TestRequestHandler_Create(t *testing.T) {
	wf := &mockWorkflow{}
	r := newRequestRouter(&mockRequests{}, wf, "mech-1", models.RoleMechanic)

	car := models.CarSnapshot{ID: "c1", Make: gofakeit.CarMaker(), Model: gofakeit.CarModel()}
	wf.On("Create", mock.Anything, mock.MatchedBy(func(id models.Identity) bool {
		return id.ID == "mech-1" && id.Role == models.RoleMechanic
	}), mock.MatchedBy(func(in service.NewRequest) bool {
		return in.Car == car && len(in.Parts) == 1 && in.Urgent
	})).Return(&models.PartRequest{ID: "r1", Status: models.RequestStatusPending}, nil)

	w := doJSON(r, http.MethodPost, "/requests", gin.H{
		"car":      car,
		"customer": gin.H{"id": "u1", "name": gofakeit.Name()},
		"parts":    []gin.H{{"partId": "p1", "quantity": 2}},
		"urgent":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "r1", decode[models.PartRequest](w).ID)
	wf.AssertExpectations(t)
}

func TestRequestHandler_Create_RequiresParts(t *testing.T) {
	wf := &mockWorkflow{}
	r := newRequestRouter(&mockRequests{}, wf, "mech-1", models.RoleMechanic)

	w := doJSON(r, http.MethodPost, "/requests", gin.H{
		"car":      gin.H{"id": "c1", "make": "Honda", "model": "Civic"},
		"customer": gin.H{"id": "u1", "name": "Ana"},
		"parts":    []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	wf.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestHandler_List_ScopesMechanics(t *testing.T) {
	reqs := &mockRequests{}
	reqs.On("List", mock.Anything, models.PartRequestFilter{Status: "pending", MechanicID: "mech-1"}).
		Return([]models.PartRequest{{ID: "r1"}}, nil)
	reqs.On("List", mock.Anything, models.PartRequestFilter{Status: "pending"}).
		Return([]models.PartRequest{{ID: "r1"}, {ID: "r2"}}, nil)

	w := doJSON(newRequestRouter(reqs, &mockWorkflow{}, "mech-1", models.RoleMechanic), http.MethodGet, "/requests?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.PartRequest](w), 1)

	w = doJSON(newRequestRouter(reqs, &mockWorkflow{}, "admin-1", models.RoleAdmin), http.MethodGet, "/requests?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.PartRequest](w), 2)
}

func TestRequestHandler_Get_OtherMechanic(t *testing.T) {
	reqs := &mockRequests{}
	reqs.On("FindByID", mock.Anything, "r1").Return(&models.PartRequest{ID: "r1", Mechanic: models.Identity{ID: "mech-2"}}, nil)

	w := doJSON(newRequestRouter(reqs, &mockWorkflow{}, "mech-1", models.RoleMechanic), http.MethodGet, "/requests/r1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestHandler_Approve(t *testing.T) {
	t.Run("insufficient stock is a conflict", func(t *testing.T) {
		wf := &mockWorkflow{}
		wf.On("Approve", mock.Anything, mock.Anything, "r1", "ok").
			Return(nil, fmt.Errorf("service.requests.Approve: %w", service.ErrInsufficientStock))

		w := doJSON(newRequestRouter(&mockRequests{}, wf, "admin-1", models.RoleAdmin), http.MethodPost, "/requests/r1/approve", gin.H{"reviewNote": "ok"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"insufficient stock"}`, w.Body.String())
	})

	t.Run("empty body", func(t *testing.T) {
		wf := &mockWorkflow{}
		wf.On("Approve", mock.Anything, mock.Anything, "r1", "").
			Return(&models.PartRequest{ID: "r1", Status: models.RequestStatusApproved}, nil)

		w := doJSON(newRequestRouter(&mockRequests{}, wf, "admin-1", models.RoleAdmin), http.MethodPost, "/requests/r1/approve", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.RequestStatusApproved, decode[models.PartRequest](w).Status)
	})
}

func TestRequestHandler_RejectTwice(t *testing.T) {
	wf := &mockWorkflow{}
	wf.On("Reject", mock.Anything, mock.Anything, "r1", "no stock").Return(nil, service.ErrAlreadyReviewed)

	w := doJSON(newRequestRouter(&mockRequests{}, wf, "admin-1", models.RoleAdmin), http.MethodPost, "/requests/r1/reject", gin.H{"reviewNote": "no stock"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRequestHandler_Delete(t *testing.T) {
	wf := &mockWorkflow{}
	wf.On("Delete", mock.Anything, mock.Anything, "r1").Return(fmt.Errorf("service.requests.Delete: %w", service.ErrForbidden))
	wf.On("Delete", mock.Anything, mock.Anything, "r2").Return(nil)
	r := newRequestRouter(&mockRequests{}, wf, "mech-1", models.RoleMechanic)

	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodDelete, "/requests/r1", nil).Code)
	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/requests/r2", nil).Code)
}
