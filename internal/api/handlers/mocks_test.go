package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/api/middleware"
	"motohub-api-server/internal/auth"
	"motohub-api-server/internal/models"
	"motohub-api-server/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var nullLogger, _ = test.NewNullLogger()

func newTokens() *auth.Service {
	return auth.NewService("test-secret", time.Hour).WithHashCost(bcrypt.MinCost)
}

// as stands in for the Authenticate middleware.
func as(id string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextUserRole, string(role))
		c.Set(middleware.ContextUserEmail, id+"@motohub.local")
		c.Next()
	}
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	return v
}

// --- recorder / notifier ---

type fakeRecorder struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (f *fakeRecorder) Record(_ context.Context, _ models.Identity, e activity.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) ToRole(_ models.Role, eventType string, _ any) {
	f.events = append(f.events, eventType)
}

// --- stores ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) List(ctx context.Context, role models.Role) ([]models.User, error) {
	args := m.Called(ctx, role)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockUserStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockUserStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserStore) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[models.Role]int64)
	return counts, args.Error(1)
}

type mockPartStore struct{ mock.Mock }

func (m *mockPartStore) Create(ctx context.Context, part *models.Part) error {
	return m.Called(ctx, part).Error(0)
}

func (m *mockPartStore) FindByID(ctx context.Context, id string) (*models.Part, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Part)
	return p, args.Error(1)
}

func (m *mockPartStore) List(ctx context.Context, f models.PartFilter) ([]models.Part, error) {
	args := m.Called(ctx, f)
	parts, _ := args.Get(0).([]models.Part)
	return parts, args.Error(1)
}

func (m *mockPartStore) Update(ctx context.Context, part *models.Part) error {
	return m.Called(ctx, part).Error(0)
}

func (m *mockPartStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPartStore) Restock(ctx context.Context, id string, quantity int64, supplier string, at time.Time) (*models.Part, error) {
	args := m.Called(ctx, id, quantity, supplier, at)
	p, _ := args.Get(0).(*models.Part)
	return p, args.Error(1)
}

func (m *mockPartStore) SetImage(ctx context.Context, id, url string) (*models.Part, error) {
	args := m.Called(ctx, id, url)
	p, _ := args.Get(0).(*models.Part)
	return p, args.Error(1)
}

type mockRequests struct{ mock.Mock }

func (m *mockRequests) FindByID(ctx context.Context, id string) (*models.PartRequest, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.PartRequest)
	return r, args.Error(1)
}

func (m *mockRequests) List(ctx context.Context, f models.PartRequestFilter) ([]models.PartRequest, error) {
	args := m.Called(ctx, f)
	reqs, _ := args.Get(0).([]models.PartRequest)
	return reqs, args.Error(1)
}

func (m *mockRequests) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

type mockWorkflow struct{ mock.Mock }

func (m *mockWorkflow) Create(ctx context.Context, mechanic models.Identity, in service.NewRequest) (*models.PartRequest, error) {
	args := m.Called(ctx, mechanic, in)
	r, _ := args.Get(0).(*models.PartRequest)
	return r, args.Error(1)
}

func (m *mockWorkflow) Approve(ctx context.Context, admin models.Identity, id, note string) (*models.PartRequest, error) {
	args := m.Called(ctx, admin, id, note)
	r, _ := args.Get(0).(*models.PartRequest)
	return r, args.Error(1)
}

func (m *mockWorkflow) Reject(ctx context.Context, admin models.Identity, id, note string) (*models.PartRequest, error) {
	args := m.Called(ctx, admin, id, note)
	r, _ := args.Get(0).(*models.PartRequest)
	return r, args.Error(1)
}

func (m *mockWorkflow) Delete(ctx context.Context, actor models.Identity, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

type mockPromotions struct{ mock.Mock }

func (m *mockPromotions) Create(ctx context.Context, p *models.Promotion) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPromotions) FindByID(ctx context.Context, id string) (*models.Promotion, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Promotion)
	return p, args.Error(1)
}

func (m *mockPromotions) List(ctx context.Context, currentOnly bool, now time.Time) ([]models.Promotion, error) {
	args := m.Called(ctx, currentOnly, now)
	promos, _ := args.Get(0).([]models.Promotion)
	return promos, args.Error(1)
}

func (m *mockPromotions) Update(ctx context.Context, p *models.Promotion) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPromotions) Toggle(ctx context.Context, id string) (*models.Promotion, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Promotion)
	return p, args.Error(1)
}

func (m *mockPromotions) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPromotions) CountCurrent(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockLogs struct{ mock.Mock }

func (m *mockLogs) List(ctx context.Context, f models.ActivityFilter) ([]models.ActivityLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]models.ActivityLog)
	return logs, args.Error(1)
}

type mockCars struct{ mock.Mock }

func (m *mockCars) Create(ctx context.Context, uid string, car *models.Car) error {
	return m.Called(ctx, uid, car).Error(0)
}

func (m *mockCars) FindByID(ctx context.Context, uid, carID string) (*models.Car, error) {
	args := m.Called(ctx, uid, carID)
	car, _ := args.Get(0).(*models.Car)
	return car, args.Error(1)
}

func (m *mockCars) List(ctx context.Context, uid string) ([]models.Car, error) {
	args := m.Called(ctx, uid)
	cars, _ := args.Get(0).([]models.Car)
	return cars, args.Error(1)
}

func (m *mockCars) Update(ctx context.Context, car *models.Car) error {
	return m.Called(ctx, car).Error(0)
}

func (m *mockCars) Delete(ctx context.Context, uid, carID string) error {
	return m.Called(ctx, uid, carID).Error(0)
}

type mockReports struct{ mock.Mock }

func (m *mockReports) FindByID(ctx context.Context, uid, reportID string) (*models.ServiceReport, error) {
	args := m.Called(ctx, uid, reportID)
	report, _ := args.Get(0).(*models.ServiceReport)
	return report, args.Error(1)
}

func (m *mockReports) List(ctx context.Context, uid, carID string) ([]models.ServiceReport, error) {
	args := m.Called(ctx, uid, carID)
	reports, _ := args.Get(0).([]models.ServiceReport)
	return reports, args.Error(1)
}

type mockReportCreator struct{ mock.Mock }

func (m *mockReportCreator) Create(ctx context.Context, mechanic models.Identity, uid string, in service.NewReport) (*models.ServiceReport, error) {
	args := m.Called(ctx, mechanic, uid, in)
	report, _ := args.Get(0).(*models.ServiceReport)
	return report, args.Error(1)
}
