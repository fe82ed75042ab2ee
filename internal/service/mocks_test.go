package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/models"
)

type mockPartStore struct {
	mock.Mock
}

func (m *mockPartStore) FindByIDs(ctx context.Context, ids []string) (map[string]models.Part, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.Part), args.Error(1)
}

func (m *mockPartStore) Adjust(ctx context.Context, id string, delta int64) (*models.Part, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Part), args.Error(1)
}

type mockRequestStore struct {
	mock.Mock
}

func (m *mockRequestStore) Create(ctx context.Context, req *models.PartRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockRequestStore) FindByID(ctx context.Context, id string) (*models.PartRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PartRequest), args.Error(1)
}

func (m *mockRequestStore) Review(ctx context.Context, id, status string, reviewer models.Identity, note string, at time.Time) (*models.PartRequest, error) {
	args := m.Called(ctx, id, status, reviewer, note, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PartRequest), args.Error(1)
}

func (m *mockRequestStore) Reopen(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRequestStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockCarStore struct {
	mock.Mock
}

func (m *mockCarStore) FindByID(ctx context.Context, uid, carID string) (*models.Car, error) {
	args := m.Called(ctx, uid, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

type mockReportStore struct {
	mock.Mock
}

func (m *mockReportStore) Create(ctx context.Context, uid string, report *models.ServiceReport) error {
	return m.Called(ctx, uid, report).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ToUser(userID, eventType string, data any) {
	m.Called(userID, eventType, data)
}

func (m *mockNotifier) ToRole(role models.Role, eventType string, data any) {
	m.Called(role, eventType, data)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, actor models.Identity, e activity.Entry) {
	m.Called(ctx, actor, e)
}
