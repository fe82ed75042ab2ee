package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"motohub-api-server/internal/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, entry *models.ActivityLog) error {
	return m.Called(ctx, entry).Error(0)
}

func TestDiff(t *testing.T) {
	before := map[string]any{"name": "Pad", "quantity": 3.0, "updatedAt": "a", "supplier": "Acme"}
	after := map[string]any{"name": "Pad", "quantity": 8.0, "updatedAt": "b", "image": "x.jpg"}

	changes := Diff(before, after)

	assert.Equal(t, map[string]models.FieldChange{
		"quantity": {From: 3.0, To: 8.0},
		"supplier": {From: "Acme", To: nil},
		"image":    {From: nil, To: "x.jpg"},
	}, changes)
}

func TestDiff_NestedValues(t *testing.T) {
	before := map[string]any{"features": []any{"a"}}
	assert.Empty(t, Diff(before, map[string]any{"features": []any{"a"}}))
	assert.Contains(t, Diff(before, map[string]any{"features": []any{"a", "b"}}), "features")
}

func TestSnapshot(t *testing.T) {
	var nilPart *models.Part
	assert.Nil(t, Snapshot(nil))
	assert.Nil(t, Snapshot(nilPart))

	snap := Snapshot(&models.Part{ID: "p1", Quantity: 4})
	assert.Equal(t, "p1", snap["id"])
	assert.Equal(t, 4.0, snap["quantity"])
}

func TestRecorder_Record(t *testing.T) {
	store := new(mockStore)
	logger, hook := test.NewNullLogger()
	rec := NewRecorder(store, logger)
	rec.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	var saved *models.ActivityLog
	store.On("Insert", mock.Anything, mock.AnythingOfType("*models.ActivityLog")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.ActivityLog) }).
		Return(nil)

	actor := models.Identity{ID: "a1", Role: models.RoleAdmin}
	rec.Record(context.Background(), actor, Entry{
		Type:         models.ActivityUpdate,
		Action:       "Updated part Brake pad",
		ResourceType: "inventory",
		ResourceID:   "p1",
		Before:       &models.Part{ID: "p1", Quantity: 1},
		After:        &models.Part{ID: "p1", Quantity: 2},
	})

	require.NotNil(t, saved)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, actor, saved.Actor)
	assert.Equal(t, models.FieldChange{From: 1.0, To: 2.0}, saved.Changes["quantity"])
	assert.Len(t, saved.Changes, 1)
	assert.Empty(t, hook.Entries)
}

func TestRecorder_RecordFailureIsLogged(t *testing.T) {
	store := new(mockStore)
	logger, hook := test.NewNullLogger()
	rec := NewRecorder(store, logger)

	store.On("Insert", mock.Anything, mock.Anything).Return(errors.New("boom"))

	rec.Record(context.Background(), models.Identity{ID: "a1"}, Entry{Type: models.ActivityDelete, ResourceType: "promotions", Before: map[string]any{"id": "x"}})

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Nil(t, store.Calls[0].Arguments.Get(1).(*models.ActivityLog).Changes)
}
