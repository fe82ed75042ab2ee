// Package activity records who changed what, with before/after snapshots and a field diff.
package activity

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/models"
)

// ignoredFields never show up in a diff.
var ignoredFields = map[string]bool{"updatedAt": true}

type Store interface {
	Insert(ctx context.Context, entry *models.ActivityLog) error
}

// Entry describes one mutation. Before is nil for creates, After is nil for deletes.
type Entry struct {
	Type         string
	Action       string
	ResourceType string
	ResourceID   string
	Before       any
	After        any
	Metadata     map[string]any
}

type Recorder struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

func NewRecorder(store Store, logger *log.Logger) *Recorder {
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// Record stores the entry. Failures are logged and swallowed so the mutation
// that triggered them still succeeds.
func (r *Recorder) Record(ctx context.Context, actor models.Identity, e Entry) {
	entry := &models.ActivityLog{
		ID:           uuid.NewString(),
		Type:         e.Type,
		Actor:        actor,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Before:       Snapshot(e.Before),
		After:        Snapshot(e.After),
		Metadata:     e.Metadata,
		CreatedAt:    r.now().UTC(),
	}
	if entry.Before != nil && entry.After != nil {
		entry.Changes = Diff(entry.Before, entry.After)
	}

	if err := r.store.Insert(ctx, entry); err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"type":     e.Type,
			"resource": e.ResourceType,
			"id":       e.ResourceID,
		}).Warn("failed to record activity")
	}
}

// Snapshot returns the JSON view of v as a map, or nil when v is nil or not an object.
func Snapshot(v any) map[string]any {
	if v == nil {
		return nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// Diff lists the top-level fields whose values differ between before and after.
func Diff(before, after map[string]any) map[string]models.FieldChange {
	changes := map[string]models.FieldChange{}

	for k, from := range before {
		if ignoredFields[k] {
			continue
		}
		to, ok := after[k]
		if !ok || !reflect.DeepEqual(from, to) {
			changes[k] = models.FieldChange{From: from, To: to}
		}
	}
	for k, to := range after {
		if ignoredFields[k] {
			continue
		}
		if _, ok := before[k]; !ok {
			changes[k] = models.FieldChange{From: nil, To: to}
		}
	}
	return changes
}
