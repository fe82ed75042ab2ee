package models

import "time"

const (
	ActivityCreate  = "create"
	ActivityUpdate  = "update"
	ActivityDelete  = "delete"
	ActivityRestock = "restock"
	ActivityApprove = "approve"
	ActivityReject  = "reject"
	ActivityLogin   = "login"
	ActivitySignup  = "register"
)

// FieldChange is one entry of a computed diff.
type FieldChange struct {
	From any `bson:"from" json:"from"`
	To   any `bson:"to" json:"to"`
}

type ActivityLog struct {
	ID           string                 `bson:"_id" json:"id"`
	Type         string                 `bson:"type" json:"type"`
	Actor        Identity               `bson:"actor" json:"actor"`
	Action       string                 `bson:"action" json:"action"`
	ResourceType string                 `bson:"resourceType" json:"resourceType"`
	ResourceID   string                 `bson:"resourceId" json:"resourceId"`
	Before       map[string]any         `bson:"before,omitempty" json:"before,omitempty"`
	After        map[string]any         `bson:"after,omitempty" json:"after,omitempty"`
	Changes      map[string]FieldChange `bson:"changes,omitempty" json:"changes,omitempty"`
	Metadata     map[string]any         `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt    time.Time              `bson:"createdAt" json:"createdAt"`
}

type ActivityFilter struct {
	ResourceType string
	ActorID      string
	Limit        int64
}
