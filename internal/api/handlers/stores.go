package handlers

import (
	"context"
	"io"
	"time"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/auth"
	"motohub-api-server/internal/models"
	"motohub-api-server/internal/service"
)

// The interfaces below are the slices of the repositories and services each
// handler needs; the database package satisfies them.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, role models.Role) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type TokenService interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, hash string) bool
	GenerateToken(user *models.User) (string, error)
	ParseToken(tokenString string) (*auth.JWTClaims, error)
}

type PartStore interface {
	Create(ctx context.Context, part *models.Part) error
	FindByID(ctx context.Context, id string) (*models.Part, error)
	List(ctx context.Context, f models.PartFilter) ([]models.Part, error)
	Update(ctx context.Context, part *models.Part) error
	Delete(ctx context.Context, id string) error
	Restock(ctx context.Context, id string, quantity int64, supplier string, at time.Time) (*models.Part, error)
	SetImage(ctx context.Context, id, url string) (*models.Part, error)
}

type ImageUploader interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}

type RequestReader interface {
	FindByID(ctx context.Context, id string) (*models.PartRequest, error)
	List(ctx context.Context, f models.PartRequestFilter) ([]models.PartRequest, error)
}

type RequestWorkflow interface {
	Create(ctx context.Context, mechanic models.Identity, in service.NewRequest) (*models.PartRequest, error)
	Approve(ctx context.Context, admin models.Identity, id, note string) (*models.PartRequest, error)
	Reject(ctx context.Context, admin models.Identity, id, note string) (*models.PartRequest, error)
	Delete(ctx context.Context, actor models.Identity, id string) error
}

type PromotionStore interface {
	Create(ctx context.Context, p *models.Promotion) error
	FindByID(ctx context.Context, id string) (*models.Promotion, error)
	List(ctx context.Context, currentOnly bool, now time.Time) ([]models.Promotion, error)
	Update(ctx context.Context, p *models.Promotion) error
	Toggle(ctx context.Context, id string) (*models.Promotion, error)
	Delete(ctx context.Context, id string) error
}

type CarStore interface {
	Create(ctx context.Context, uid string, car *models.Car) error
	FindByID(ctx context.Context, uid, carID string) (*models.Car, error)
	List(ctx context.Context, uid string) ([]models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, uid, carID string) error
}

type ReportReader interface {
	FindByID(ctx context.Context, uid, reportID string) (*models.ServiceReport, error)
	List(ctx context.Context, uid, carID string) ([]models.ServiceReport, error)
}

type ReportCreator interface {
	Create(ctx context.Context, mechanic models.Identity, uid string, in service.NewReport) (*models.ServiceReport, error)
}

type LogStore interface {
	List(ctx context.Context, f models.ActivityFilter) ([]models.ActivityLog, error)
}

type Recorder interface {
	Record(ctx context.Context, actor models.Identity, e activity.Entry)
}

type RoleNotifier interface {
	ToRole(role models.Role, eventType string, data any)
}
