// server/internal/api/handlers/helpers.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/api/middleware"
	"motohub-api-server/internal/auth"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
	"motohub-api-server/internal/pricing"
	"motohub-api-server/internal/service"
)

// currentUser returns the identity the Authenticate middleware stored on the context.
func currentUser(c *gin.Context) models.Identity {
	return models.Identity{
		ID:    c.GetString(middleware.ContextUserID),
		Email: c.GetString(middleware.ContextUserEmail),
		Role:  models.Role(c.GetString(middleware.ContextUserRole)),
	}
}

// statusFor maps domain and storage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicate),
		errors.Is(err, database.ErrConflict),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUnknownPart),
		errors.Is(err, service.ErrUnknownCar),
		errors.Is(err, pricing.ErrInvalidRestock),
		errors.Is(err, pricing.ErrNegativeValue),
		errors.Is(err, pricing.ErrInvalidDiscount),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrReservedEmail):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Unexpected errors are logged and hidden from the client.
func respondError(c *gin.Context, logger *log.Logger, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(msg)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": publicMessage(err)})
}

// opPrefix matches the "pkg.Op: " wrapping added by lower layers.
var opPrefix = regexp.MustCompile(`^([A-Za-z_]+\.)+[A-Za-z_]+: `)

func publicMessage(err error) string {
	msg := err.Error()
	for {
		loc := opPrefix.FindStringIndex(msg)
		if loc == nil {
			return msg
		}
		msg = msg[loc[1]:]
	}
}

func activityEntry(kind, action, resourceType, resourceID string) activity.Entry {
	return activity.Entry{Type: kind, Action: action, ResourceType: resourceType, ResourceID: resourceID}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// bindOptionalJSON binds a JSON body that may be empty.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func queryInt(c *gin.Context, key string) int64 {
	n, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
