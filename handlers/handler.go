package handlers

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tripjeju/courseapi/course"
	"github.com/tripjeju/courseapi/models"
)

// Users looks up API users by name.
type Users interface {
	FindUser(ctx context.Context, username string) (*models.User, error)
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	courses *course.Service
	users   Users
	logger  *zap.Logger
	admins  map[string]bool
	JWTKey  []byte
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithAdmins replaces the admin user list. Names compare case-insensitively.
func WithAdmins(names ...string) Option {
	return func(h *Handler) {
		h.admins = make(map[string]bool, len(names))
		for _, n := range names {
			if n = normalizeUsername(n); n != "" {
				h.admins[n] = true
			}
		}
	}
}

// New creates a Handler over the course service, user lookup and JWT signing key.
func New(courses *course.Service, users Users, jwtKey []byte, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{courses: courses, users: users, logger: logger, JWTKey: jwtKey, now: time.Now}
	WithAdmins("admin")(h)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
