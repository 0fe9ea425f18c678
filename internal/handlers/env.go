// Package handlers is the JSON admin API.
package handlers

import (
	"log/slog"
	"time"

	"github.com/certhub/examdesk/internal/events"
	"github.com/certhub/examdesk/internal/services"
)

// Env is what every handler needs.
type Env struct {
	Svc    *services.Service
	Notify events.Notifier
	Log    *slog.Logger
	Auth   *Auth
	Loc    *time.Location
}

func NewEnv(svc *services.Service, auth *Auth, notify events.Notifier, log *slog.Logger, loc *time.Location) *Env {
	if notify == nil {
		notify = events.Discard
	}
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Env{Svc: svc, Notify: notify, Log: log, Auth: auth, Loc: loc}
}
