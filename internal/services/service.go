// Package services holds the exam-administration workflows. Every workflow
// runs inside one database transaction on the injected connection.
package services

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *slog.Logger
	now func() time.Time
}

func New(conn *gorm.DB, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: conn, log: log.With("component", "services"), now: time.Now}
}

// DB exposes the connection handle for read-only callers such as reports.
func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *Service) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// finish records the workflow outcome and duration and logs failures.
func (s *Service) finish(ctx context.Context, workflow string, start time.Time, err error) {
	outcome := observe(workflow, time.Since(start), err)
	switch outcome {
	case outcomeError:
		s.log.ErrorContext(ctx, "workflow failed", "workflow", workflow, "err", err)
	case outcomeRejected:
		s.log.InfoContext(ctx, "workflow rejected", "workflow", workflow, "reason", err)
	}
}
