package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/grocer-backend/pkg/logger"
)

type sessionExpirer interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

type SessionExpiryJobParams struct {
	Logger   *logger.Logger
	Sessions sessionExpirer
}

// NewSessionExpiryJob builds the job that deactivates sessions past their expiry.
func NewSessionExpiryJob(params SessionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("sessions service required")
	}
	return &sessionExpiryJob{logg: params.Logger, sessions: params.Sessions}, nil
}

type sessionExpiryJob struct {
	logg     *logger.Logger
	sessions sessionExpirer
}

func (j *sessionExpiryJob) Name() string { return "session-expiry" }

func (j *sessionExpiryJob) Run(ctx context.Context) error {
	deactivated, err := j.sessions.DeactivateExpired(ctx)
	if err != nil {
		return fmt.Errorf("session expiry: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "sessions_deactivated", deactivated)
	j.logg.Info(logCtx, "session expiry complete")
	return nil
}
