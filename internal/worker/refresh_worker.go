// Package worker runs refreshes outside the request path: on AMQP
// requests from the API and on a cron schedule.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"kindra/internal/amqp"
	"kindra/internal/refresh"
)

// RefreshWorker consumes refresh requests and keeps the snapshot warm on a
// schedule. The scheduled refresh is the safety net for lost messages.
type RefreshWorker struct {
	coordinator *refresh.Coordinator
	schedule    string
	cron        *cron.Cron
	logger      *slog.Logger
}

func NewRefreshWorker(coordinator *refresh.Coordinator, schedule string, logger *slog.Logger) *RefreshWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshWorker{
		coordinator: coordinator,
		schedule:    schedule,
		logger:      logger,
	}
}

// HandleRefreshRequest processes one AMQP refresh request.
func (w *RefreshWorker) HandleRefreshRequest(ctx context.Context, msg *amqp.RefreshRequestMessage) error {
	w.logger.InfoContext(ctx, "Processing refresh request",
		"request_id", msg.RequestID,
		"collection", msg.Collection,
		"requested_by", msg.RequestedBy)

	if msg.IsFullRefresh() {
		res, err := w.coordinator.RefreshAll(ctx)
		if err != nil {
			return fmt.Errorf("full refresh: %w", err)
		}
		w.logger.InfoContext(ctx, "Refresh request complete",
			"request_id", msg.RequestID,
			"refreshed", len(res.Refreshed),
			"failed", len(res.Failed))
		return nil
	}

	if err := w.coordinator.RefreshCollection(ctx, msg.Collection); err != nil {
		return fmt.Errorf("refresh %s: %w", msg.Collection, err)
	}
	return nil
}

// StartSchedule begins the periodic refresh. Schedule is a standard cron
// expression; an empty schedule disables the timer.
func (w *RefreshWorker) StartSchedule(ctx context.Context) error {
	if w.schedule == "" {
		w.logger.Info("Scheduled refresh disabled")
		return nil
	}

	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.schedule, func() {
		if _, err := w.coordinator.RefreshAll(ctx); err != nil {
			w.logger.Error("Scheduled refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse refresh schedule %q: %w", w.schedule, err)
	}

	w.cron.Start()
	w.logger.Info("Scheduled refresh started", "schedule", w.schedule)
	return nil
}

// StopSchedule stops the timer and waits for a running refresh to finish.
func (w *RefreshWorker) StopSchedule() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}
