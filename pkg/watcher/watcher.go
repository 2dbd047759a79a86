// Package watcher sequences one monitoring check: authenticate, fetch,
// parse, decide, send, record. Every failure class degrades to the
// connectivity-failure path instead of aborting the process.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkemper/fritzwatch/pkg/alerts"
	"github.com/dkemper/fritzwatch/pkg/fritz"
	"github.com/dkemper/fritzwatch/pkg/model"
	"github.com/dkemper/fritzwatch/pkg/storage"
	"github.com/dkemper/fritzwatch/pkg/usage"
)

// DefaultConnectivityMessage is sent to admin destinations when usage
// state cannot be obtained.
const DefaultConnectivityMessage = "fritzwatch: router unreachable or usage state unavailable"

// Authenticator supplies and invalidates router sessions.
type Authenticator interface {
	Session(ctx context.Context) (string, error)
	Invalidate()
}

// Fetcher retrieves raw usage markup for a session id.
type Fetcher interface {
	Fetch(ctx context.Context, sid string) (string, error)
}

// Config holds the per-deployment inputs of a watcher.
type Config struct {
	Device              string
	Destinations        []model.Destination
	ConnectivityMessage string
}

// Watcher runs monitoring checks. Checks are strictly sequential; the
// watcher performs no internal parallelism.
type Watcher struct {
	auth     Authenticator
	fetcher  Fetcher
	store    storage.Storage
	notifier alerts.Notifier
	cfg      Config
	logger   *slog.Logger

	now func() time.Time
}

// New creates a watcher.
func New(auth Authenticator, fetcher Fetcher, store storage.Storage, notifier alerts.Notifier, cfg Config, logger *slog.Logger) *Watcher {
	if cfg.ConnectivityMessage == "" {
		cfg.ConnectivityMessage = DefaultConnectivityMessage
	}
	return &Watcher{
		auth:     auth,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// RunCheck performs one full check invocation.
func (w *Watcher) RunCheck(ctx context.Context) error {
	day := model.Day(w.now())

	remaining, err := w.obtainUsage(ctx)
	if err != nil {
		w.logger.Warn("usage state unavailable", "device", w.cfg.Device, "error", err)
		return w.connectivityFallback(ctx, day, err)
	}

	w.logger.Info("usage state",
		"device", w.cfg.Device,
		"used", remaining.UsedLabel,
		"total", remaining.TotalLabel,
		"remaining_minutes", remaining.RemainingMinutes,
		"exhausted", remaining.Exhausted,
	)

	decisions, err := alerts.Decide(ctx, remaining, w.cfg.Destinations, day, w.store.WasAlertSent)
	if err != nil {
		return fmt.Errorf("decide alerts: %w", err)
	}

	w.dispatch(ctx, day, decisions)

	msg := fmt.Sprintf("%s: %d minutes remaining", w.cfg.Device, remaining.RemainingMinutes)
	if err := w.store.RecordEvent(ctx, model.EventCheckOK, msg, model.LevelInfo, w.now()); err != nil {
		w.logger.Error("record check event", "error", err)
	}
	return nil
}

// obtainUsage runs auth, fetch, and parse, with exactly one
// re-authentication retry when the router rejects the session.
func (w *Watcher) obtainUsage(ctx context.Context) (model.TimeRemaining, error) {
	sid, err := w.auth.Session(ctx)
	if err != nil {
		return model.TimeRemaining{}, err
	}

	raw, err := w.fetcher.Fetch(ctx, sid)
	if errors.Is(err, fritz.ErrSessionExpired) {
		w.logger.Info("session expired, re-authenticating")
		w.auth.Invalidate()
		sid, err = w.auth.Session(ctx)
		if err != nil {
			return model.TimeRemaining{}, err
		}
		raw, err = w.fetcher.Fetch(ctx, sid)
	}
	if err != nil {
		return model.TimeRemaining{}, err
	}

	return usage.Parse(raw, w.cfg.Device)
}

// connectivityFallback alerts admin destinations about a failed check,
// at most once per day each.
func (w *Watcher) connectivityFallback(ctx context.Context, day string, cause error) error {
	if err := w.store.RecordEvent(ctx, model.EventConnectivityFailure, cause.Error(), model.LevelError, w.now()); err != nil {
		w.logger.Error("record connectivity event", "error", err)
	}

	decisions, err := alerts.DecideConnectivity(ctx, w.cfg.Destinations, day, w.cfg.ConnectivityMessage, w.store.WasAlertSent)
	if err != nil {
		return fmt.Errorf("decide connectivity alerts: %w", err)
	}

	w.dispatch(ctx, day, decisions)
	return nil
}

// dispatch sends each decided alert and records the outcome. A failed
// send is logged but writes no sent-alert record, so the same
// threshold is retried on the next check.
func (w *Watcher) dispatch(ctx context.Context, day string, decisions []alerts.Decision) {
	for _, d := range decisions {
		if err := w.notifier.Send(ctx, d.Number, d.Message); err != nil {
			w.logger.Error("send alert failed",
				"notifier", w.notifier.Name(),
				"number", d.Number,
				"threshold", d.ThresholdKey,
				"error", err,
			)
			msg := fmt.Sprintf("send to %s (threshold %d): %v", d.Number, d.ThresholdKey, err)
			if err := w.store.RecordEvent(ctx, model.EventSendFailed, msg, model.LevelWarning, w.now()); err != nil {
				w.logger.Error("record send failure", "error", err)
			}
			continue
		}

		w.logger.Info("alert sent", "number", d.Number, "threshold", d.ThresholdKey)
		if err := w.store.RecordSentAlert(ctx, d.Number, day, d.ThresholdKey, w.now()); err != nil {
			w.logger.Error("record sent alert", "number", d.Number, "threshold", d.ThresholdKey, "error", err)
		}
		msg := fmt.Sprintf("sent to %s (threshold %d)", d.Number, d.ThresholdKey)
		if err := w.store.RecordEvent(ctx, model.EventAlertSent, msg, model.LevelInfo, w.now()); err != nil {
			w.logger.Error("record alert event", "error", err)
		}
	}
}
