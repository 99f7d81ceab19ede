// Package refresher periodically renews OAuth credentials of linked channels
// and trims the publication ledger.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/memohai/crosspost/internal/channels"
	"github.com/memohai/crosspost/internal/secrets"
	"github.com/memohai/crosspost/internal/youtube"
)

// Store lists and updates linked channel credentials.
type Store interface {
	ListExpiring(ctx context.Context, platform string, before time.Time) ([]channels.ExpiringChannel, error)
	UpdateCredentials(ctx context.Context, ch channels.ExpiringChannel, creds secrets.Credentials) error
}

// TokenRefresher exchanges a refresh token for a fresh bundle.
type TokenRefresher interface {
	Refresh(ctx context.Context, creds secrets.Credentials) (secrets.Credentials, error)
}

// Pruner trims the publication ledger.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Report summarizes one run.
type Report struct {
	Refreshed int
	Failed    int
	Skipped   int
	Pruned    int64
}

type Service struct {
	store     Store
	tokens    TokenRefresher
	pruner    Pruner
	lookahead time.Duration
	now       func() time.Time
	logger    *slog.Logger

	parser cron.Parser
	cron   *cron.Cron
	mu     sync.Mutex
	runMu  sync.Mutex
	entry  cron.EntryID
}

func NewService(log *slog.Logger, store Store, tokens TokenRefresher, pruner Pruner, lookahead time.Duration) *Service {
	if log == nil {
		log = slog.Default()
	}
	if lookahead <= 0 {
		lookahead = 30 * time.Minute
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Service{
		store:     store,
		tokens:    tokens,
		pruner:    pruner,
		lookahead: lookahead,
		now:       time.Now,
		logger:    log.With(slog.String("service", "refresher")),
		parser:    parser,
		cron:      cron.New(cron.WithParser(parser)),
	}
}

// Start schedules RunOnce on pattern and starts the cron loop. An empty pattern disables the job.
func (s *Service) Start(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		s.logger.Info("credential refresh disabled")
		return nil
	}
	if _, err := s.parser.Parse(pattern); err != nil {
		return fmt.Errorf("invalid refresher schedule: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}
	entry, err := s.cron.AddFunc(pattern, func() {
		_ = s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}
	s.entry = entry
	s.cron.Start()
	s.logger.Info("credential refresh scheduled", slog.String("schedule", pattern), slog.Duration("lookahead", s.lookahead))
	return nil
}

// Stop stops the cron loop and waits for a running job or ctx expiry.
func (s *Service) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce refreshes every YouTube credential expiring within the lookahead window,
// then prunes publications. Per-channel failures are logged and counted, never fatal.
func (s *Service) RunOnce(ctx context.Context) Report {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	var report Report
	expiring, err := s.store.ListExpiring(ctx, youtube.Platform, s.now().Add(s.lookahead))
	if err != nil {
		s.logger.Error("list expiring channels failed", slog.Any("error", err))
	}
	for _, ch := range expiring {
		if ctx.Err() != nil {
			break
		}
		fresh, err := s.tokens.Refresh(ctx, ch.Credentials)
		if err != nil {
			report.Failed++
			s.logger.Warn("refresh credentials failed",
				slog.String("channel_id", ch.ExternalChannelID), slog.Any("error", err))
			continue
		}
		if err := s.store.UpdateCredentials(ctx, ch, fresh); err != nil {
			if errors.Is(err, channels.ErrCredentialsChanged) {
				report.Skipped++
				s.logger.Info("skip stale credential refresh",
					slog.String("channel_id", ch.ExternalChannelID))
				continue
			}
			report.Failed++
			s.logger.Warn("store refreshed credentials failed",
				slog.String("channel_id", ch.ExternalChannelID), slog.Any("error", err))
			continue
		}
		report.Refreshed++
	}

	if s.pruner != nil {
		removed, err := s.pruner.Prune(ctx)
		if err != nil {
			s.logger.Warn("prune publications failed", slog.Any("error", err))
		}
		report.Pruned = removed
	}

	if report.Refreshed > 0 || report.Failed > 0 || report.Skipped > 0 || report.Pruned > 0 {
		s.logger.Info("refresh run complete",
			slog.Int("refreshed", report.Refreshed),
			slog.Int("failed", report.Failed),
			slog.Int("skipped", report.Skipped),
			slog.Int64("pruned", report.Pruned))
	}
	return report
}
