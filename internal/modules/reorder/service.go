package reorder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service produces reorder suggestions for stored products.
type Service interface {
	Suggest(ctx context.Context, productID int64) (*Result, error)
}

// Observer receives outcome counts, typically metrics.
type Observer interface {
	ObserveSuggestion(source string)
	ObserveReorderFailure(reason string)
}

// Config bounds one Suggest call.
type Config struct {
	Timeout             time.Duration
	DefaultLeadTimeDays int
}

type Option func(*service)

func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

func WithObserver(o Observer) Option { return func(s *service) { s.observer = o } }

type service struct {
	inventory Inventory
	generator Generator
	cfg       Config
	now       func() time.Time
	log       *slog.Logger
	observer  Observer
}

// NewService creates a new reorder service.
func NewService(inv Inventory, gen Generator, cfg Config, opts ...Option) Service {
	s := &service{
		inventory: inv,
		generator: gen,
		cfg:       cfg,
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest asks the model for a recommendation and falls back to the formula
// whenever the reply cannot be used. Only configuration, upstream and timeout
// failures (and an unknown product) are returned as errors.
func (s *service) Suggest(ctx context.Context, productID int64) (*Result, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	now := s.now().UTC()
	log := s.log.With("product_id", productID)

	info, err := buildProductInfo(ctx, s.inventory, productID, now, s.cfg.DefaultLeadTimeDays)
	if err != nil {
		return nil, s.failed(ctx, log, err)
	}

	text, err := s.generator.GenerateText(ctx, BuildPrompt(*info, now))
	if err != nil && surfaced(err) {
		return nil, s.failed(ctx, log, err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, s.failed(ctx, log, ErrTimeout)
	}

	source := SourceModel
	var suggestion Suggestion
	parsed, perr := ParseSuggestion(text)
	switch {
	case err != nil:
		log.WarnContext(ctx, "model call unusable, using fallback", "error", err)
		source, suggestion = SourceFallback, Fallback(*info, now)
	case perr != nil:
		log.WarnContext(ctx, "model reply unparseable, using fallback", "error", perr, "reply", truncate(text, 512))
		source, suggestion = SourceFallback, Fallback(*info, now)
	default:
		suggestion = *parsed
		if suggestion.NextReviewDate == "" {
			suggestion.NextReviewDate = now.Add(reviewInterval).Format(dateLayout)
		}
	}

	if s.observer != nil {
		s.observer.ObserveSuggestion(string(source))
	}
	log.InfoContext(ctx, "reorder suggestion generated",
		"source", source, "recommended_quantity", suggestion.RecommendedQuantity, "risk_level", suggestion.RiskLevel)

	return &Result{
		Success:           true,
		Suggestion:        suggestion,
		ProductInfo:       *info,
		AnalysisTimestamp: now,
		AnalysisID:        uuid.New(),
		Source:            source,
	}, nil
}

// surfaced reports whether err must reach the caller instead of triggering the fallback.
func surfaced(err error) bool {
	var up *UpstreamError
	return errors.As(err, &up) ||
		errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *service) failed(ctx context.Context, log *slog.Logger, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		err = ErrTimeout
	}
	reason := failureReason(err)
	if s.observer != nil {
		s.observer.ObserveReorderFailure(reason)
	}
	log.ErrorContext(ctx, "reorder suggestion failed", "reason", reason, "error", err)
	return err
}

func failureReason(err error) string {
	var up *UpstreamError
	switch {
	case errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &up):
		return "upstream"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}
