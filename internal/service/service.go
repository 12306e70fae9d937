// Package service implements project, metric record and metric settings
// operations on top of a store.Store.
//
// Service methods return *NotFoundError, *ValidationError or
// *ConflictError for client mistakes; anything else is an internal error.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"chronology/internal/logging"
	"chronology/internal/store"
)

const tracerName = "chronology/service"

// Service owns the business rules for projects and their metrics.
type Service struct {
	store  store.Store
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a Service backed by st.
func New(st store.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: logging.OrNop(logger).Named("service"),
		tracer: otel.Tracer(tracerName),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() store.Store {
	return s.store
}

func (s *Service) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// finish records err on span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
