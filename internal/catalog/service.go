package catalog

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"simconfig/pkg/simconfig"
)

// Service exposes configuration-level operations on top of a Store, adding
// rendering, parsing and observability around the raw record CRUD.
type Service struct {
	store   Store
	metrics MetricsRecorder
	tracer  Tracer
	clock   func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithMetricsRecorder attaches a metrics sink to the service.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer attaches a tracer to the service.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) { s.tracer = tracer }
}

// WithClock overrides the service clock, for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

// NewService constructs a service backed by the supplied store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() Store { return s.store }

func (s *Service) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	start := s.clock()
	err := fn(ctx)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, s.clock().Sub(start))
	}
	return err
}

// SaveConfig renders the configuration and upserts it under name.
func (s *Service) SaveConfig(ctx context.Context, name, description string, cfg *simconfig.Config) (Record, error) {
	var stored Record
	err := s.instrument(ctx, "save_config", func(ctx context.Context) error {
		if cfg == nil {
			return fmt.Errorf("configuration required")
		}
		var err error
		stored, err = s.store.Put(ctx, Record{
			Name:        name,
			Description: description,
			XML:         cfg.GenerateXML(),
		})
		return err
	})
	return stored, err
}

// GetRecord returns the raw stored record.
func (s *Service) GetRecord(ctx context.Context, name string) (Record, error) {
	var record Record
	err := s.instrument(ctx, "get_record", func(ctx context.Context) error {
		var err error
		record, err = s.store.Get(ctx, name)
		return err
	})
	return record, err
}

// LoadConfig fetches the named record and parses it back into a builder.
func (s *Service) LoadConfig(ctx context.Context, name string) (*simconfig.Config, error) {
	var cfg *simconfig.Config
	err := s.instrument(ctx, "load_config", func(ctx context.Context) error {
		record, err := s.store.Get(ctx, name)
		if err != nil {
			return err
		}
		loaded := simconfig.New()
		if err := loaded.LoadXML(bytes.NewReader(record.XML)); err != nil {
			return fmt.Errorf("parse stored document %s: %w", name, err)
		}
		cfg = loaded
		return nil
	})
	return cfg, err
}

// ListConfigs returns every stored record sorted by name.
func (s *Service) ListConfigs(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.instrument(ctx, "list_configs", func(ctx context.Context) error {
		var err error
		records, err = s.store.List(ctx)
		return err
	})
	return records, err
}

// DeleteConfig removes the named record.
func (s *Service) DeleteConfig(ctx context.Context, name string) error {
	return s.instrument(ctx, "delete_config", func(ctx context.Context) error {
		return s.store.Delete(ctx, name)
	})
}
