// Package export renders stored configurations into deployable artifacts
// (the XML document, the rule table) and uploads them to blob storage
// asynchronously.
package export

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"simconfig/internal/blob"
	"simconfig/pkg/simconfig"
)

// Format names an artifact kind a job can produce.
type Format string

const (
	FormatXML      Format = "xml"       // the full configuration document
	FormatRulesCSV Format = "rules-csv" // the behavior-rule table
)

// Status describes the lifecycle stage of an export job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact captures one stored output of a completed job.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks an export job and its resulting artifacts.
type Record struct {
	ID          string     `json:"id"`
	ConfigName  string     `json:"config_name"`
	Formats     []Format   `json:"formats"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	RequestedBy string     `json:"requested_by"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (r Record) copy() Record {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]Artifact(nil), r.Artifacts...)
	}
	return dup
}

// Input represents an enqueue request for the worker.
type Input struct {
	ConfigName  string
	Formats     []Format
	RequestedBy string
	Reason      string
}

// ConfigSource resolves configuration names to parsed builders. The catalog
// service satisfies it.
type ConfigSource interface {
	LoadConfig(ctx context.Context, name string) (*simconfig.Config, error)
}

// AuditLogger records export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures audit trail metadata for exports.
type AuditEntry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	ConfigName string         `json:"config_name"`
	Status     Status         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Worker executes export jobs asynchronously.
type Worker struct {
	source ConfigSource
	store  blob.Store
	audit  AuditLogger

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id    string
	input Input
}

// NewWorker constructs an export worker.
func NewWorker(source ConfigSource, store blob.Store, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		source: source,
		store:  store,
		audit:  audit,
		queue:  make(chan task, 32),
		jobs:   make(map[string]*Record),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue schedules an export job and returns the queued record.
func (w *Worker) Enqueue(ctx context.Context, input Input) (Record, error) {
	if w.source == nil {
		return Record{}, fmt.Errorf("config source not configured")
	}
	if strings.TrimSpace(input.ConfigName) == "" {
		return Record{}, fmt.Errorf("config name required")
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatXML}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{})
	for _, format := range formats {
		if _, duplicate := seen[format]; duplicate {
			continue
		}
		if format != FormatXML && format != FormatRulesCSV {
			return Record{}, fmt.Errorf("unsupported export format %s", format)
		}
		uniq = append(uniq, format)
		seen[format] = struct{}{}
	}

	id := newID()
	now := time.Now().UTC()
	record := Record{
		ID:          id,
		ConfigName:  input.ConfigName,
		Formats:     uniq,
		Status:      StatusQueued,
		RequestedBy: input.RequestedBy,
		Reason:      input.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queued := record.copy()
	w.mu.Unlock()

	w.recordAudit(ctx, input, StatusQueued, nil)

	select {
	case w.queue <- task{id: id, input: input}:
	default:
		return Record{}, fmt.Errorf("export queue full")
	}
	return queued, nil
}

// Get returns a snapshot of the export record.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(t task) {
	w.setStatus(t.id, StatusRunning, "")
	w.recordAudit(w.ctx, t.input, StatusRunning, nil)

	cfg, err := w.source.LoadConfig(w.ctx, t.input.ConfigName)
	if err != nil {
		w.fail(t, fmt.Sprintf("load config: %v", err))
		return
	}

	record, ok := w.Get(t.id)
	if !ok {
		return
	}
	artifacts := make([]Artifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		artifact, err := w.materialize(t, cfg, format)
		if err != nil {
			w.fail(t, err.Error())
			return
		}
		artifacts = append(artifacts, artifact)
	}
	w.complete(t, artifacts)
}

func (w *Worker) materialize(t task, cfg *simconfig.Config, format Format) (Artifact, error) {
	var payload []byte
	var contentType, filename string
	switch format {
	case FormatXML:
		payload = cfg.GenerateXML()
		contentType = "application/xml"
		filename = "settings.xml"
	case FormatRulesCSV:
		buf := &bytes.Buffer{}
		if err := cfg.Rules().WriteCSV(buf); err != nil {
			return Artifact{}, fmt.Errorf("render rule table: %w", err)
		}
		payload = buf.Bytes()
		contentType = "text/csv"
		filename = "rules.csv"
	default:
		return Artifact{}, fmt.Errorf("unsupported export format %s", format)
	}

	key := fmt.Sprintf("configs/%s/%s/%s", t.input.ConfigName, t.id, filename)
	info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"config": t.input.ConfigName, "job": t.id},
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("store artifact: %w", err)
	}
	url := info.URL
	if url == "" {
		if signed, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{}); err == nil {
			url = signed
		}
	}
	created := info.LastModified
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return Artifact{
		Key:         key,
		Format:      format,
		ContentType: contentType,
		SizeBytes:   info.Size,
		URL:         url,
		CreatedAt:   created,
	}, nil
}

func (w *Worker) setStatus(id string, status Status, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
	}
	w.mu.Unlock()
}

func (w *Worker) complete(t task, artifacts []Artifact) {
	w.recordAudit(w.ctx, t.input, StatusSucceeded, map[string]any{"artifacts": len(artifacts)})
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[t.id]; ok {
		record.Status = StatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
}

func (w *Worker) fail(t task, reason string) {
	w.recordAudit(w.ctx, t.input, StatusFailed, map[string]any{"error": reason})
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[t.id]; ok {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
}

func (w *Worker) recordAudit(ctx context.Context, input Input, status Status, metadata map[string]any) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, AuditEntry{
		ID:         newID(),
		Action:     "config_export",
		Actor:      input.RequestedBy,
		ConfigName: input.ConfigName,
		Status:     status,
		Reason:     input.Reason,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	})
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b[:])
}

// MemoryAuditLog captures audit entries in-memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of the recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
