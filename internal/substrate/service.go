package substrate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"solace/internal/alerts"
	"solace/internal/delivery"
	"solace/internal/storage"
)

// Config controls the substrate service.
type Config struct {
	Timezone   string // IANA TZ, e.g. "America/Chicago"
	QueueSize  int
	RatePerSec int
}

// Service is a durable alerts.Store backed by a cron engine. It is safe for
// concurrent use; identifiers are disjoint per alert so concurrent adds need
// no coordination beyond the internal mutex.
type Service struct {
	mu sync.Mutex

	log     *slog.Logger
	cfg     Config
	loc     *time.Location
	store   storage.Store // durable mirror, may be nil
	adapter delivery.Adapter

	c       *cron.Cron
	entries map[string]cron.EntryID
	pending map[string]alerts.PendingAlert

	queue   chan alerts.PendingAlert
	stopCh  chan struct{}
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

// New builds the substrate. store may be nil (no durability); adapter is
// required. log may be nil.
func New(cfg Config, store storage.Store, adapter delivery.Adapter, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	return &Service{
		log:     log,
		cfg:     cfg,
		store:   store,
		adapter: adapter,
		entries: map[string]cron.EntryID{},
		pending: map[string]alerts.PendingAlert{},
	}
}

// Start loads the durable pending set, registers its cron entries, and runs
// the delivery worker. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return nil
	}

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	s.stopCh = make(chan struct{})
	s.queue = make(chan alerts.PendingAlert, s.cfg.QueueSize)
	s.limiter = rate.NewLimiter(rate.Limit(s.cfg.RatePerSec), s.cfg.RatePerSec)
	s.loc = s.loadLocationLocked()
	s.c = cron.New(cron.WithLocation(s.loc))

	for id, alert := range s.pending {
		if err := s.registerLocked(id, alert); err != nil {
			s.log.Warn("pending alert did not register", slog.String("identifier", id), slog.Any("err", err))
		}
	}

	// The worker gets its channels as arguments: Stop nils the fields under
	// the lock, and the goroutine may not have run by then.
	s.wg.Add(1)
	go s.worker(ctx, s.queue, s.stopCh, s.limiter)
	s.c.Start()
	s.log.Info("notification substrate started",
		slog.Int("pending", len(s.pending)),
		slog.String("tz", s.loc.String()))
	return nil
}

// Stop halts the cron engine and the delivery worker. Pending alerts stay
// persisted for the next Start.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.stopCh = nil
	s.queue = nil
	c := s.c
	s.c = nil
	s.entries = map[string]cron.EntryID{}
	s.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	s.wg.Wait()
	s.log.Info("notification substrate stopped")
}

// Add registers a pending alert, replacing any alert already registered
// under the same identifier.
func (s *Service) Add(ctx context.Context, identifier string, trigger alerts.TriggerSpec, content alerts.Content) error {
	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("identifier required")
	}
	if err := validateTrigger(trigger); err != nil {
		return err
	}
	alert := alerts.PendingAlert{Identifier: identifier, Trigger: trigger, Content: content}

	// Durability first: a registered entry without a row would vanish on
	// restart, the reverse just re-registers.
	if s.store != nil {
		row, err := marshalRow(alert)
		if err != nil {
			return err
		}
		if err := s.store.PutPending(ctx, row); err != nil {
			return fmt.Errorf("persist pending alert: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.unregisterLocked(identifier)
	s.pending[identifier] = alert
	if s.c == nil {
		// Not started yet: the entry registers on Start.
		return nil
	}
	return s.registerLocked(identifier, alert)
}

// Remove drops the given identifiers. Unknown identifiers are ignored.
func (s *Service) Remove(ctx context.Context, identifiers []string) error {
	if s.store != nil {
		if err := s.store.DeletePending(ctx, identifiers); err != nil {
			return fmt.Errorf("delete pending alerts: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range identifiers {
		s.unregisterLocked(id)
		delete(s.pending, id)
	}
	return nil
}

// Pending returns a point-in-time snapshot sorted by identifier.
func (s *Service) Pending(ctx context.Context) ([]alerts.PendingAlert, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]alerts.PendingAlert, 0, len(s.pending))
	for _, alert := range s.pending {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

func (s *Service) registerLocked(identifier string, alert alerts.PendingAlert) error {
	spec, err := cronSpec(alert.Trigger)
	if err != nil {
		return err
	}
	eid, err := s.c.AddFunc(spec, func() { s.enqueue(alert) })
	if err != nil {
		return err
	}
	s.entries[identifier] = eid
	s.log.Debug("alert registered",
		slog.String("identifier", identifier),
		slog.String("spec", spec))
	return nil
}

func (s *Service) unregisterLocked(identifier string) {
	if eid, ok := s.entries[identifier]; ok {
		if s.c != nil {
			s.c.Remove(eid)
		}
		delete(s.entries, identifier)
	}
}

// loadLocked rebuilds the in-memory pending set from storage. Rows that no
// longer unmarshal are dropped rather than wedging startup. Call with s.mu
// held.
func (s *Service) loadLocked(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	rows, err := s.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("load pending alerts: %w", err)
	}
	for _, row := range rows {
		alert, err := unmarshalRow(row)
		if err != nil {
			s.log.Warn("pending row unreadable, dropping",
				slog.String("identifier", row.Identifier), slog.Any("err", err))
			_ = s.store.DeletePending(ctx, []string{row.Identifier})
			continue
		}
		s.pending[row.Identifier] = alert
	}
	return nil
}

func (s *Service) enqueue(alert alerts.PendingAlert) {
	s.mu.Lock()
	queue := s.queue
	s.mu.Unlock()
	if queue == nil {
		return
	}
	select {
	case queue <- alert:
	default:
		s.log.Warn("delivery queue full, dropping alert", slog.String("identifier", alert.Identifier))
	}
}

func (s *Service) worker(ctx context.Context, queue chan alerts.PendingAlert, stop chan struct{}, limiter *rate.Limiter) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case alert := <-queue:
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			if err := s.adapter.Deliver(ctx, alert); err != nil {
				s.log.Warn("alert delivery failed",
					slog.String("identifier", alert.Identifier), slog.Any("err", err))
				continue
			}
			s.log.Debug("alert delivered", slog.String("identifier", alert.Identifier))
		}
	}
}

func (s *Service) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone, falling back to Local", slog.String("tz", tz), slog.Any("err", err))
		return time.Local
	}
	return loc
}

func marshalRow(alert alerts.PendingAlert) (storage.PendingRow, error) {
	trigger, err := json.Marshal(alert.Trigger)
	if err != nil {
		return storage.PendingRow{}, err
	}
	content, err := json.Marshal(alert.Content)
	if err != nil {
		return storage.PendingRow{}, err
	}
	return storage.PendingRow{Identifier: alert.Identifier, Trigger: trigger, Content: content}, nil
}

func unmarshalRow(row storage.PendingRow) (alerts.PendingAlert, error) {
	alert := alerts.PendingAlert{Identifier: row.Identifier}
	if err := json.Unmarshal(row.Trigger, &alert.Trigger); err != nil {
		return alerts.PendingAlert{}, err
	}
	if err := json.Unmarshal(row.Content, &alert.Content); err != nil {
		return alerts.PendingAlert{}, err
	}
	return alert, nil
}
