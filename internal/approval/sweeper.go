package approval

import (
	"log/slog"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// SweeperConfig controls sweeper runtime behavior.
type SweeperConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Sweeper periodically expires pending approval requests whose TTL has
// elapsed, so a request filed for an abandoned action cannot be
// approved long after the fact.
type Sweeper struct {
	cfg     SweeperConfig
	service *Service

	mu      sync.Mutex
	stopCh  chan struct{}
	stopped chan struct{}
	running bool
}

// NewSweeper creates a sweeper over the given approval service.
func NewSweeper(cfg SweeperConfig, service *Service) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	return &Sweeper{
		cfg:     cfg,
		service: service,
	}
}

// IsRunning returns true when the sweep loop is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the periodic sweep loop.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.cfg.Enabled {
		slog.Info("approval sweeper disabled")
		return nil
	}

	s.stopCh = make(chan struct{})
	s.stopped = make(chan struct{})
	s.running = true

	go s.loop(s.stopCh, s.stopped)
	slog.Info("approval sweeper started", "interval", s.cfg.Interval.String())
	return nil
}

// Stop halts the periodic sweep loop.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stopCh := s.stopCh
	stopped := s.stopped
	s.running = false
	s.stopCh = nil
	s.stopped = nil
	s.mu.Unlock()

	close(stopCh)
	<-stopped
	slog.Info("approval sweeper stopped")
}

func (s *Sweeper) loop(stopCh <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if _, err := s.RunOnce(); err != nil {
				slog.Warn("approval sweep failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single sweep and returns how many requests it
// expired.
func (s *Sweeper) RunOnce() (int, error) {
	expired, err := s.service.ExpirePending()
	if err != nil {
		return 0, err
	}
	for _, req := range expired {
		slog.Info("approval request expired",
			"id", req.ID,
			"action", req.Action,
			"requested_at", req.RequestedAt,
		)
	}
	return len(expired), nil
}
