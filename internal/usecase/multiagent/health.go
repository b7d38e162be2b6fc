package multiagent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lokit-s/A2A-protocol/internal/domain"
)

const probeTimeout = 5 * time.Second

// HealthProber sweeps the directory on a fixed schedule, fetching each
// agent's card to decide whether it is reachable. The snapshot is
// advisory: routing never consults it, a command to an offline agent just
// fails at dispatch time.
type HealthProber struct {
	directory *Directory
	logger    *slog.Logger
	cron      *cron.Cron

	mu       sync.RWMutex
	statuses map[string]domain.AgentHealth
}

// NewHealthProber creates a prober over the directory.
func NewHealthProber(directory *Directory, logger *slog.Logger) *HealthProber {
	return &HealthProber{
		directory: directory,
		logger:    logger,
		statuses:  make(map[string]domain.AgentHealth),
	}
}

// Start runs one immediate sweep, then repeats every interval until Stop.
func (p *HealthProber) Start(ctx context.Context, interval time.Duration) error {
	p.sweep(ctx)

	p.cron = cron.New()
	_, err := p.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), probeTimeout*2)
		defer cancel()
		p.sweep(sweepCtx)
	})
	if err != nil {
		return fmt.Errorf("schedule health sweep: %w", err)
	}
	p.cron.Start()
	return nil
}

// Stop halts the sweep schedule and waits for a running sweep to finish.
func (p *HealthProber) Stop() {
	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
}

func (p *HealthProber) sweep(ctx context.Context) {
	for _, entry := range p.directory.List() {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		_, err := entry.Client.FetchCard(probeCtx)
		cancel()

		online := err == nil
		p.mu.Lock()
		prev, known := p.statuses[entry.Name]
		p.statuses[entry.Name] = domain.AgentHealth{
			Name:      entry.Name,
			URL:       entry.URL,
			Online:    online,
			CheckedAt: time.Now().UTC(),
		}
		p.mu.Unlock()

		if !known || prev.Online != online {
			if online {
				p.logger.Info("agent online", "agent", entry.Name, "url", entry.URL)
			} else {
				p.logger.Warn("agent offline", "agent", entry.Name, "url", entry.URL, "error", err)
			}
		}
	}
}

// Snapshot returns the latest health per agent, ordered by name.
func (p *HealthProber) Snapshot() []domain.AgentHealth {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]domain.AgentHealth, 0, len(p.statuses))
	for _, name := range p.directory.Names() {
		if h, ok := p.statuses[name]; ok {
			out = append(out, h)
		}
	}
	return out
}
