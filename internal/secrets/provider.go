package secrets

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Source fetches the JWT signing secret from an external store.
type Source interface {
	FetchSecret(ctx context.Context) (string, error)
}

// CachedProvider fetches the secret once at startup and refreshes it on an
// interval, keeping the last-known-good value when a refresh fails.
type CachedProvider struct {
	source   Source
	logger   *zap.Logger
	interval time.Duration

	mu      sync.RWMutex
	current []byte

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCachedProvider performs the initial fetch and starts the refresh loop.
// It fails when no secret can be obtained at startup.
func NewCachedProvider(ctx context.Context, source Source, interval time.Duration, logger *zap.Logger) (*CachedProvider, error) {
	secret, err := source.FetchSecret(ctx)
	if err != nil {
		return nil, err
	}
	if secret == "" {
		return nil, errors.New("secret source returned empty secret")
	}

	p := &CachedProvider{
		source:   source,
		logger:   logger,
		interval: interval,
		current:  []byte(secret),
		stop:     make(chan struct{}),
	}
	go p.refreshLoop()
	return p, nil
}

// Current returns the cached signing secret.
func (p *CachedProvider) Current() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Close stops the background refresh loop.
func (p *CachedProvider) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *CachedProvider) refreshLoop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.refresh()
		}
	}
}

func (p *CachedProvider) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	secret, err := p.source.FetchSecret(ctx)
	if err != nil || secret == "" {
		// keep serving the last-known-good value
		p.logger.Warn("secret refresh failed", zap.Error(err))
		return
	}

	p.mu.Lock()
	p.current = []byte(secret)
	p.mu.Unlock()
}
