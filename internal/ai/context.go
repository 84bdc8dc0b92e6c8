package ai

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/ledger"
	"github.com/idara-sms/schoolbooks-api/internal/report"
	"github.com/idara-sms/schoolbooks-api/internal/store"
)

// ContextTTL is the accepted staleness window for AI-context reads. A
// financial mutation made inside this window is not guaranteed to be
// reflected in the next AI answer. Do not remove this window silently;
// tightening it is a flagged behavior change.
const ContextTTL = 5 * time.Minute

// ContextProvider builds the data snapshot injected into AI prompts. It
// holds a single process-wide cache slot, not per-user and not invalidated
// by writes: it refreshes only when the TTL lapses or Invalidate is called.
type ContextProvider struct {
	ledger *ledger.Service
	store  store.Store
	log    zerolog.Logger

	mu        sync.Mutex
	value     report.AIContextData
	hasValue  bool
	expiresAt time.Time

	ttl time.Duration
	now func() time.Time
}

func NewContextProvider(svc *ledger.Service, st store.Store, log zerolog.Logger) *ContextProvider {
	return &ContextProvider{
		ledger: svc,
		store:  st,
		log:    log,
		ttl:    ContextTTL,
		now:    time.Now,
	}
}

// Context returns the cached context object, recomputing it when the slot
// is empty or expired.
func (p *ContextProvider) Context(ctx context.Context) (report.AIContextData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasValue && p.now().Before(p.expiresAt) {
		return p.value, nil
	}

	summary, err := p.ledger.Summary(ctx)
	if err != nil {
		return report.AIContextData{}, err
	}

	counts := map[string]int{}
	for _, collection := range []string{store.Students, store.Teachers, store.Classes} {
		n, err := p.store.Count(ctx, collection)
		if err != nil {
			// Counts are best effort; the finance block is what matters.
			p.log.Warn().Err(err).Str("collection", collection).Msg("count unavailable for ai context")
			continue
		}
		counts[collection] = n
	}

	p.value = report.AIContext(summary, counts, p.now())
	p.hasValue = true
	p.expiresAt = p.now().Add(p.ttl)
	return p.value, nil
}

// Invalidate clears the cache slot so the next read recomputes.
func (p *ContextProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hasValue = false
}
