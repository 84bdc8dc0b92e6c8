// Package heads manages the user-defined category list ("heads") used to
// populate selection dropdowns. The registry is advisory: transactions
// store category as a free string, so heads are never enforced on them.
package heads

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/ledger"
	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/store"
)

type Registry struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewRegistry(st store.Store, log zerolog.Logger) *Registry {
	return &Registry{store: st, log: log, now: time.Now}
}

// List returns heads filtered by side, ordered alphabetically by name.
// An empty side returns every head.
func (r *Registry) List(ctx context.Context, side string) ([]models.CategoryHead, error) {
	docs, err := r.store.List(ctx, store.FinanceHeads, store.ListOptions{})
	if err != nil {
		return nil, err
	}

	heads := make([]models.CategoryHead, 0, len(docs))
	for _, doc := range docs {
		head := ledger.DecodeHead(doc)
		if side != "" && head.Type != side {
			continue
		}
		heads = append(heads, head)
	}

	sort.SliceStable(heads, func(i, j int) bool {
		return strings.ToLower(heads[i].Name) < strings.ToLower(heads[j].Name)
	})
	return heads, nil
}

// Add validates and persists a new head. Blank names are rejected before
// any write; the type must be a ledger side.
func (r *Registry) Add(ctx context.Context, name, side string) (models.CategoryHead, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CategoryHead{}, models.NewValidationError("name", "head name is required")
	}
	if side != models.SideIncome && side != models.SideExpense {
		return models.CategoryHead{}, models.NewValidationError("type", "type must be income or expense")
	}

	head := models.CategoryHead{
		Name:      name,
		Type:      side,
		CreatedAt: r.now(),
	}
	id, err := r.store.Create(ctx, store.FinanceHeads, store.Document{
		"name":       head.Name,
		"type":       head.Type,
		"created_at": head.CreatedAt,
	})
	if err != nil {
		return models.CategoryHead{}, err
	}
	head.ID = id

	r.log.Info().Str("head", head.Name).Str("type", head.Type).Msg("category head added")
	return head, nil
}

// Delete removes a head. Transactions referencing the head's name keep
// their stored category string untouched; only future selection lists
// change.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, store.FinanceHeads, id); err != nil {
		return err
	}
	r.log.Info().Str("id", id).Msg("category head deleted")
	return nil
}
