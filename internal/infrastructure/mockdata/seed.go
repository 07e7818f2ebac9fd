package mockdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/infrastructure/kvstore"
	"github.com/bizconsole/backend/internal/infrastructure/persistence/crmstore"
	"go.uber.org/zap"
)

// DefaultCounts is the dataset size used when none is configured
var DefaultCounts = Counts{Customers: 50, Leads: 40, Opportunities: 60, Activities: 120}

// SeedOptions controls Seed
type SeedOptions struct {
	Seed   uint64
	Counts Counts
	// Force overwrites keys that already hold data
	Force bool
	Now   time.Time
}

// SeedResult reports how many records were written per key. Keys that were
// skipped because they already held data are listed in Skipped.
type SeedResult struct {
	Written map[string]int
	Skipped []string
}

// Seed generates a dataset and writes it under the CRM keys. A key that
// already holds a non-empty array is left alone unless opts.Force is set.
func Seed(ctx context.Context, store kvstore.Store, opts SeedOptions, log *zap.Logger) (*SeedResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	ds := NewGenerator(opts.Seed, opts.Now).Generate(opts.Counts)

	res := &SeedResult{Written: make(map[string]int)}
	writers := []struct {
		key   string
		count int
		save  func() error
	}{
		{crm.KeyCustomers, len(ds.Customers), func() error {
			return crmstore.NewCustomerRepository(store).SaveAll(ctx, ds.Customers)
		}},
		{crm.KeyLeads, len(ds.Leads), func() error {
			return crmstore.NewLeadRepository(store).SaveAll(ctx, ds.Leads)
		}},
		{crm.KeyOpportunities, len(ds.Opportunities), func() error {
			return crmstore.NewOpportunityRepository(store).SaveAll(ctx, ds.Opportunities)
		}},
		{crm.KeyActivities, len(ds.Activities), func() error {
			return crmstore.NewActivityRepository(store).SaveAll(ctx, ds.Activities)
		}},
	}

	for _, w := range writers {
		if !opts.Force {
			empty, err := isEmpty(ctx, store, w.key)
			if err != nil {
				return nil, err
			}
			if !empty {
				res.Skipped = append(res.Skipped, w.key)
				log.Info("seed skipped, key already populated", zap.String("key", w.key))
				continue
			}
		}
		if err := store.Delete(ctx, w.key); err != nil {
			return nil, fmt.Errorf("reset %s: %w", w.key, err)
		}
		if err := w.save(); err != nil {
			return nil, fmt.Errorf("seed %s: %w", w.key, err)
		}
		res.Written[w.key] = w.count
		log.Info("seeded", zap.String("key", w.key), zap.Int("count", w.count))
	}
	return res, nil
}

func isEmpty(ctx context.Context, store kvstore.Store, key string) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	switch string(raw) {
	case "", "null", "[]":
		return true, nil
	}
	return false, nil
}
