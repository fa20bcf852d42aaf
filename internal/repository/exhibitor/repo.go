package exhibitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/elguarir/gitex-assistant/internal/db"
	"github.com/elguarir/gitex-assistant/internal/domain"
)

// store is the consumer interface for exhibitor records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists exhibitor profiles as hashes at gitex:exhibitor:<id>.
type Repo struct {
	store store
}

// New creates an exhibitor repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put writes a single exhibitor. Last write wins.
func (r *Repo) Put(ctx context.Context, e *domain.Exhibitor) error {
	fields, err := buildHashFields(e)
	if err != nil {
		return err
	}
	key := exhibitorKey(e.ID)
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// BulkPut writes a batch of exhibitors in one pipelined round trip.
func (r *Repo) BulkPut(ctx context.Context, exhibitors []domain.Exhibitor) error {
	if len(exhibitors) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(exhibitors))
	for i := range exhibitors {
		fields, err := buildHashFields(&exhibitors[i])
		if err != nil {
			return err
		}
		items = append(items, db.HashSetItem{Key: exhibitorKey(exhibitors[i].ID), Fields: fields})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi: %w", err)
	}
	return nil
}

// Get returns an exhibitor by id.
func (r *Repo) Get(ctx context.Context, id int64) (domain.Exhibitor, error) {
	key := exhibitorKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Exhibitor{}, domain.ErrNotFound
		}
		return domain.Exhibitor{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domain.Exhibitor{}, domain.ErrNotFound
	}
	return parseHashFields(id, m)
}

// GetMulti returns exhibitors for the given ids in one pipelined round
// trip. Ids without a record are skipped, output order follows input
// order of the ids that were found.
func (r *Repo) GetMulti(ctx context.Context, ids []int64) ([]domain.Exhibitor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = exhibitorKey(id)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	result := make([]domain.Exhibitor, 0, len(ids))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		e, err := parseHashFields(ids[i], m)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

// ListIDs enumerates all stored exhibitor ids via cursor SCAN.
func (r *Repo) ListIDs(ctx context.Context) ([]int64, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan %s*: %w", keyPrefix, err)
	}
	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		id, err := parseKeyID(key)
		if err != nil {
			// foreign keys under the prefix are skipped, not fatal
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
