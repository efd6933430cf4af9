package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/turmas-api/internal/models"
	"github.com/noah-isme/turmas-api/internal/storage"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a uniqueness rule checked at write time was violated.
	ErrConflict = errors.New("record conflicts with an existing one")
	// ErrCapacityReached indicates a class has no free seats left.
	ErrCapacityReached = errors.New("class capacity reached")
)

type entity[T any] interface {
	*T
	Meta() *models.Base
}

// collectionRepo implements the CRUD cycle shared by every entity repository:
// read the whole collection, mutate it in memory, write it back.
type collectionRepo[T any, P entity[T]] struct {
	col *storage.Collection[T]
	now func() time.Time
}

func newCollectionRepo[T any, P entity[T]](col *storage.Collection[T], now func() time.Time) collectionRepo[T, P] {
	return collectionRepo[T, P]{col: col, now: now}
}

func (r collectionRepo[T, P]) list(ctx context.Context) []T {
	return r.col.List(ctx)
}

func (r collectionRepo[T, P]) filter(ctx context.Context, keep func(T) bool) []T {
	items := r.col.List(ctx)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func (r collectionRepo[T, P]) get(ctx context.Context, id string) (T, error) {
	for _, item := range r.col.List(ctx) {
		if P(&item).Meta().ID == id {
			return item, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func (r collectionRepo[T, P]) create(ctx context.Context, item T) (T, error) {
	return r.createChecked(ctx, item, nil)
}

// createChecked stamps and appends item; check runs inside the critical section
// against the current collection and may veto the insert.
func (r collectionRepo[T, P]) createChecked(ctx context.Context, item T, check func(items []T) error) (T, error) {
	now := r.now().UTC()
	meta := P(&item).Meta()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	meta.CreatedAt = now
	meta.UpdatedAt = now

	err := r.col.Mutate(ctx, func(items []T) ([]T, error) {
		if check != nil {
			if err := check(items); err != nil {
				return nil, err
			}
		}
		return append(items, item), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// update applies fn to the record with id and stamps UpdatedAt strictly after its
// previous value. fn may inspect the whole collection and veto the change.
func (r collectionRepo[T, P]) update(ctx context.Context, id string, fn func(item *T, all []T) error) (T, error) {
	var updated T
	err := r.col.Mutate(ctx, func(items []T) ([]T, error) {
		for i := range items {
			meta := P(&items[i]).Meta()
			if meta.ID != id {
				continue
			}
			if err := fn(&items[i], items); err != nil {
				return nil, err
			}
			meta.UpdatedAt = r.stamp(meta.UpdatedAt)
			updated = items[i]
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

func (r collectionRepo[T, P]) stamp(previous time.Time) time.Time {
	now := r.now().UTC()
	if !now.After(previous) {
		now = previous.Add(time.Microsecond)
	}
	return now
}

// remove deletes id. Deleting an absent id succeeds.
func (r collectionRepo[T, P]) remove(ctx context.Context, id string) error {
	_, err := r.removeWhere(ctx, func(item T) bool { return P(&item).Meta().ID == id })
	return err
}

func (r collectionRepo[T, P]) removeWhere(ctx context.Context, drop func(T) bool) (int, error) {
	removed := 0
	err := r.col.Mutate(ctx, func(items []T) ([]T, error) {
		removed = 0
		kept := items[:0]
		for _, item := range items {
			if drop(item) {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		return kept, nil
	})
	return removed, err
}
