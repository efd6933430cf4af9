package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/turmas-api/internal/kvstore"
)

// ErrSerialization reports a value that could not be encoded for, or decoded from, the store.
var ErrSerialization = errors.New("serialization error")

// Collection is a whole-array JSON document stored under a single key.
// Mutations are serialised per key through the shared Locker.
type Collection[T any] struct {
	store  kvstore.Store
	locker *Locker
	key    string
	schema *jsonschema.Schema
	logger zerolog.Logger
}

// NewCollection binds a collection to key. schema may be nil.
func NewCollection[T any](store kvstore.Store, locker *Locker, key string, schema *jsonschema.Schema, logger zerolog.Logger) *Collection[T] {
	return &Collection[T]{
		store:  store,
		locker: locker,
		key:    key,
		schema: schema,
		logger: logger.With().Str("component", "collection").Str("key", key).Logger(),
	}
}

// Key returns the backing store key.
func (c *Collection[T]) Key() string { return c.key }

// Load reads the whole collection. Store failures are returned; an absent key, malformed
// JSON or a document violating the schema all read as an empty collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	items, err := c.loadStrict(ctx)
	if errors.Is(err, ErrSerialization) {
		c.logger.Warn().Err(err).Msg("discarding unreadable collection")
		return []T{}, nil
	}
	return items, err
}

// loadStrict is the read used by mutations. Unreadable content is reported as
// ErrSerialization so a write never replaces records it could not decode.
func (c *Collection[T]) loadStrict(ctx context.Context) ([]T, error) {
	raw, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return []T{}, nil
	}

	items, err := decode[[]T](raw, c.schema)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// List is the lenient read used by queries: any failure yields an empty collection.
func (c *Collection[T]) List(ctx context.Context) []T {
	items, err := c.Load(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("collection read failed")
		return []T{}
	}
	return items
}

// Mutate runs a read-modify-write cycle under the key's lock. If fn returns an error
// nothing is written and the error is returned unchanged. Stored content that cannot be
// decoded fails with ErrSerialization and is left untouched.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	unlock := c.locker.Lock(c.key)
	defer unlock()

	return c.Apply(ctx, fn)
}

// Apply is Mutate without locking. The caller must hold the key's lock, typically
// through Locker.LockAll for a multi-collection batch.
func (c *Collection[T]) Apply(ctx context.Context, fn func(items []T) ([]T, error)) error {
	items, err := c.loadStrict(ctx)
	if err != nil {
		return err
	}

	updated, err := fn(items)
	if err != nil {
		return err
	}

	return c.save(ctx, updated)
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrSerialization, c.key, err)
	}
	return c.store.Set(ctx, c.key, string(payload))
}

// Document is a single JSON object stored under a key, such as the session.
type Document[T any] struct {
	store  kvstore.Store
	locker *Locker
	key    string
	schema *jsonschema.Schema
	logger zerolog.Logger
}

// NewDocument binds a singleton document to key. schema may be nil.
func NewDocument[T any](store kvstore.Store, locker *Locker, key string, schema *jsonschema.Schema, logger zerolog.Logger) *Document[T] {
	return &Document[T]{
		store:  store,
		locker: locker,
		key:    key,
		schema: schema,
		logger: logger.With().Str("component", "document").Str("key", key).Logger(),
	}
}

// Get returns nil when the key is absent or its content unreadable.
func (d *Document[T]) Get(ctx context.Context) (*T, error) {
	raw, found, err := d.store.Get(ctx, d.key)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return nil, nil
	}

	value, err := decode[T](raw, d.schema)
	if err != nil {
		d.logger.Warn().Err(err).Msg("discarding unreadable document")
		return nil, nil
	}
	return &value, nil
}

// Put replaces the document.
func (d *Document[T]) Put(ctx context.Context, value T) error {
	unlock := d.locker.Lock(d.key)
	defer unlock()

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrSerialization, d.key, err)
	}
	return d.store.Set(ctx, d.key, string(payload))
}

// Update replaces the document with fn's result under the key's lock. fn receives nil
// when no document exists; returning nil removes the document.
func (d *Document[T]) Update(ctx context.Context, fn func(current *T) (*T, error)) error {
	unlock := d.locker.Lock(d.key)
	defer unlock()

	current, err := d.Get(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return d.store.Remove(ctx, d.key)
	}

	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrSerialization, d.key, err)
	}
	return d.store.Set(ctx, d.key, string(payload))
}

// Delete removes the document. Deleting an absent document is not an error.
func (d *Document[T]) Delete(ctx context.Context) error {
	unlock := d.locker.Lock(d.key)
	defer unlock()

	return d.store.Remove(ctx, d.key)
}

func decode[V any](raw string, schema *jsonschema.Schema) (V, error) {
	var value V
	if schema != nil {
		var generic any
		if err := json.Unmarshal([]byte(raw), &generic); err != nil {
			return value, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		if err := schema.Validate(generic); err != nil {
			return value, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
	}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return value, nil
}
