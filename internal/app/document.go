package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"daily-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// DocumentStore abstracts where the catalog and ledger documents live (files, Redis, Postgres, memory).
// Load returns domain.ErrDocumentNotFound when nothing was saved under name.
type DocumentStore interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// document owns one decoded document in memory. Every read and every
// load-modify-save cycle runs under mu, so writers to the same document never interleave.
type document[T any] struct {
	name   string
	store  DocumentStore
	logger *zap.Logger
	empty  func() T
	fixup  func(T)

	mu     sync.Mutex
	loaded bool
	value  T
}

func newDocument[T any](name string, store DocumentStore, logger *zap.Logger, empty func() T, fixup func(T)) *document[T] {
	return &document[T]{name: name, store: store, logger: logger, empty: empty, fixup: fixup}
}

// view runs fn against the current value. fn must not retain or mutate it.
func (d *document[T]) view(ctx context.Context, fn func(T)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	fn(d.value)
	return nil
}

// update runs fn against the current value and saves it when fn reports a change.
// If the save fails the in-memory copy is dropped and reloaded on next use.
func (d *document[T]) update(ctx context.Context, fn func(*T) (bool, error)) error {
	return d.updateThen(ctx, fn, nil)
}

// updateThen is update with a commit hook. committed runs while the document is
// still locked, once fn succeeded and any change is saved.
func (d *document[T]) updateThen(ctx context.Context, fn func(*T) (bool, error), committed func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	changed, err := fn(&d.value)
	if err != nil {
		return err
	}
	if !changed {
		if committed != nil {
			committed()
		}
		return nil
	}
	data, err := encodeDocument(d.value)
	if err != nil {
		d.loaded = false
		return fmt.Errorf("encode %s: %w", d.name, err)
	}
	if err := d.store.Save(ctx, d.name, data); err != nil {
		d.loaded = false
		d.logger.Error("document save failed", zap.String("document", d.name), zap.Error(err))
		return fmt.Errorf("save %s: %w", d.name, err)
	}
	if committed != nil {
		committed()
	}
	return nil
}

func (d *document[T]) ensureLoadedLocked(ctx context.Context) error {
	if d.loaded {
		return nil
	}
	raw, err := d.store.Load(ctx, d.name)
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		d.value = d.empty()
	case err != nil:
		return fmt.Errorf("load %s: %w", d.name, err)
	default:
		d.value = d.decode(raw)
	}
	if d.fixup != nil {
		d.fixup(d.value)
	}
	d.loaded = true
	return nil
}

// decode never fails: unreadable content counts as an empty document.
func (d *document[T]) decode(raw []byte) T {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return d.empty()
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		d.logger.Warn("treating document as empty",
			zap.String("document", d.name),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrCorruptStore, err)),
		)
		return d.empty()
	}
	return v
}

// encodeDocument writes indented JSON without HTML escaping, newline terminated.
func encodeDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
