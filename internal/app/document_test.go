package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"daily-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type brokenStore struct {
	loadErr error
	saveErr error
	loads   int
}

func (s *brokenStore) Load(context.Context, string) ([]byte, error) {
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return []byte(`{"2024-03-10": {"7": ["AI"]}}`), nil
}

func (s *brokenStore) Save(context.Context, string, []byte) error {
	return s.saveErr
}

func newLedgerDoc(store DocumentStore) *document[domain.Ledger] {
	return newDocument("ledger", store, zap.NewNop(), func() domain.Ledger { return domain.Ledger{} }, nil)
}

func TestDocumentReloadsAfterFailedSave(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{saveErr: errors.New("read-only")}
	doc := newLedgerDoc(store)

	err := doc.update(ctx, func(l *domain.Ledger) (bool, error) {
		return l.Add("2024-03-10", "9", "AI"), nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.saveErr)

	var has bool
	require.NoError(t, doc.view(ctx, func(l domain.Ledger) { has = l.Has("2024-03-10", "9", "AI") }))
	assert.False(t, has, "unsaved change is dropped")
	assert.Equal(t, 2, store.loads)
}

func TestDocumentSkipsSaveWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{saveErr: errors.New("must not save")}
	doc := newLedgerDoc(store)

	err := doc.update(ctx, func(l *domain.Ledger) (bool, error) {
		return l.Add("2024-03-10", "7", "AI"), nil
	})
	assert.NoError(t, err)
}

func TestDocumentPropagatesLoadErrors(t *testing.T) {
	store := &brokenStore{loadErr: errors.New("connection refused")}
	doc := newLedgerDoc(store)

	err := doc.view(context.Background(), func(domain.Ledger) {})
	assert.ErrorIs(t, err, store.loadErr)
}

func TestDocumentDecodesNullAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := mapStore{"ledger": []byte("null\n")}
	doc := newLedgerDoc(store)

	require.NoError(t, doc.update(ctx, func(l *domain.Ledger) (bool, error) {
		return l.Add("2024-03-10", "7", "AI"), nil
	}))
	assert.JSONEq(t, `{"2024-03-10": {"7": ["AI"]}}`, string(store["ledger"]))
}

func TestEncodeDocumentFormatting(t *testing.T) {
	data, err := encodeDocument(map[string]string{"q": "a < b & c"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"q\": \"a < b & c\"\n}\n", string(data))
}
