package session

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamadeu/divi-import/internal/commit"
	"github.com/tamadeu/divi-import/internal/directory"
	"github.com/tamadeu/divi-import/internal/model"
	"github.com/tamadeu/divi-import/internal/staging"
)

type fakeStore struct {
	inserted  []model.TransactionRecord
	deltas    map[string]decimal.Decimal
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{deltas: make(map[string]decimal.Decimal)}
}

func (f *fakeStore) InsertTransactions(ctx context.Context, records []model.TransactionRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, records...)
	return nil
}

func (f *fakeStore) AddToBalance(ctx context.Context, accountID string, delta decimal.Decimal) error {
	f.deltas[accountID] = f.deltas[accountID].Add(delta)
	return nil
}

func (f *fakeStore) ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func testDirectory() *directory.Directory {
	return directory.New(
		[]model.Account{{ID: "acc-1", Name: "Conta Corrente", Balance: decimal.NewFromInt(1000)}},
		[]model.Category{
			{ID: "cat-sal", Name: "Salário", Kind: model.KindIncome},
			{ID: "cat-lazer", Name: "Lazer", Kind: model.KindExpense},
		},
	)
}

func testStaging(t *testing.T) *staging.Store {
	t.Helper()
	return staging.NewStore(filepath.Join(t.TempDir(), "staged.json"), zerolog.New(io.Discard))
}

func batchWithMissing() *model.ImportBatch {
	return &model.ImportBatch{
		Transactions: []model.Transaction{
			{
				Name:             "Netflix",
				Amount:           decimal.RequireFromString("-39.90"),
				Date:             time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
				Kind:             model.KindExpense,
				OriginalCategory: "Assinaturas",
				AccountID:        "acc-1",
				RowNumber:        2,
			},
		},
		MissingCategories: []model.MissingCategory{
			{Name: "Assinaturas", Kind: model.KindExpense},
		},
		BalanceProjections: map[string]decimal.Decimal{"acc-1": decimal.RequireFromString("960.10")},
		AccountID:          "acc-1",
		AccountName:        "Conta Corrente",
	}
}

func batchReady() *model.ImportBatch {
	b := batchWithMissing()
	b.Transactions[0].OriginalCategory = "Lazer"
	b.Transactions[0].ResolvedCategoryID = "cat-lazer"
	b.MissingCategories = nil
	return b
}

func TestStage_WithMissingCategories(t *testing.T) {
	s := New(testStaging(t), testDirectory(), zerolog.New(io.Discard))
	assert.Equal(t, StateUploaded, s.State())

	require.NoError(t, s.Stage(batchWithMissing()))
	assert.Equal(t, StateMapping, s.State())
}

func TestStage_FullyResolved(t *testing.T) {
	s := New(testStaging(t), testDirectory(), zerolog.New(io.Discard))

	require.NoError(t, s.Stage(batchReady()))
	assert.Equal(t, StateReady, s.State())
}

func TestSetMapping_CompletesToReady(t *testing.T) {
	stg := testStaging(t)
	s := New(stg, testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchWithMissing()))

	require.NoError(t, s.SetMapping("Assinaturas", model.KindExpense, "cat-lazer"))
	assert.Equal(t, StateReady, s.State())
	assert.True(t, s.Complete())

	// One mapping resolves every row sharing the original category name.
	assert.Equal(t, "cat-lazer", s.Batch().FinalCategoryID(s.Batch().Transactions[0]))
}

func TestSetMapping_PersistsAcrossResume(t *testing.T) {
	stg := testStaging(t)
	s := New(stg, testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchWithMissing()))
	require.NoError(t, s.SetMapping("Assinaturas", model.KindExpense, "cat-lazer"))

	resumed, err := Resume(stg, testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, StateReady, resumed.State())
	assert.Equal(t, "cat-lazer", resumed.Batch().MissingCategories[0].MappedTo)
}

func TestSetMapping_UnknownPairIsNoOp(t *testing.T) {
	s := New(testStaging(t), testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchWithMissing()))

	require.NoError(t, s.SetMapping("Transporte", model.KindExpense, "cat-lazer"))
	assert.Equal(t, StateMapping, s.State())
	assert.False(t, s.Complete())
}

func TestSetMapping_KindMismatch(t *testing.T) {
	s := New(testStaging(t), testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchWithMissing()))

	err := s.SetMapping("Assinaturas", model.KindExpense, "cat-sal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "income")
}

func TestSetMapping_UnknownCategory(t *testing.T) {
	s := New(testStaging(t), testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchWithMissing()))

	err := s.SetMapping("Assinaturas", model.KindExpense, "cat-nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestResume_NoImport(t *testing.T) {
	_, err := Resume(testStaging(t), testDirectory(), zerolog.New(io.Discard))
	assert.ErrorIs(t, err, ErrNoImport)
}

func TestResume_LandsInMapping(t *testing.T) {
	stg := testStaging(t)
	s := New(stg, testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchWithMissing()))

	resumed, err := Resume(stg, testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, StateMapping, resumed.State())
}

func TestCommit_RejectedWhileMapping(t *testing.T) {
	stg := testStaging(t)
	s := New(stg, testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchWithMissing()))

	engine := commit.NewEngine(newFakeStore(), stg, zerolog.New(io.Discard))
	_, err := s.Commit(context.Background(), engine)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateMapping, s.State())
}

func TestCommit_Success(t *testing.T) {
	stg := testStaging(t)
	store := newFakeStore()
	s := New(stg, testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchReady()))

	engine := commit.NewEngine(store, stg, zerolog.New(io.Discard))
	result, err := s.Commit(context.Background(), engine)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, s.State())
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, "-39.90", store.deltas["acc-1"].StringFixed(2))

	// A committed session cannot be cancelled.
	assert.ErrorIs(t, s.Cancel(), ErrInvalidTransition)
}

func TestCommit_FailureThenRetry(t *testing.T) {
	stg := testStaging(t)
	store := newFakeStore()
	store.insertErr = errors.New("store unavailable")
	s := New(stg, testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchReady()))

	engine := commit.NewEngine(store, stg, zerolog.New(io.Discard))
	_, err := s.Commit(context.Background(), engine)
	require.Error(t, err)
	assert.Equal(t, StateFailed, s.State())

	// The staged batch survived the failure.
	_, ok, loadErr := stg.Load()
	require.NoError(t, loadErr)
	assert.True(t, ok)

	// Retry without re-uploading or re-mapping.
	store.insertErr = nil
	result, err := s.Commit(context.Background(), engine)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, s.State())
	assert.Equal(t, 1, result.Inserted)
}

func TestCancel_ClearsStaging(t *testing.T) {
	stg := testStaging(t)
	store := newFakeStore()
	s := New(stg, testDirectory(), zerolog.New(io.Discard))
	require.NoError(t, s.Stage(batchWithMissing()))

	require.NoError(t, s.Cancel())
	assert.Equal(t, StateUploaded, s.State())
	assert.Nil(t, s.Batch())

	// Nothing reached the store.
	assert.Empty(t, store.inserted)
	assert.Empty(t, store.deltas)

	_, ok, err := stg.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// A new upload can start immediately.
	require.NoError(t, s.Stage(batchReady()))
	assert.Equal(t, StateReady, s.State())
}
