package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	expenseDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/expense"
	jobDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/job"
	workentryDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/workentry"
	"github.com/veidstad/craft-tracker/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := storage.Open(path)
	require.NoError(t, err)
	require.NoError(t, storage.Put(store.DB(), &jobDatamodel.Job{ID: "job-1", Name: "Roof repair"}))
	require.NoError(t, store.Close())

	store, err = storage.Open(path)
	require.NoError(t, err)
	defer store.Close()

	job, err := storage.Get[jobDatamodel.Job](store.DB(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Roof repair", job.Name)
}

func TestPutOverwritesByID(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, storage.Put(store.DB(), &jobDatamodel.Job{ID: "job-1", Name: "Roof repair", DefaultHourlyRate: 500}))
	require.NoError(t, storage.Put(store.DB(), &jobDatamodel.Job{ID: "job-1", Name: "Roof repair", DefaultHourlyRate: 550}))

	jobs, err := storage.All[jobDatamodel.Job](store.DB())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 550.0, jobs[0].DefaultHourlyRate)
}

func TestGetMissingRecord(t *testing.T) {
	store := openTestStore(t)

	_, err := storage.Get[jobDatamodel.Job](store.DB(), "nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteMissingRecordIsNoError(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, storage.Delete[jobDatamodel.Job](store.DB(), "nope"))
}

func TestRangeBoundsAreInclusive(t *testing.T) {
	store := openTestStore(t)

	for _, date := range []string{"2025-06-14", "2025-06-15", "2025-06-16", "2025-06-17"} {
		require.NoError(t, storage.Put(store.DB(), &workentryDatamodel.WorkEntry{
			ID:   "entry-" + date,
			Date: date,
		}))
	}

	entries, err := storage.Range[workentryDatamodel.WorkEntry](store.DB(), "date", "2025-06-15", "2025-06-16")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-06-15", entries[0].Date)
	assert.Equal(t, "2025-06-16", entries[1].Date)
}

func TestByIndex(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, storage.Put(store.DB(), &expenseDatamodel.Expense{ID: "exp-1", WorkEntryID: "entry-1", Amount: 150, Category: "materials"}))
	require.NoError(t, storage.Put(store.DB(), &expenseDatamodel.Expense{ID: "exp-2", WorkEntryID: "entry-1", Amount: 40, Category: "parking"}))
	require.NoError(t, storage.Put(store.DB(), &expenseDatamodel.Expense{ID: "exp-3", WorkEntryID: "entry-2", Amount: 99, Category: "materials"}))

	expenses, err := storage.ByIndex[expenseDatamodel.Expense](store.DB(), "work_entry_id", "entry-1")
	require.NoError(t, err)
	assert.Len(t, expenses, 2)
}

func TestTransactionCommitsAllCollections(t *testing.T) {
	store := openTestStore(t)

	err := store.Transaction(func(tx *gorm.DB) error {
		if err := storage.Put(tx, &jobDatamodel.Job{ID: "job-1", Name: "Roof repair"}); err != nil {
			return err
		}
		if err := storage.Put(tx, &workentryDatamodel.WorkEntry{ID: "entry-1", Date: "2025-06-15", JobID: "job-1"}); err != nil {
			return err
		}
		return storage.Put(tx, &expenseDatamodel.Expense{ID: "exp-1", WorkEntryID: "entry-1", Amount: 150, Category: "materials"})
	})
	require.NoError(t, err)

	for _, check := range []func() error{
		func() error { _, err := storage.Get[jobDatamodel.Job](store.DB(), "job-1"); return err },
		func() error { _, err := storage.Get[workentryDatamodel.WorkEntry](store.DB(), "entry-1"); return err },
		func() error { _, err := storage.Get[expenseDatamodel.Expense](store.DB(), "exp-1"); return err },
	} {
		assert.NoError(t, check())
	}
}

func TestTransactionRollsBackTheWholeBatch(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, storage.Put(store.DB(), &jobDatamodel.Job{ID: "job-1", Name: "Roof repair", DefaultHourlyRate: 500}))

	boom := errors.New("boom")
	err := store.Transaction(func(tx *gorm.DB) error {
		if err := storage.Put(tx, &jobDatamodel.Job{ID: "job-1", Name: "Roof repair", DefaultHourlyRate: 999}); err != nil {
			return err
		}
		if err := storage.Put(tx, &workentryDatamodel.WorkEntry{ID: "entry-1", Date: "2025-06-15"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// prior state is untouched
	job, err := storage.Get[jobDatamodel.Job](store.DB(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 500.0, job.DefaultHourlyRate)

	_, err = storage.Get[workentryDatamodel.WorkEntry](store.DB(), "entry-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReadTransactionSeesConsistentSnapshot(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, storage.Put(store.DB(), &jobDatamodel.Job{ID: "job-1", Name: "Roof repair"}))
	require.NoError(t, storage.Put(store.DB(), &workentryDatamodel.WorkEntry{ID: "entry-1", Date: "2025-06-15", JobID: "job-1"}))

	var jobs []jobDatamodel.Job
	var entries []workentryDatamodel.WorkEntry
	err := store.ReadTransaction(func(tx *gorm.DB) error {
		var err error
		if jobs, err = storage.All[jobDatamodel.Job](tx); err != nil {
			return err
		}
		entries, err = storage.All[workentryDatamodel.WorkEntry](tx)
		return err
	})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Len(t, entries, 1)
}
