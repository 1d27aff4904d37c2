package sqlite

import (
	"errors"

	"gorm.io/gorm"

	internal "github.com/veidstad/craft-tracker/internal"
	workentryDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/workentry"
	"github.com/veidstad/craft-tracker/internal/storage"
	"github.com/veidstad/craft-tracker/internal/workentry"
)

// WorkEntryRepository implements workentry.Repository over the sqlite store.
type WorkEntryRepository struct {
	db *gorm.DB
}

func NewWorkEntryRepository(db *gorm.DB) workentry.Repository {
	return &WorkEntryRepository{db: db}
}

func (r *WorkEntryRepository) Create(e *workentry.WorkEntry) error {
	return storage.Put(r.db, workentry.ToDataModel(e))
}

func (r *WorkEntryRepository) Update(e *workentry.WorkEntry) error {
	if _, err := storage.Get[workentryDatamodel.WorkEntry](r.db, e.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.ErrEntryNotFound
		}
		return err
	}
	return storage.Put(r.db, workentry.ToDataModel(e))
}

func (r *WorkEntryRepository) Remove(id string) error {
	return storage.Delete[workentryDatamodel.WorkEntry](r.db, id)
}

func (r *WorkEntryRepository) GetByID(id string) (*workentry.WorkEntry, error) {
	record, err := storage.Get[workentryDatamodel.WorkEntry](r.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEntryNotFound
		}
		return nil, err
	}
	return workentry.FromDataModel(record), nil
}

func (r *WorkEntryRepository) GetAll() ([]*workentry.WorkEntry, error) {
	records, err := storage.All[workentryDatamodel.WorkEntry](r.db)
	if err != nil {
		return nil, err
	}
	return workentry.FromDataModelSlice(records), nil
}

// GetByDateRange returns entries whose date lies in [from, to], bounds
// inclusive. Dates are YYYY-MM-DD, so lexicographic range matches
// chronological range.
func (r *WorkEntryRepository) GetByDateRange(from, to string) ([]*workentry.WorkEntry, error) {
	records, err := storage.Range[workentryDatamodel.WorkEntry](r.db, "date", from, to)
	if err != nil {
		return nil, err
	}
	return workentry.FromDataModelSlice(records), nil
}

func (r *WorkEntryRepository) GetByJobID(jobID string) ([]*workentry.WorkEntry, error) {
	records, err := storage.ByIndex[workentryDatamodel.WorkEntry](r.db, "job_id", jobID)
	if err != nil {
		return nil, err
	}
	return workentry.FromDataModelSlice(records), nil
}
