package sqlite

import (
	"errors"

	"gorm.io/gorm"

	internal "github.com/veidstad/craft-tracker/internal"
	jobDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/job"
	"github.com/veidstad/craft-tracker/internal/job"
	"github.com/veidstad/craft-tracker/internal/storage"
)

// JobRepository implements job.Repository over the sqlite store.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) job.Repository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(j *job.Job) error {
	return storage.Put(r.db, job.ToDataModel(j))
}

func (r *JobRepository) Update(j *job.Job) error {
	if _, err := storage.Get[jobDatamodel.Job](r.db, j.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.ErrJobNotFound
		}
		return err
	}
	return storage.Put(r.db, job.ToDataModel(j))
}

func (r *JobRepository) Remove(id string) error {
	return storage.Delete[jobDatamodel.Job](r.db, id)
}

func (r *JobRepository) GetByID(id string) (*job.Job, error) {
	record, err := storage.Get[jobDatamodel.Job](r.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrJobNotFound
		}
		return nil, err
	}
	return job.FromDataModel(record), nil
}

func (r *JobRepository) GetAll() ([]*job.Job, error) {
	records, err := storage.All[jobDatamodel.Job](r.db)
	if err != nil {
		return nil, err
	}
	return job.FromDataModelSlice(records), nil
}

func (r *JobRepository) GetActive() ([]*job.Job, error) {
	records, err := storage.ByIndex[jobDatamodel.Job](r.db, "active", true)
	if err != nil {
		return nil, err
	}
	return job.FromDataModelSlice(records), nil
}
