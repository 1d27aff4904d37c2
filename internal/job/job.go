package job

import (
	jobDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/job"
)

// Job is a client engagement with a default billing rate. The rate is
// only a template: work entries snapshot it at creation time, so editing
// it never changes historical records.
type Job struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Client            string  `json:"client"`
	DefaultHourlyRate float64 `json:"default_hourly_rate"`
	Active            bool    `json:"active"`
	CreatedAt         string  `json:"created_at"`
}

// Repository is the raw keyed access path for jobs. It enforces no
// business rules; use Service for validated writes.
type Repository interface {
	Create(job *Job) error
	Update(job *Job) error
	Remove(id string) error
	GetByID(id string) (*Job, error)
	GetAll() ([]*Job, error)
	GetActive() ([]*Job, error)
}

func ToDataModel(j *Job) *jobDatamodel.Job {
	return &jobDatamodel.Job{
		ID:                j.ID,
		Name:              j.Name,
		Client:            j.Client,
		DefaultHourlyRate: j.DefaultHourlyRate,
		Active:            j.Active,
		CreatedAt:         j.CreatedAt,
	}
}

func FromDataModel(j *jobDatamodel.Job) *Job {
	return &Job{
		ID:                j.ID,
		Name:              j.Name,
		Client:            j.Client,
		DefaultHourlyRate: j.DefaultHourlyRate,
		Active:            j.Active,
		CreatedAt:         j.CreatedAt,
	}
}

func FromDataModelSlice(jobs []jobDatamodel.Job) []*Job {
	result := make([]*Job, len(jobs))
	for i := range jobs {
		result[i] = FromDataModel(&jobs[i])
	}
	return result
}
