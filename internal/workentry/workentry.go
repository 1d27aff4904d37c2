package workentry

import (
	workentryDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/workentry"
)

// WorkEntry is one recorded work session against a job. The rates are
// snapshots copied from the job when the entry was created, and the four
// totals are derived values: they must always equal their recomputation
// from the raw fields plus the linked expenses. Only the entry service
// writes them.
type WorkEntry struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	JobID          string  `json:"job_id"`
	HourlyRateUsed float64 `json:"hourly_rate_used"`
	KmRateUsed     float64 `json:"km_rate_used"`
	Kilometers     float64 `json:"kilometers"`
	LaborTotal     float64 `json:"labor_total"`
	KmTotal        float64 `json:"km_total"`
	ExpensesTotal  float64 `json:"expenses_total"`
	GrandTotal     float64 `json:"grand_total"`
	CreatedAt      string  `json:"created_at"`
}

// Repository is the raw keyed access path for work entries. It performs
// no total computation and no multi-collection writes; the entry service
// owns those.
type Repository interface {
	Create(entry *WorkEntry) error
	Update(entry *WorkEntry) error
	Remove(id string) error
	GetByID(id string) (*WorkEntry, error)
	GetAll() ([]*WorkEntry, error)
	GetByDateRange(from, to string) ([]*WorkEntry, error)
	GetByJobID(jobID string) ([]*WorkEntry, error)
}

func ToDataModel(e *WorkEntry) *workentryDatamodel.WorkEntry {
	return &workentryDatamodel.WorkEntry{
		ID:             e.ID,
		Date:           e.Date,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		JobID:          e.JobID,
		HourlyRateUsed: e.HourlyRateUsed,
		KmRateUsed:     e.KmRateUsed,
		Kilometers:     e.Kilometers,
		LaborTotal:     e.LaborTotal,
		KmTotal:        e.KmTotal,
		ExpensesTotal:  e.ExpensesTotal,
		GrandTotal:     e.GrandTotal,
		CreatedAt:      e.CreatedAt,
	}
}

func FromDataModel(e *workentryDatamodel.WorkEntry) *WorkEntry {
	return &WorkEntry{
		ID:             e.ID,
		Date:           e.Date,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		JobID:          e.JobID,
		HourlyRateUsed: e.HourlyRateUsed,
		KmRateUsed:     e.KmRateUsed,
		Kilometers:     e.Kilometers,
		LaborTotal:     e.LaborTotal,
		KmTotal:        e.KmTotal,
		ExpensesTotal:  e.ExpensesTotal,
		GrandTotal:     e.GrandTotal,
		CreatedAt:      e.CreatedAt,
	}
}

func FromDataModelSlice(entries []workentryDatamodel.WorkEntry) []*WorkEntry {
	result := make([]*WorkEntry, len(entries))
	for i := range entries {
		result[i] = FromDataModel(&entries[i])
	}
	return result
}
