package backup

import (
	"fmt"
	"time"

	expenseDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/expense"
	jobDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/job"
	workentryDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/workentry"
)

// SupportedVersion is the only backup document version this build reads
// or writes. There is no cross-version migration.
const SupportedVersion = 1

// Document is the portable JSON representation of the entire store.
// Field names are the external contract and never change shape within a
// version.
type Document struct {
	Version     int               `json:"version"`
	ExportedAt  string            `json:"exportedAt"`
	Jobs        []JobRecord       `json:"jobs"`
	WorkEntries []WorkEntryRecord `json:"workEntries"`
	Expenses    []ExpenseRecord   `json:"expenses"`
}

type JobRecord struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Client            string  `json:"client"`
	DefaultHourlyRate float64 `json:"defaultHourlyRate"`
	Active            bool    `json:"active"`
	CreatedAt         string  `json:"createdAt"`
}

type WorkEntryRecord struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	JobID          string  `json:"jobId"`
	HourlyRateUsed float64 `json:"hourlyRateUsed"`
	KmRateUsed     float64 `json:"kmRateUsed"`
	Kilometers     float64 `json:"kilometers"`
	LaborTotal     float64 `json:"laborTotal"`
	KmTotal        float64 `json:"kmTotal"`
	ExpensesTotal  float64 `json:"expensesTotal"`
	GrandTotal     float64 `json:"grandTotal"`
	CreatedAt      string  `json:"createdAt"`
}

type ExpenseRecord struct {
	ID          string  `json:"id"`
	WorkEntryID string  `json:"workEntryId"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	ReceiptPath string  `json:"receiptPath"`
	CreatedAt   string  `json:"createdAt"`
}

// Filename is the download name convention for an export taken at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("craft-tracker-backup-%s.json", t.Format("2006-01-02"))
}

func jobRecord(j *jobDatamodel.Job) JobRecord {
	return JobRecord{
		ID:                j.ID,
		Name:              j.Name,
		Client:            j.Client,
		DefaultHourlyRate: j.DefaultHourlyRate,
		Active:            j.Active,
		CreatedAt:         j.CreatedAt,
	}
}

func (r JobRecord) datamodel() jobDatamodel.Job {
	return jobDatamodel.Job{
		ID:                r.ID,
		Name:              r.Name,
		Client:            r.Client,
		DefaultHourlyRate: r.DefaultHourlyRate,
		Active:            r.Active,
		CreatedAt:         r.CreatedAt,
	}
}

func workEntryRecord(e *workentryDatamodel.WorkEntry) WorkEntryRecord {
	return WorkEntryRecord{
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

func (r WorkEntryRecord) datamodel() workentryDatamodel.WorkEntry {
	return workentryDatamodel.WorkEntry{
		ID:             r.ID,
		Date:           r.Date,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		JobID:          r.JobID,
		HourlyRateUsed: r.HourlyRateUsed,
		KmRateUsed:     r.KmRateUsed,
		Kilometers:     r.Kilometers,
		LaborTotal:     r.LaborTotal,
		KmTotal:        r.KmTotal,
		ExpensesTotal:  r.ExpensesTotal,
		GrandTotal:     r.GrandTotal,
		CreatedAt:      r.CreatedAt,
	}
}

func expenseRecord(e *expenseDatamodel.Expense) ExpenseRecord {
	return ExpenseRecord{
		ID:          e.ID,
		WorkEntryID: e.WorkEntryID,
		Amount:      e.Amount,
		Category:    e.Category,
		ReceiptPath: e.ReceiptPath,
		CreatedAt:   e.CreatedAt,
	}
}

func (r ExpenseRecord) datamodel() expenseDatamodel.Expense {
	return expenseDatamodel.Expense{
		ID:          r.ID,
		WorkEntryID: r.WorkEntryID,
		Amount:      r.Amount,
		Category:    r.Category,
		ReceiptPath: r.ReceiptPath,
		CreatedAt:   r.CreatedAt,
	}
}
