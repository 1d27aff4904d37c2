// Package backup serializes the entire store to a portable versioned
// JSON document and restores it with all-or-nothing semantics. A restore
// validates the whole document exhaustively before a single write; the
// final clear+insert runs as one transaction so a mid-batch storage
// failure leaves the prior data exactly as it was.
package backup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	internal "github.com/veidstad/craft-tracker/internal"
	"github.com/veidstad/craft-tracker/internal/calc"
	expenseDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/expense"
	jobDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/job"
	workentryDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/workentry"
	"github.com/veidstad/craft-tracker/internal/storage"
)

type Service struct {
	store  *storage.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store *storage.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Export reads all three collections inside one transaction, so the
// document is a consistent snapshot with no interleaved writes. Records
// are ordered by creation time then id, keeping repeated exports of an
// unmodified store identical apart from exportedAt.
func (s *Service) Export() (*Document, error) {
	var jobs []jobDatamodel.Job
	var entries []workentryDatamodel.WorkEntry
	var expenses []expenseDatamodel.Expense

	err := s.store.ReadTransaction(func(tx *gorm.DB) error {
		if err := tx.Order("created_at, id").Find(&jobs).Error; err != nil {
			return err
		}
		if err := tx.Order("created_at, id").Find(&entries).Error; err != nil {
			return err
		}
		return tx.Order("created_at, id").Find(&expenses).Error
	})
	if err != nil {
		return nil, internal.NewStorageError("failed to read store for export", err)
	}

	doc := &Document{
		Version:     SupportedVersion,
		ExportedAt:  s.now().Format(time.RFC3339),
		Jobs:        make([]JobRecord, len(jobs)),
		WorkEntries: make([]WorkEntryRecord, len(entries)),
		Expenses:    make([]ExpenseRecord, len(expenses)),
	}
	for i := range jobs {
		doc.Jobs[i] = jobRecord(&jobs[i])
	}
	for i := range entries {
		doc.WorkEntries[i] = workEntryRecord(&entries[i])
	}
	for i := range expenses {
		doc.Expenses[i] = expenseRecord(&expenses[i])
	}

	s.logger.Info("store exported",
		"jobs", len(doc.Jobs),
		"work_entries", len(doc.WorkEntries),
		"expenses", len(doc.Expenses))

	return doc, nil
}

// ExportJSON marshals the export document for writing to a backup file.
func (s *Service) ExportJSON() ([]byte, error) {
	doc, err := s.Export()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, internal.NewInternalError("failed to marshal backup document", err)
	}
	return data, nil
}

// Restore replaces the entire store with the document's content. The
// checks run strictly in order and fail fast; no write happens before
// every check has passed, and the final clear+insert is atomic.
func (s *Service) Restore(data []byte) error {
	raw, err := parseDocument(data)
	if err != nil {
		return err
	}
	if err := raw.checkVersion(); err != nil {
		return err
	}
	if err := raw.checkExportedAt(); err != nil {
		return err
	}

	jobs, entries, expenses, err := validateRecords(raw)
	if err != nil {
		return err
	}

	if err := checkDuplicateIDs(jobs, entries, expenses); err != nil {
		return err
	}
	if err := checkReferentialIntegrity(jobs, entries, expenses); err != nil {
		return err
	}
	if err := checkTotals(entries, expenses); err != nil {
		return err
	}

	err = s.store.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&jobDatamodel.Job{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&workentryDatamodel.WorkEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&expenseDatamodel.Expense{}).Error; err != nil {
			return err
		}

		for i := range jobs {
			record := jobs[i].datamodel()
			if err := storage.Put(tx, &record); err != nil {
				return err
			}
		}
		for i := range entries {
			record := entries[i].datamodel()
			if err := storage.Put(tx, &record); err != nil {
				return err
			}
		}
		for i := range expenses {
			record := expenses[i].datamodel()
			if err := storage.Put(tx, &record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return internal.NewStorageError("failed to restore backup", err)
	}

	s.logger.Info("backup restored",
		"jobs", len(jobs),
		"work_entries", len(entries),
		"expenses", len(expenses))

	return nil
}

func validateRecords(raw *rawDocument) ([]JobRecord, []WorkEntryRecord, []ExpenseRecord, error) {
	jobs := make([]JobRecord, len(raw.jobs))
	for i, rec := range raw.jobs {
		var err error
		if jobs[i], err = validateJobRecord(i, rec); err != nil {
			return nil, nil, nil, err
		}
	}

	entries := make([]WorkEntryRecord, len(raw.workEntries))
	for i, rec := range raw.workEntries {
		var err error
		if entries[i], err = validateWorkEntryRecord(i, rec); err != nil {
			return nil, nil, nil, err
		}
	}

	expenses := make([]ExpenseRecord, len(raw.expenses))
	for i, rec := range raw.expenses {
		var err error
		if expenses[i], err = validateExpenseRecord(i, rec); err != nil {
			return nil, nil, nil, err
		}
	}

	return jobs, entries, expenses, nil
}

// checkDuplicateIDs looks for repeated ids within each collection. Ids
// are collection-scoped, so a job and an expense may legally share one.
func checkDuplicateIDs(jobs []JobRecord, entries []WorkEntryRecord, expenses []ExpenseRecord) error {
	seen := make(map[string]bool, len(jobs))
	for _, rec := range jobs {
		if seen[rec.ID] {
			return duplicateID("jobs", rec.ID)
		}
		seen[rec.ID] = true
	}

	seen = make(map[string]bool, len(entries))
	for _, rec := range entries {
		if seen[rec.ID] {
			return duplicateID("workEntries", rec.ID)
		}
		seen[rec.ID] = true
	}

	seen = make(map[string]bool, len(expenses))
	for _, rec := range expenses {
		if seen[rec.ID] {
			return duplicateID("expenses", rec.ID)
		}
		seen[rec.ID] = true
	}

	return nil
}

func duplicateID(kind, id string) error {
	return internal.NewValidationError(
		fmt.Sprintf("duplicate id %q in %s", id, kind), internal.ErrCodeDuplicateID)
}

// checkReferentialIntegrity verifies every soft foreign key against the
// in-document id sets, not the live store: the restore replaces
// everything, so only the document matters.
func checkReferentialIntegrity(jobs []JobRecord, entries []WorkEntryRecord, expenses []ExpenseRecord) error {
	jobIDs := make(map[string]bool, len(jobs))
	for _, rec := range jobs {
		jobIDs[rec.ID] = true
	}

	entryIDs := make(map[string]bool, len(entries))
	for i, rec := range entries {
		if !jobIDs[rec.JobID] {
			return internal.NewValidationError(
				fmt.Sprintf("workEntries[%d] (id %q): jobId %q does not match any job", i, rec.ID, rec.JobID),
				internal.ErrCodeReferentialIntegrity)
		}
		entryIDs[rec.ID] = true
	}

	for i, rec := range expenses {
		if !entryIDs[rec.WorkEntryID] {
			return internal.NewValidationError(
				fmt.Sprintf("expenses[%d] (id %q): workEntryId %q does not match any work entry", i, rec.ID, rec.WorkEntryID),
				internal.ErrCodeReferentialIntegrity)
		}
	}

	return nil
}

// checkTotals recomputes every derived total through the same calculation
// module used at write time and compares at 2-decimal precision. This
// catches hand-edited or corrupted backups that would otherwise smuggle
// inconsistent totals back into the store.
func checkTotals(entries []WorkEntryRecord, expenses []ExpenseRecord) error {
	amountsByEntry := make(map[string][]float64)
	for _, rec := range expenses {
		amountsByEntry[rec.WorkEntryID] = append(amountsByEntry[rec.WorkEntryID], rec.Amount)
	}

	for i, rec := range entries {
		hours, err := calc.DurationHours(rec.StartTime, rec.EndTime)
		if err != nil {
			return totalsContext(i, rec.ID, err)
		}
		laborTotal, err := calc.LaborTotal(hours, rec.HourlyRateUsed)
		if err != nil {
			return totalsContext(i, rec.ID, err)
		}
		kmTotal, err := calc.KmTotal(rec.Kilometers, rec.KmRateUsed)
		if err != nil {
			return totalsContext(i, rec.ID, err)
		}
		expensesTotal := calc.SumAmounts(amountsByEntry[rec.ID])
		grandTotal, err := calc.GrandTotal(laborTotal, kmTotal, expensesTotal)
		if err != nil {
			return totalsContext(i, rec.ID, err)
		}

		checks := []struct {
			field    string
			stored   float64
			computed float64
		}{
			{"laborTotal", rec.LaborTotal, laborTotal},
			{"kmTotal", rec.KmTotal, kmTotal},
			{"expensesTotal", rec.ExpensesTotal, expensesTotal},
			{"grandTotal", rec.GrandTotal, grandTotal},
		}
		for _, check := range checks {
			if calc.Round2(check.stored) != check.computed {
				return internal.NewValidationError(
					fmt.Sprintf("workEntries[%d] (id %q): field %q stored %v does not match computed %v",
						i, rec.ID, check.field, check.stored, check.computed),
					internal.ErrCodeTotalsMismatch)
			}
		}
	}

	return nil
}

func totalsContext(index int, id string, err error) error {
	if appErr, ok := internal.IsAppError(err); ok {
		return internal.NewValidationError(
			fmt.Sprintf("workEntries[%d] (id %q): %s", index, id, appErr.Message), appErr.Code)
	}
	return err
}
