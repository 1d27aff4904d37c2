// Package entry is the only sanctioned write path for a work entry
// together with its expenses. It recomputes every derived total from the
// raw input, uploads receipt files before touching the store, and writes
// the records in one atomic transaction; receipt storage and the store
// are not a single atomic resource, so a failed commit triggers a
// compensating rollback of the files uploaded in that batch.
package entry

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	internal "github.com/veidstad/craft-tracker/internal"
	"github.com/veidstad/craft-tracker/internal/calc"
	expenseDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/expense"
	workentryDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/workentry"
	"github.com/veidstad/craft-tracker/internal/expense"
	"github.com/veidstad/craft-tracker/internal/storage"
	"github.com/veidstad/craft-tracker/internal/workentry"
)

// ReceiptStorage is the external file storage collaborator. UploadBatch
// is all-or-nothing: on a mid-batch failure it removes the files it
// already wrote before returning.
type ReceiptStorage interface {
	Upload(path string, data []byte) (string, error)
	UploadBatch(paths []string, blobs [][]byte) ([]string, error)
	Delete(paths []string) error
}

type Service struct {
	store    *storage.Store
	entries  workentry.Repository
	expenses expense.Repository
	receipts ReceiptStorage
	owner    string
	logger   *slog.Logger
}

func NewService(store *storage.Store, entries workentry.Repository, expenses expense.Repository, receipts ReceiptStorage, owner string, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		entries:  entries,
		expenses: expenses,
		receipts: receipts,
		owner:    owner,
		logger:   logger,
	}
}

// CreateEntry validates, computes totals, uploads receipts, then persists
// the work entry and all its expenses in one transaction. All ids are
// generated before any I/O so a partial failure never leaves dangling
// references.
func (s *Service) CreateEntry(input EntryInput, expenseInputs []ExpenseInput) (*workentry.WorkEntry, []*expense.Expense, error) {
	if err := validateInputs(input, expenseInputs); err != nil {
		s.logger.Error("entry validation failed", "error", err)
		return nil, nil, err
	}

	entryID := uuid.NewString()
	expenseIDs := make([]string, len(expenseInputs))
	for i := range expenseInputs {
		expenseIDs[i] = uuid.NewString()
	}

	entry, expenses, err := s.buildRecords(entryID, expenseIDs, input, expenseInputs, time.Now().Format(time.RFC3339))
	if err != nil {
		return nil, nil, err
	}

	uploaded, err := s.uploadReceipts(entryID, expenseIDs, expenseInputs, expenses)
	if err != nil {
		return nil, nil, err
	}

	if err := s.persist(entry, expenses, nil); err != nil {
		s.rollbackUploads(uploaded)
		return nil, nil, err
	}

	s.logger.Info("work entry created",
		"entry_id", entryID,
		"job_id", entry.JobID,
		"expenses", len(expenses),
		"grand_total", entry.GrandTotal)

	return entry, expenses, nil
}

// UpdateEntry replaces the entry's raw fields and its entire expense set,
// recomputing totals exactly like CreateEntry. The original createdAt is
// preserved. Superseded receipt files are removed only after the commit
// succeeds, as a best-effort cleanup.
func (s *Service) UpdateEntry(id string, input EntryInput, expenseInputs []ExpenseInput) (*workentry.WorkEntry, []*expense.Expense, error) {
	if err := validateInputs(input, expenseInputs); err != nil {
		s.logger.Error("entry validation failed", "error", err, "entry_id", id)
		return nil, nil, err
	}

	existing, err := s.entries.GetByID(id)
	if err != nil {
		return nil, nil, internal.ErrEntryNotFound
	}

	oldExpenses, err := s.expenses.GetByWorkEntryID(id)
	if err != nil {
		return nil, nil, internal.NewStorageError("failed to load existing expenses", err)
	}

	expenseIDs := make([]string, len(expenseInputs))
	for i := range expenseInputs {
		expenseIDs[i] = uuid.NewString()
	}

	entry, expenses, err := s.buildRecords(id, expenseIDs, input, expenseInputs, existing.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	uploaded, err := s.uploadReceipts(id, expenseIDs, expenseInputs, expenses)
	if err != nil {
		return nil, nil, err
	}

	if err := s.persist(entry, expenses, oldExpenses); err != nil {
		s.rollbackUploads(uploaded)
		return nil, nil, err
	}

	s.cleanupSuperseded(oldExpenses, expenses)

	s.logger.Info("work entry updated",
		"entry_id", id,
		"expenses", len(expenses),
		"grand_total", entry.GrandTotal)

	return entry, expenses, nil
}

// DeleteEntry removes the entry, its expenses and their receipt files.
// Files go first so a mid-sequence failure never leaves records pointing
// at half-cleaned storage; the two record deletions are one transaction.
func (s *Service) DeleteEntry(id string) error {
	if _, err := s.entries.GetByID(id); err != nil {
		return internal.ErrEntryNotFound
	}

	oldExpenses, err := s.expenses.GetByWorkEntryID(id)
	if err != nil {
		return internal.NewStorageError("failed to load expenses for delete", err)
	}

	paths := receiptPaths(oldExpenses)
	if len(paths) > 0 {
		if err := s.receipts.Delete(paths); err != nil {
			s.logger.Error("failed to delete receipt files", "error", err, "entry_id", id)
			return internal.NewValidationError("receipt files could not be deleted", internal.ErrCodeReceiptStorage).WithCause(err)
		}
	}

	err = s.store.Transaction(func(tx *gorm.DB) error {
		for _, e := range oldExpenses {
			if err := storage.Delete[expenseDatamodel.Expense](tx, e.ID); err != nil {
				return err
			}
		}
		return storage.Delete[workentryDatamodel.WorkEntry](tx, id)
	})
	if err != nil {
		return internal.NewStorageError("failed to delete work entry", err)
	}

	s.logger.Info("work entry deleted", "entry_id", id, "expenses", len(oldExpenses))
	return nil
}

func validateInputs(input EntryInput, expenseInputs []ExpenseInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	for i, expInput := range expenseInputs {
		if err := expInput.Validate(); err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				return internal.NewValidationError(
					fmt.Sprintf("expense %d: %s", i, appErr.GetDetailedMessage()), appErr.Code).
					WithDetails(appErr.Details)
			}
			return err
		}
	}
	return nil
}

// buildRecords derives every stored total from the raw input via the
// calculation module. Caller-supplied totals never reach this point.
func (s *Service) buildRecords(entryID string, expenseIDs []string, input EntryInput, expenseInputs []ExpenseInput, createdAt string) (*workentry.WorkEntry, []*expense.Expense, error) {
	hours, err := calc.DurationHours(input.StartTime, input.EndTime)
	if err != nil {
		return nil, nil, err
	}
	laborTotal, err := calc.LaborTotal(hours, input.HourlyRateUsed)
	if err != nil {
		return nil, nil, err
	}
	kmTotal, err := calc.KmTotal(input.Kilometers, input.KmRateUsed)
	if err != nil {
		return nil, nil, err
	}

	amounts := make([]float64, len(expenseInputs))
	for i, expInput := range expenseInputs {
		amounts[i] = expInput.Amount
	}
	expensesTotal := calc.SumAmounts(amounts)

	grandTotal, err := calc.GrandTotal(laborTotal, kmTotal, expensesTotal)
	if err != nil {
		return nil, nil, err
	}

	entry := &workentry.WorkEntry{
		ID:             entryID,
		Date:           input.Date,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		JobID:          input.JobID,
		HourlyRateUsed: input.HourlyRateUsed,
		KmRateUsed:     input.KmRateUsed,
		Kilometers:     input.Kilometers,
		LaborTotal:     laborTotal,
		KmTotal:        kmTotal,
		ExpensesTotal:  expensesTotal,
		GrandTotal:     grandTotal,
		CreatedAt:      createdAt,
	}

	now := time.Now().Format(time.RFC3339)
	expenses := make([]*expense.Expense, len(expenseInputs))
	for i, expInput := range expenseInputs {
		expenses[i] = &expense.Expense{
			ID:          expenseIDs[i],
			WorkEntryID: entryID,
			Amount:      calc.Round2(expInput.Amount),
			Category:    expInput.Category,
			ReceiptPath: expInput.ReceiptPath,
			CreatedAt:   now,
		}
	}

	return entry, expenses, nil
}

// uploadReceipts pushes every new receipt file as one all-or-nothing
// batch and stamps the stored paths onto the expense records.
func (s *Service) uploadReceipts(entryID string, expenseIDs []string, expenseInputs []ExpenseInput, expenses []*expense.Expense) ([]string, error) {
	var paths []string
	var blobs [][]byte
	var targets []int

	for i, expInput := range expenseInputs {
		if len(expInput.ReceiptData) == 0 {
			continue
		}
		ext := expInput.ReceiptExt
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		paths = append(paths, fmt.Sprintf("%s/%s/%s%s", s.owner, entryID, expenseIDs[i], ext))
		blobs = append(blobs, expInput.ReceiptData)
		targets = append(targets, i)
	}

	if len(paths) == 0 {
		return nil, nil
	}

	uploaded, err := s.receipts.UploadBatch(paths, blobs)
	if err != nil {
		s.logger.Error("receipt upload failed", "error", err, "entry_id", entryID)
		return nil, internal.NewValidationError("receipt upload failed", internal.ErrCodeReceiptStorage).WithCause(err)
	}

	for i, target := range targets {
		expenses[target].ReceiptPath = uploaded[i]
	}

	return uploaded, nil
}

// persist writes the entry and its expense set in one atomic batch. For
// updates, oldExpenses is the previous set to delete inside the same
// transaction.
func (s *Service) persist(entry *workentry.WorkEntry, expenses []*expense.Expense, oldExpenses []*expense.Expense) error {
	err := s.store.Transaction(func(tx *gorm.DB) error {
		for _, old := range oldExpenses {
			if err := storage.Delete[expenseDatamodel.Expense](tx, old.ID); err != nil {
				return err
			}
		}
		if err := storage.Put(tx, workentry.ToDataModel(entry)); err != nil {
			return err
		}
		for _, e := range expenses {
			if err := storage.Put(tx, expense.ToDataModel(e)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return internal.NewStorageError("failed to persist work entry", err)
	}
	return nil
}

// rollbackUploads compensates for a failed commit after files were
// already uploaded. Its own failure is logged, never surfaced: the files
// are unreferenced and therefore harmless.
func (s *Service) rollbackUploads(uploaded []string) {
	if len(uploaded) == 0 {
		return
	}
	if err := s.receipts.Delete(uploaded); err != nil {
		s.logger.Warn("rollback of uploaded receipts failed", "error", err, "paths", uploaded)
	}
}

// cleanupSuperseded removes old receipt files no longer referenced after
// a successful update. Best-effort: the store is already consistent, an
// orphaned file is a storage-space issue, not a correctness issue.
func (s *Service) cleanupSuperseded(oldExpenses, newExpenses []*expense.Expense) {
	kept := make(map[string]bool, len(newExpenses))
	for _, e := range newExpenses {
		if e.ReceiptPath != "" {
			kept[e.ReceiptPath] = true
		}
	}

	var superseded []string
	for _, e := range oldExpenses {
		if e.ReceiptPath != "" && !kept[e.ReceiptPath] {
			superseded = append(superseded, e.ReceiptPath)
		}
	}

	if len(superseded) == 0 {
		return
	}
	if err := s.receipts.Delete(superseded); err != nil {
		s.logger.Warn("cleanup of superseded receipts failed", "error", err, "paths", superseded)
	}
}

func receiptPaths(expenses []*expense.Expense) []string {
	var paths []string
	for _, e := range expenses {
		if e.ReceiptPath != "" {
			paths = append(paths, e.ReceiptPath)
		}
	}
	return paths
}
