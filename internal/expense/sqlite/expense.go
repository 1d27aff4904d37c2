package sqlite

import (
	"errors"

	"gorm.io/gorm"

	internal "github.com/veidstad/craft-tracker/internal"
	expenseDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/expense"
	"github.com/veidstad/craft-tracker/internal/expense"
	"github.com/veidstad/craft-tracker/internal/storage"
)

// ExpenseRepository implements expense.Repository over the sqlite store.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(e *expense.Expense) error {
	return storage.Put(r.db, expense.ToDataModel(e))
}

func (r *ExpenseRepository) Update(e *expense.Expense) error {
	if _, err := storage.Get[expenseDatamodel.Expense](r.db, e.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.NewNotFoundError("expense not found", internal.ErrCodeEntryNotFound)
		}
		return err
	}
	return storage.Put(r.db, expense.ToDataModel(e))
}

func (r *ExpenseRepository) Remove(id string) error {
	return storage.Delete[expenseDatamodel.Expense](r.db, id)
}

func (r *ExpenseRepository) GetByID(id string) (*expense.Expense, error) {
	record, err := storage.Get[expenseDatamodel.Expense](r.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("expense not found", internal.ErrCodeEntryNotFound)
		}
		return nil, err
	}
	return expense.FromDataModel(record), nil
}

func (r *ExpenseRepository) GetAll() ([]*expense.Expense, error) {
	records, err := storage.All[expenseDatamodel.Expense](r.db)
	if err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(records), nil
}

func (r *ExpenseRepository) GetByWorkEntryID(workEntryID string) ([]*expense.Expense, error) {
	records, err := storage.ByIndex[expenseDatamodel.Expense](r.db, "work_entry_id", workEntryID)
	if err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(records), nil
}
