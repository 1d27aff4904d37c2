package expense

import (
	expenseDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/expense"
)

// Expense is a cost item owned by a work entry. It cannot exist without
// its parent and is deleted with it. ReceiptPath is an opaque reference
// into receipt storage, empty when no receipt was attached.
type Expense struct {
	ID          string  `json:"id"`
	WorkEntryID string  `json:"work_entry_id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	ReceiptPath string  `json:"receipt_path,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// Repository is the raw keyed access path for expenses.
type Repository interface {
	Create(expense *Expense) error
	Update(expense *Expense) error
	Remove(id string) error
	GetByID(id string) (*Expense, error)
	GetAll() ([]*Expense, error)
	GetByWorkEntryID(workEntryID string) ([]*Expense, error)
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:          e.ID,
		WorkEntryID: e.WorkEntryID,
		Amount:      e.Amount,
		Category:    e.Category,
		ReceiptPath: e.ReceiptPath,
		CreatedAt:   e.CreatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:          e.ID,
		WorkEntryID: e.WorkEntryID,
		Amount:      e.Amount,
		Category:    e.Category,
		ReceiptPath: e.ReceiptPath,
		CreatedAt:   e.CreatedAt,
	}
}

func FromDataModelSlice(expenses []expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i := range expenses {
		result[i] = FromDataModel(&expenses[i])
	}
	return result
}
