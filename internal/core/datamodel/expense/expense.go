package expense

// Expense is the storage record for the expenses collection. An expense
// is owned by its work entry and is deleted with it.
type Expense struct {
	ID          string  `gorm:"primaryKey"`
	WorkEntryID string  `gorm:"column:work_entry_id;index;not null"`
	Amount      float64 `gorm:"column:amount;not null"`
	Category    string  `gorm:"column:category;not null"`
	ReceiptPath string  `gorm:"column:receipt_path"`
	CreatedAt   string  `gorm:"column:created_at"`
}

func (Expense) TableName() string {
	return "expenses"
}
