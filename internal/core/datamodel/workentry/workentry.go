package workentry

// WorkEntry is the storage record for the work_entries collection.
// Date is a local calendar day (YYYY-MM-DD); start/end are RFC 3339 with
// their original zone offset. The four totals are derived values written
// exclusively by the entry service.
type WorkEntry struct {
	ID             string  `gorm:"primaryKey"`
	Date           string  `gorm:"column:date;index;not null"`
	StartTime      string  `gorm:"column:start_time;not null"`
	EndTime        string  `gorm:"column:end_time;not null"`
	JobID          string  `gorm:"column:job_id;index"`
	HourlyRateUsed float64 `gorm:"column:hourly_rate_used"`
	KmRateUsed     float64 `gorm:"column:km_rate_used"`
	Kilometers     float64 `gorm:"column:kilometers"`
	LaborTotal     float64 `gorm:"column:labor_total"`
	KmTotal        float64 `gorm:"column:km_total"`
	ExpensesTotal  float64 `gorm:"column:expenses_total"`
	GrandTotal     float64 `gorm:"column:grand_total"`
	CreatedAt      string  `gorm:"column:created_at"`
}

func (WorkEntry) TableName() string {
	return "work_entries"
}
