package job

// Job is the storage record for the jobs collection. Timestamps are kept
// as RFC 3339 text so records survive export/import byte-for-byte.
type Job struct {
	ID                string  `gorm:"primaryKey"`
	Name              string  `gorm:"column:name;not null"`
	Client            string  `gorm:"column:client"`
	DefaultHourlyRate float64 `gorm:"column:default_hourly_rate;not null"`
	Active            bool    `gorm:"column:active;index"`
	CreatedAt         string  `gorm:"column:created_at"`
}

func (Job) TableName() string {
	return "jobs"
}
