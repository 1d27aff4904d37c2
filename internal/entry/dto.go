package entry

import (
	"fmt"
	"strings"
	"time"

	internal "github.com/veidstad/craft-tracker/internal"
)

// EntryInput is the raw payload for creating or updating a work entry.
// Totals are deliberately absent: callers never supply them, the service
// always recomputes them from these source fields.
type EntryInput struct {
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	JobID          string  `json:"job_id"`
	HourlyRateUsed float64 `json:"hourly_rate_used"`
	KmRateUsed     float64 `json:"km_rate_used"`
	Kilometers     float64 `json:"kilometers"`
}

// ExpenseInput is one expense attached to the entry. ReceiptData carries
// a new receipt file to upload; ReceiptPath carries an already-stored
// receipt to keep. At most one of the two is expected.
type ExpenseInput struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	ReceiptPath string  `json:"receipt_path,omitempty"`
	ReceiptData []byte  `json:"-"`
	ReceiptExt  string  `json:"-"`
}

const dateLayout = "2006-01-02"

func (dto EntryInput) Validate() error {
	if _, err := time.Parse(dateLayout, dto.Date); err != nil {
		return internal.NewValidationFieldError("date",
			fmt.Sprintf("date %q is not a valid YYYY-MM-DD day", dto.Date), internal.ErrCodeInvalidDate)
	}

	startAt, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		return internal.NewValidationFieldError("start_time",
			fmt.Sprintf("start time %q is not a valid timestamp", dto.StartTime), internal.ErrCodeInvalidTimestamp)
	}
	endAt, err := time.Parse(time.RFC3339, dto.EndTime)
	if err != nil {
		return internal.NewValidationFieldError("end_time",
			fmt.Sprintf("end time %q is not a valid timestamp", dto.EndTime), internal.ErrCodeInvalidTimestamp)
	}

	// stricter than the calculation module: a work session must have a
	// positive span, so equal timestamps are rejected here too
	if !endAt.After(startAt) {
		return internal.NewValidationFieldError("end_time",
			"end time must be after start time", internal.ErrCodeOrderingViolation)
	}

	if dto.JobID == "" {
		return internal.NewValidationFieldError("job_id", "job id is required", internal.ErrCodeValidationFailed)
	}
	if dto.HourlyRateUsed < 0 {
		return internal.NewValidationFieldError("hourly_rate_used", "hourly rate must not be negative", internal.ErrCodeNegativeInput)
	}
	if dto.KmRateUsed < 0 {
		return internal.NewValidationFieldError("km_rate_used", "km rate must not be negative", internal.ErrCodeNegativeInput)
	}
	if dto.Kilometers < 0 {
		return internal.NewValidationFieldError("kilometers", "kilometers must not be negative", internal.ErrCodeNegativeInput)
	}

	return nil
}

func (dto ExpenseInput) Validate() error {
	if dto.Amount < 0 {
		return internal.NewValidationFieldError("amount", "amount must not be negative", internal.ErrCodeInvalidAmount)
	}
	if strings.TrimSpace(dto.Category) == "" {
		return internal.NewValidationFieldError("category", "category is required", internal.ErrCodeInvalidCategory)
	}
	if len(dto.ReceiptData) > 0 && dto.ReceiptExt == "" {
		return internal.NewValidationFieldError("receipt_ext", "receipt file extension is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
