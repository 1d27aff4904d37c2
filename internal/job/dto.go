package job

import (
	internal "github.com/veidstad/craft-tracker/internal"
)

// CreateJobDTO is the payload for creating or updating a job.
type CreateJobDTO struct {
	Name              string  `json:"name"`
	Client            string  `json:"client"`
	DefaultHourlyRate float64 `json:"default_hourly_rate"`
	Active            bool    `json:"active"`
}

func (dto CreateJobDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if dto.DefaultHourlyRate < 0 {
		return internal.NewValidationFieldError("default_hourly_rate", "default hourly rate must not be negative", internal.ErrCodeNegativeInput)
	}
	return nil
}
