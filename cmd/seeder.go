package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/veidstad/craft-tracker/internal/entry"
	"github.com/veidstad/craft-tracker/internal/job"

	expenseDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/expense"
	jobDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/job"
	workentryDatamodel "github.com/veidstad/craft-tracker/internal/core/datamodel/workentry"
)

var (
	clearData bool

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Populate the store with sample data",
		RunE:  runSeed,
	}
)

func runSeed(_ *cobra.Command, _ []string) error {
	deps, err := initializeDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	if clearData {
		err := deps.Store.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("1 = 1").Delete(&expenseDatamodel.Expense{}).Error; err != nil {
				return err
			}
			if err := tx.Where("1 = 1").Delete(&workentryDatamodel.WorkEntry{}).Error; err != nil {
				return err
			}
			return tx.Where("1 = 1").Delete(&jobDatamodel.Job{}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
		deps.Logger.Info("existing data cleared")
	}

	roofJob, err := deps.JobService.CreateJob(job.CreateJobDTO{
		Name:              "Roof repair",
		Client:            "Berg",
		DefaultHourlyRate: 500,
		Active:            true,
	})
	if err != nil {
		return err
	}

	barnJob, err := deps.JobService.CreateJob(job.CreateJobDTO{
		Name:              "Barn renovation",
		Client:            "Lund",
		DefaultHourlyRate: 450,
		Active:            false,
	})
	if err != nil {
		return err
	}

	seedEntries := []struct {
		input    entry.EntryInput
		expenses []entry.ExpenseInput
	}{
		{
			input: entry.EntryInput{
				Date:           "2025-06-15",
				StartTime:      "2025-06-15T08:00:00+02:00",
				EndTime:        "2025-06-15T14:00:00+02:00",
				JobID:          roofJob.ID,
				HourlyRateUsed: roofJob.DefaultHourlyRate,
				KmRateUsed:     5,
				Kilometers:     20,
			},
			expenses: []entry.ExpenseInput{
				{Amount: 150, Category: "materials"},
			},
		},
		{
			input: entry.EntryInput{
				Date:           "2025-06-16",
				StartTime:      "2025-06-16T07:30:00+02:00",
				EndTime:        "2025-06-16T16:00:00+02:00",
				JobID:          roofJob.ID,
				HourlyRateUsed: roofJob.DefaultHourlyRate,
				KmRateUsed:     5,
				Kilometers:     20,
			},
			expenses: []entry.ExpenseInput{
				{Amount: 820.5, Category: "materials"},
				{Amount: 45, Category: "parking"},
			},
		},
		{
			input: entry.EntryInput{
				Date:           "2025-06-18",
				StartTime:      "2025-06-18T09:00:00+02:00",
				EndTime:        "2025-06-18T12:00:00+02:00",
				JobID:          barnJob.ID,
				HourlyRateUsed: barnJob.DefaultHourlyRate,
				KmRateUsed:     5,
				Kilometers:     64,
			},
		},
	}

	for _, seed := range seedEntries {
		if _, _, err := deps.EntryService.CreateEntry(seed.input, seed.expenses); err != nil {
			return err
		}
	}

	fmt.Printf("seeded %d jobs and %d work entries\n", 2, len(seedEntries))
	return nil
}
