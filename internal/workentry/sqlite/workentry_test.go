package sqlite_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/veidstad/craft-tracker/internal"
	"github.com/veidstad/craft-tracker/internal/storage"
	"github.com/veidstad/craft-tracker/internal/workentry"
	"github.com/veidstad/craft-tracker/internal/workentry/sqlite"
)

func TestWorkEntryRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "WorkEntryRepository Suite")
}

var _ = Describe("WorkEntryRepository", func() {
	var (
		store *storage.Store
		repo  workentry.Repository
	)

	newEntry := func(id, date, jobID string) *workentry.WorkEntry {
		return &workentry.WorkEntry{
			ID:             id,
			Date:           date,
			StartTime:      date + "T08:00:00+02:00",
			EndTime:        date + "T14:00:00+02:00",
			JobID:          jobID,
			HourlyRateUsed: 500,
			KmRateUsed:     5,
			Kilometers:     20,
			LaborTotal:     3000,
			KmTotal:        100,
			ExpensesTotal:  0,
			GrandTotal:     3100,
			CreatedAt:      time.Now().Format(time.RFC3339),
		}
	}

	BeforeEach(func() {
		var err error
		store, err = storage.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		repo = sqlite.NewWorkEntryRepository(store.DB())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	It("stores and retrieves an entry with its rate snapshots", func() {
		Expect(repo.Create(newEntry("entry-1", "2025-06-15", "job-1"))).To(Succeed())

		found, err := repo.GetByID("entry-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.HourlyRateUsed).To(Equal(500.00))
		Expect(found.StartTime).To(Equal("2025-06-15T08:00:00+02:00"))
	})

	It("fails update with not-found for an absent id", func() {
		err := repo.Update(newEntry("missing", "2025-06-15", "job-1"))
		Expect(internal.HasCode(err, internal.ErrCodeEntryNotFound)).To(BeTrue())
	})

	Describe("GetByDateRange", func() {
		BeforeEach(func() {
			for _, date := range []string{"2025-06-14", "2025-06-15", "2025-06-16", "2025-06-17"} {
				Expect(repo.Create(newEntry("entry-"+date, date, "job-1"))).To(Succeed())
			}
		})

		It("includes both bounds", func() {
			entries, err := repo.GetByDateRange("2025-06-15", "2025-06-16")
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Date).To(Equal("2025-06-15"))
			Expect(entries[1].Date).To(Equal("2025-06-16"))
		})

		It("returns an empty result for a range with no entries", func() {
			entries, err := repo.GetByDateRange("2025-07-01", "2025-07-31")
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("GetByJobID", func() {
		It("returns only entries for the given job", func() {
			Expect(repo.Create(newEntry("entry-1", "2025-06-15", "job-1"))).To(Succeed())
			Expect(repo.Create(newEntry("entry-2", "2025-06-16", "job-2"))).To(Succeed())
			Expect(repo.Create(newEntry("entry-3", "2025-06-17", "job-1"))).To(Succeed())

			entries, err := repo.GetByJobID("job-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
		})
	})
})
