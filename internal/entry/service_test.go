package entry_test

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/veidstad/craft-tracker/internal"
	"github.com/veidstad/craft-tracker/internal/entry"
	expenseSqlite "github.com/veidstad/craft-tracker/internal/expense/sqlite"
	"github.com/veidstad/craft-tracker/internal/storage"
	workentrySqlite "github.com/veidstad/craft-tracker/internal/workentry/sqlite"

	"github.com/veidstad/craft-tracker/internal/expense"
	"github.com/veidstad/craft-tracker/internal/workentry"
)

func TestEntryService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Entry Service Suite")
}

// Mock receipt storage for testing
type mockReceiptStorage struct {
	files       map[string][]byte
	failOnPath  string
	deleteError error
	deleteCalls [][]string
}

func newMockReceiptStorage() *mockReceiptStorage {
	return &mockReceiptStorage{files: make(map[string][]byte)}
}

func (m *mockReceiptStorage) Upload(path string, data []byte) (string, error) {
	if m.failOnPath != "" && path == m.failOnPath {
		return "", errors.New("upload refused")
	}
	m.files[path] = data
	return path, nil
}

func (m *mockReceiptStorage) UploadBatch(paths []string, blobs [][]byte) ([]string, error) {
	uploaded := make([]string, 0, len(paths))
	for i, path := range paths {
		stored, err := m.Upload(path, blobs[i])
		if err != nil {
			_ = m.Delete(uploaded)
			return nil, err
		}
		uploaded = append(uploaded, stored)
	}
	return uploaded, nil
}

func (m *mockReceiptStorage) Delete(paths []string) error {
	m.deleteCalls = append(m.deleteCalls, paths)
	if m.deleteError != nil {
		return m.deleteError
	}
	for _, path := range paths {
		delete(m.files, path)
	}
	return nil
}

var _ = Describe("EntryService", func() {
	var (
		store        *storage.Store
		entries      workentry.Repository
		expenses     expense.Repository
		receipts     *mockReceiptStorage
		entryService *entry.Service
	)

	validInput := func() entry.EntryInput {
		return entry.EntryInput{
			Date:           "2025-06-15",
			StartTime:      "2025-06-15T08:00:00+02:00",
			EndTime:        "2025-06-15T14:00:00+02:00",
			JobID:          "job-1",
			HourlyRateUsed: 500,
			KmRateUsed:     5,
			Kilometers:     20,
		}
	}

	BeforeEach(func() {
		var err error
		store, err = storage.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())

		entries = workentrySqlite.NewWorkEntryRepository(store.DB())
		expenses = expenseSqlite.NewExpenseRepository(store.DB())
		receipts = newMockReceiptStorage()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		entryService = entry.NewService(store, entries, expenses, receipts, "owner-1", logger)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("CreateEntry", func() {
		It("computes every derived total from the raw input", func() {
			created, createdExpenses, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.LaborTotal).To(Equal(3000.00))
			Expect(created.KmTotal).To(Equal(100.00))
			Expect(created.ExpensesTotal).To(Equal(150.00))
			Expect(created.GrandTotal).To(Equal(3250.00))
			Expect(created.ID).NotTo(BeEmpty())
			Expect(created.CreatedAt).NotTo(BeEmpty())
			Expect(createdExpenses).To(HaveLen(1))
			Expect(createdExpenses[0].WorkEntryID).To(Equal(created.ID))
		})

		It("persists the entry and its expenses together", func() {
			created, _, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials"},
				{Amount: 40, Category: "parking"},
			})
			Expect(err).NotTo(HaveOccurred())

			stored, err := entries.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.GrandTotal).To(Equal(3290.00))

			linked, err := expenses.GetByWorkEntryID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(linked).To(HaveLen(2))
		})

		It("supports entries without expenses", func() {
			created, createdExpenses, err := entryService.CreateEntry(validInput(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(createdExpenses).To(BeEmpty())
			Expect(created.ExpensesTotal).To(Equal(0.00))
			Expect(created.GrandTotal).To(Equal(3100.00))
		})

		It("rejects an end time not strictly after the start time before any I/O", func() {
			input := validInput()
			input.EndTime = input.StartTime

			_, _, err := entryService.CreateEntry(input, nil)
			Expect(internal.HasCode(err, internal.ErrCodeValidationFailed) ||
				internal.HasCode(err, internal.ErrCodeOrderingViolation)).To(BeTrue())

			all, err := entries.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
			Expect(receipts.files).To(BeEmpty())
		})

		It("rejects negative kilometers", func() {
			input := validInput()
			input.Kilometers = -1

			_, _, err := entryService.CreateEntry(input, nil)
			Expect(err).To(HaveOccurred())

			all, err := entries.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})

		It("rejects an expense without a category", func() {
			_, _, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 10, Category: "  "},
			})
			Expect(err).To(HaveOccurred())

			all, err := entries.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})

		It("uploads receipts keyed by owner, entry and expense id", func() {
			created, createdExpenses, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials", ReceiptData: []byte("jpeg-bytes"), ReceiptExt: ".jpg"},
			})
			Expect(err).NotTo(HaveOccurred())

			path := createdExpenses[0].ReceiptPath
			Expect(path).To(Equal(fmt.Sprintf("owner-1/%s/%s.jpg", created.ID, createdExpenses[0].ID)))
			Expect(receipts.files).To(HaveKey(path))
		})

		It("rolls back earlier uploads when one upload in the batch fails", func() {
			// every upload after the first is refused
			stage := newMockReceiptStorage()
			uploads := 0
			stageWrapper := &callbackReceiptStorage{
				upload: func(path string, data []byte) (string, error) {
					uploads++
					if uploads > 1 {
						return "", errors.New("disk full")
					}
					return stage.Upload(path, data)
				},
				delete: stage.Delete,
			}
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			failing := entry.NewService(store, entries, expenses, stageWrapper, "owner-1", logger)

			_, _, err := failing.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 1, Category: "a", ReceiptData: []byte("x"), ReceiptExt: ".jpg"},
				{Amount: 2, Category: "b", ReceiptData: []byte("y"), ReceiptExt: ".jpg"},
			})
			Expect(internal.HasCode(err, internal.ErrCodeReceiptStorage)).To(BeTrue())

			Expect(stage.files).To(BeEmpty())
			all, err := entries.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})
	})

	Describe("UpdateEntry", func() {
		It("fails with not-found for an unknown id", func() {
			_, _, err := entryService.UpdateEntry("missing", validInput(), nil)
			Expect(internal.HasCode(err, internal.ErrCodeEntryNotFound)).To(BeTrue())
		})

		It("recomputes totals and preserves the original createdAt", func() {
			created, _, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials"},
			})
			Expect(err).NotTo(HaveOccurred())

			input := validInput()
			input.EndTime = "2025-06-15T16:00:00+02:00" // 8 hours now
			updated, _, err := entryService.UpdateEntry(created.ID, input, []entry.ExpenseInput{
				{Amount: 75, Category: "materials"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.LaborTotal).To(Equal(4000.00))
			Expect(updated.ExpensesTotal).To(Equal(75.00))
			Expect(updated.GrandTotal).To(Equal(4175.00))
			Expect(updated.CreatedAt).To(Equal(created.CreatedAt))
		})

		It("replaces the whole expense set", func() {
			created, oldExpenses, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials"},
				{Amount: 40, Category: "parking"},
			})
			Expect(err).NotTo(HaveOccurred())

			_, newExpenses, err := entryService.UpdateEntry(created.ID, validInput(), []entry.ExpenseInput{
				{Amount: 10, Category: "tolls"},
			})
			Expect(err).NotTo(HaveOccurred())

			linked, err := expenses.GetByWorkEntryID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(linked).To(HaveLen(1))
			Expect(linked[0].ID).To(Equal(newExpenses[0].ID))

			_, err = expenses.GetByID(oldExpenses[0].ID)
			Expect(err).To(HaveOccurred())
		})

		It("deletes superseded receipt files after a successful commit", func() {
			created, createdExpenses, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials", ReceiptData: []byte("old"), ReceiptExt: ".jpg"},
			})
			Expect(err).NotTo(HaveOccurred())
			oldPath := createdExpenses[0].ReceiptPath
			Expect(receipts.files).To(HaveKey(oldPath))

			_, _, err = entryService.UpdateEntry(created.ID, validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials", ReceiptData: []byte("new"), ReceiptExt: ".jpg"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts.files).NotTo(HaveKey(oldPath))
		})

		It("keeps an existing receipt referenced by path", func() {
			created, createdExpenses, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials", ReceiptData: []byte("keep"), ReceiptExt: ".jpg"},
			})
			Expect(err).NotTo(HaveOccurred())
			keptPath := createdExpenses[0].ReceiptPath

			_, newExpenses, err := entryService.UpdateEntry(created.ID, validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials", ReceiptPath: keptPath},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(newExpenses[0].ReceiptPath).To(Equal(keptPath))
			Expect(receipts.files).To(HaveKey(keptPath))
		})

		It("does not fail the update when superseded-file cleanup fails", func() {
			created, _, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials", ReceiptData: []byte("old"), ReceiptExt: ".jpg"},
			})
			Expect(err).NotTo(HaveOccurred())

			receipts.deleteError = errors.New("storage offline")
			updated, _, err := entryService.UpdateEntry(created.ID, validInput(), []entry.ExpenseInput{
				{Amount: 75, Category: "materials"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ExpensesTotal).To(Equal(75.00))
		})
	})

	Describe("DeleteEntry", func() {
		It("fails with not-found for an unknown id", func() {
			err := entryService.DeleteEntry("missing")
			Expect(internal.HasCode(err, internal.ErrCodeEntryNotFound)).To(BeTrue())
		})

		It("removes the entry, its expenses and their receipt files", func() {
			created, createdExpenses, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials", ReceiptData: []byte("jpeg"), ReceiptExt: ".jpg"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(entryService.DeleteEntry(created.ID)).To(Succeed())

			_, err = entries.GetByID(created.ID)
			Expect(err).To(HaveOccurred())
			linked, err := expenses.GetByWorkEntryID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(linked).To(BeEmpty())
			Expect(receipts.files).NotTo(HaveKey(createdExpenses[0].ReceiptPath))
		})

		It("keeps the records when receipt file deletion fails", func() {
			created, _, err := entryService.CreateEntry(validInput(), []entry.ExpenseInput{
				{Amount: 150, Category: "materials", ReceiptData: []byte("jpeg"), ReceiptExt: ".jpg"},
			})
			Expect(err).NotTo(HaveOccurred())

			receipts.deleteError = errors.New("storage offline")
			err = entryService.DeleteEntry(created.ID)
			Expect(internal.HasCode(err, internal.ErrCodeReceiptStorage)).To(BeTrue())

			_, err = entries.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})

// callbackReceiptStorage lets a test drive upload behavior per call.
type callbackReceiptStorage struct {
	upload func(path string, data []byte) (string, error)
	delete func(paths []string) error
}

func (c *callbackReceiptStorage) Upload(path string, data []byte) (string, error) {
	return c.upload(path, data)
}

func (c *callbackReceiptStorage) UploadBatch(paths []string, blobs [][]byte) ([]string, error) {
	uploaded := make([]string, 0, len(paths))
	for i, path := range paths {
		stored, err := c.upload(path, blobs[i])
		if err != nil {
			_ = c.delete(uploaded)
			return nil, err
		}
		uploaded = append(uploaded, stored)
	}
	return uploaded, nil
}

func (c *callbackReceiptStorage) Delete(paths []string) error {
	return c.delete(paths)
}
