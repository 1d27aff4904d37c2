package backup

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	internal "github.com/veidstad/craft-tracker/internal"
)

// rawDocument is the loosely-typed first parse of a backup document.
// Field-level validation happens against these raw values so that a
// wrong type is reported as such instead of silently zeroing.
type rawDocument struct {
	version     json.RawMessage
	exportedAt  json.RawMessage
	jobs        []json.RawMessage
	workEntries []json.RawMessage
	expenses    []json.RawMessage
}

func parseDocument(data []byte) (*rawDocument, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, internal.NewValidationError("backup document is not a JSON object", internal.ErrCodeValidationFailed).WithCause(err)
	}

	raw := &rawDocument{
		version:    top["version"],
		exportedAt: top["exportedAt"],
	}

	var err error
	if raw.jobs, err = parseSequence(top, "jobs"); err != nil {
		return nil, err
	}
	if raw.workEntries, err = parseSequence(top, "workEntries"); err != nil {
		return nil, err
	}
	if raw.expenses, err = parseSequence(top, "expenses"); err != nil {
		return nil, err
	}

	return raw, nil
}

func parseSequence(top map[string]json.RawMessage, key string) ([]json.RawMessage, error) {
	value, ok := top[key]
	if !ok {
		return nil, internal.NewValidationError(
			fmt.Sprintf("backup document is missing %q", key), internal.ErrCodeValidationFailed)
	}
	var seq []json.RawMessage
	if err := json.Unmarshal(value, &seq); err != nil {
		return nil, internal.NewValidationError(
			fmt.Sprintf("%q must be an array", key), internal.ErrCodeValidationFailed).WithCause(err)
	}
	return seq, nil
}

// checkVersion enforces exact version 1; anything else, including an
// absent version, is a hard failure naming the offending value.
func (raw *rawDocument) checkVersion() error {
	if raw.version == nil {
		return internal.NewValidationError(
			"unsupported backup version: missing", internal.ErrCodeUnsupportedVersion)
	}

	var version float64
	if err := json.Unmarshal(raw.version, &version); err != nil {
		return internal.NewValidationError(
			fmt.Sprintf("unsupported backup version: %s", string(raw.version)), internal.ErrCodeUnsupportedVersion)
	}
	if version != SupportedVersion {
		return internal.NewValidationError(
			fmt.Sprintf("unsupported backup version: %s", string(raw.version)), internal.ErrCodeUnsupportedVersion)
	}

	return nil
}

func (raw *rawDocument) checkExportedAt() error {
	if raw.exportedAt == nil {
		return internal.NewValidationError(
			`"exportedAt" is missing`, internal.ErrCodeInvalidTimestamp)
	}
	var exportedAt string
	if err := json.Unmarshal(raw.exportedAt, &exportedAt); err != nil {
		return internal.NewValidationError(
			`"exportedAt" must be a timestamp string`, internal.ErrCodeInvalidTimestamp).WithCause(err)
	}
	if _, err := time.Parse(time.RFC3339, exportedAt); err != nil {
		return internal.NewValidationError(
			fmt.Sprintf(`"exportedAt" %q is not a valid timestamp`, exportedAt), internal.ErrCodeInvalidTimestamp).WithCause(err)
	}
	return nil
}

// recordFields wraps one raw record for field-by-field validation.
// Every error names the record kind, its index in the sequence and the
// field, fixing error identity regardless of which check fires.
type recordFields struct {
	kind   string
	index  int
	fields map[string]interface{}
}

func parseRecord(kind string, index int, raw json.RawMessage) (*recordFields, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, internal.NewValidationError(
			fmt.Sprintf("%s[%d] is not an object", kind, index), internal.ErrCodeValidationFailed).WithCause(err)
	}
	return &recordFields{kind: kind, index: index, fields: fields}, nil
}

func (r *recordFields) fail(field, problem string, code internal.ErrorCode) error {
	return internal.NewValidationError(
		fmt.Sprintf("%s[%d]: field %q %s", r.kind, r.index, field, problem), code)
}

func (r *recordFields) requiredString(field string) (string, error) {
	value, ok := r.fields[field]
	if !ok {
		return "", r.fail(field, "is missing", internal.ErrCodeValidationFailed)
	}
	s, ok := value.(string)
	if !ok {
		return "", r.fail(field, "must be a string", internal.ErrCodeValidationFailed)
	}
	if s == "" {
		return "", r.fail(field, "must not be empty", internal.ErrCodeValidationFailed)
	}
	return s, nil
}

func (r *recordFields) optionalString(field string) (string, error) {
	value, ok := r.fields[field]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", r.fail(field, "must be a string", internal.ErrCodeValidationFailed)
	}
	return s, nil
}

// requiredNumber rejects non-finite values outright. NaN cannot appear in
// parsed JSON but documents built in-process could carry one, and a NaN
// total must never be restored, so it is a hard failure rather than a
// zero default.
func (r *recordFields) requiredNumber(field string) (float64, error) {
	value, ok := r.fields[field]
	if !ok {
		return 0, r.fail(field, "is missing", internal.ErrCodeValidationFailed)
	}
	n, ok := value.(float64)
	if !ok {
		return 0, r.fail(field, "must be a number", internal.ErrCodeValidationFailed)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, r.fail(field, "must be a finite number", internal.ErrCodeValidationFailed)
	}
	return n, nil
}

func (r *recordFields) nonNegativeNumber(field string) (float64, error) {
	n, err := r.requiredNumber(field)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, r.fail(field, "must not be negative", internal.ErrCodeNegativeInput)
	}
	return n, nil
}

func (r *recordFields) requiredBool(field string) (bool, error) {
	value, ok := r.fields[field]
	if !ok {
		return false, r.fail(field, "is missing", internal.ErrCodeValidationFailed)
	}
	b, ok := value.(bool)
	if !ok {
		return false, r.fail(field, "must be a boolean", internal.ErrCodeValidationFailed)
	}
	return b, nil
}

func (r *recordFields) requiredTimestamp(field string) (string, error) {
	s, err := r.requiredString(field)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return "", r.fail(field, fmt.Sprintf("%q is not a valid timestamp", s), internal.ErrCodeInvalidTimestamp)
	}
	return s, nil
}

func (r *recordFields) requiredDate(field string) (string, error) {
	s, err := r.requiredString(field)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", r.fail(field, fmt.Sprintf("%q is not a valid YYYY-MM-DD day", s), internal.ErrCodeInvalidDate)
	}
	return s, nil
}

func validateJobRecord(index int, raw json.RawMessage) (JobRecord, error) {
	r, err := parseRecord("jobs", index, raw)
	if err != nil {
		return JobRecord{}, err
	}

	var rec JobRecord
	if rec.ID, err = r.requiredString("id"); err != nil {
		return JobRecord{}, err
	}
	if rec.Name, err = r.requiredString("name"); err != nil {
		return JobRecord{}, err
	}
	if rec.Client, err = r.optionalString("client"); err != nil {
		return JobRecord{}, err
	}
	if rec.DefaultHourlyRate, err = r.nonNegativeNumber("defaultHourlyRate"); err != nil {
		return JobRecord{}, err
	}
	if rec.Active, err = r.requiredBool("active"); err != nil {
		return JobRecord{}, err
	}
	if rec.CreatedAt, err = r.requiredTimestamp("createdAt"); err != nil {
		return JobRecord{}, err
	}

	return rec, nil
}

func validateWorkEntryRecord(index int, raw json.RawMessage) (WorkEntryRecord, error) {
	r, err := parseRecord("workEntries", index, raw)
	if err != nil {
		return WorkEntryRecord{}, err
	}

	var rec WorkEntryRecord
	if rec.ID, err = r.requiredString("id"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.Date, err = r.requiredDate("date"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.StartTime, err = r.requiredTimestamp("startTime"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.EndTime, err = r.requiredTimestamp("endTime"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.JobID, err = r.requiredString("jobId"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.HourlyRateUsed, err = r.nonNegativeNumber("hourlyRateUsed"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.KmRateUsed, err = r.nonNegativeNumber("kmRateUsed"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.Kilometers, err = r.nonNegativeNumber("kilometers"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.LaborTotal, err = r.nonNegativeNumber("laborTotal"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.KmTotal, err = r.nonNegativeNumber("kmTotal"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.ExpensesTotal, err = r.nonNegativeNumber("expensesTotal"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.GrandTotal, err = r.nonNegativeNumber("grandTotal"); err != nil {
		return WorkEntryRecord{}, err
	}
	if rec.CreatedAt, err = r.requiredTimestamp("createdAt"); err != nil {
		return WorkEntryRecord{}, err
	}

	return rec, nil
}

func validateExpenseRecord(index int, raw json.RawMessage) (ExpenseRecord, error) {
	r, err := parseRecord("expenses", index, raw)
	if err != nil {
		return ExpenseRecord{}, err
	}

	var rec ExpenseRecord
	if rec.ID, err = r.requiredString("id"); err != nil {
		return ExpenseRecord{}, err
	}
	if rec.WorkEntryID, err = r.requiredString("workEntryId"); err != nil {
		return ExpenseRecord{}, err
	}
	if rec.Amount, err = r.nonNegativeNumber("amount"); err != nil {
		return ExpenseRecord{}, err
	}
	if rec.Category, err = r.requiredString("category"); err != nil {
		return ExpenseRecord{}, err
	}
	if rec.ReceiptPath, err = r.optionalString("receiptPath"); err != nil {
		return ExpenseRecord{}, err
	}
	if rec.CreatedAt, err = r.requiredTimestamp("createdAt"); err != nil {
		return ExpenseRecord{}, err
	}

	return rec, nil
}
