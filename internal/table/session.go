package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"chronology/internal/model"
)

// ErrIncomplete is returned when saving a row without a timestamp or model name.
var ErrIncomplete = errors.New("timestamp and model name are required")

// Applier persists record changes for a project.
type Applier interface {
	CreateRecord(ctx context.Context, projectID string, patch model.RecordPatch) (*model.MetricRecord, error)
	UpdateRecord(ctx context.Context, projectID, recordID string, patch model.RecordPatch) (*model.MetricRecord, error)
	DeleteRecord(ctx context.Context, projectID, recordID string) error
}

// Changes is a staged bulk edit.
type Changes struct {
	Deletes   []string                     `json:"deletes,omitempty"`
	Updates   map[string]model.RecordPatch `json:"updates,omitempty"`
	Additions []model.RecordPatch          `json:"additions,omitempty"`
}

// Empty reports whether there is nothing to apply.
func (c Changes) Empty() bool {
	return len(c.Deletes) == 0 && len(c.Updates) == 0 && len(c.Additions) == 0
}

// Failure describes one change that could not be applied.
type Failure struct {
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// Result reports what a bulk apply did.
type Result struct {
	Deleted  []string             `json:"deleted"`
	Updated  []string             `json:"updated"`
	Created  []model.MetricRecord `json:"created"`
	Skipped  int                  `json:"skipped"`
	Failures []Failure            `json:"failures,omitempty"`
}

// Err returns an error summarizing the failures, or nil.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = fmt.Errorf("%s %s: %s", f.Op, f.ID, f.Error)
	}
	return errors.Join(errs...)
}

// Apply commits changes in order: deletions, then updates of records not
// being deleted, then additions that have both a timestamp and a model
// name. Incomplete additions are counted as skipped. A failing change is
// recorded and the rest still run.
func Apply(ctx context.Context, a Applier, projectID string, ch Changes) Result {
	res := Result{Deleted: []string{}, Updated: []string{}, Created: []model.MetricRecord{}}

	deleted := make(map[string]bool, len(ch.Deletes))
	for _, id := range ch.Deletes {
		if deleted[id] {
			continue
		}
		deleted[id] = true
		if err := a.DeleteRecord(ctx, projectID, id); err != nil {
			res.Failures = append(res.Failures, Failure{Op: "delete", ID: id, Error: err.Error()})
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}

	ids := make([]string, 0, len(ch.Updates))
	for id := range ch.Updates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if deleted[id] {
			continue
		}
		if _, err := a.UpdateRecord(ctx, projectID, id, ch.Updates[id]); err != nil {
			res.Failures = append(res.Failures, Failure{Op: "update", ID: id, Error: err.Error()})
			continue
		}
		res.Updated = append(res.Updated, id)
	}

	for i, add := range ch.Additions {
		if !add.Complete() {
			res.Skipped++
			continue
		}
		r, err := a.CreateRecord(ctx, projectID, add)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Op: "create", ID: fmt.Sprintf("#%d", i), Error: err.Error()})
			continue
		}
		res.Created = append(res.Created, *r)
	}
	return res
}

// Summary counts pending bulk changes.
type Summary struct {
	Edits     int
	Deletions int
	Additions int
}

// Total returns the number of pending changes.
func (s Summary) Total() int { return s.Edits + s.Deletions + s.Additions }

func (s Summary) String() string {
	return fmt.Sprintf("%d edited, %d deleted, %d added", s.Edits, s.Deletions, s.Additions)
}

// Session tracks the edit state of a project's table: one row in
// single-row edit mode, an add form, and the staged changes of global
// (bulk) edit mode.
type Session struct {
	customs []string
	now     func() time.Time

	editingID  string
	editValues Values
	addForm    Values

	global      bool
	bulkEdits   map[string]Values
	bulkDeletes map[string]bool
	additions   []Values
}

// NewSession creates a session. customs lists the enabled custom metric
// ids, which decide what lands in AdditionalMetrics on save.
func NewSession(customs []string) *Session {
	s := &Session{customs: slices.Clone(customs), now: time.Now}
	s.reset()
	s.addForm = InitialValues(s.now())
	return s
}

// SetClock overrides the time source used for blank rows.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
	s.addForm = InitialValues(now())
	if len(s.additions) == 1 && !s.additions[0].Complete() {
		s.additions[0] = InitialValues(now())
	}
}

// SetCustoms replaces the enabled custom metric ids.
func (s *Session) SetCustoms(customs []string) {
	s.customs = slices.Clone(customs)
}

func (s *Session) reset() {
	s.global = false
	s.bulkEdits = make(map[string]Values)
	s.bulkDeletes = make(map[string]bool)
	s.additions = []Values{InitialValues(s.now())}
}

// ========== Single-row edit ==========

// Begin starts editing r. In global mode the record is staged for bulk
// edit instead.
func (s *Session) Begin(r model.MetricRecord) {
	if s.global {
		if _, ok := s.bulkEdits[r.ID]; !ok {
			s.bulkEdits[r.ID] = EditValues(r)
		}
		return
	}
	s.editingID = r.ID
	s.editValues = EditValues(r)
}

// Editing returns the id of the row in single-row edit.
func (s *Session) Editing() (string, bool) {
	return s.editingID, s.editingID != ""
}

// Value returns a field of the row being edited.
func (s *Session) Value(field string) any {
	return s.editValues[field]
}

// Set changes a field of the row being edited.
func (s *Session) Set(field string, value any) {
	if s.editingID == "" {
		return
	}
	s.editValues[field] = value
}

// Cancel abandons the single-row edit.
func (s *Session) Cancel() {
	s.editingID = ""
	s.editValues = nil
}

// Save writes the single-row edit through a and ends it.
func (s *Session) Save(ctx context.Context, a Applier, projectID string) (*model.MetricRecord, error) {
	if s.editingID == "" {
		return nil, errors.New("no row is being edited")
	}
	if !s.editValues.Complete() {
		return nil, ErrIncomplete
	}
	r, err := a.UpdateRecord(ctx, projectID, s.editingID, SeparateMetrics(s.editValues, s.customs))
	if err != nil {
		return nil, err
	}
	s.Cancel()
	return r, nil
}

// ========== Add form ==========

// AddForm returns the values of the add-record form.
func (s *Session) AddForm() Values {
	return s.addForm
}

// SetAddField changes a field of the add-record form.
func (s *Session) SetAddField(field string, value any) {
	s.addForm[field] = value
}

// SubmitAdd creates a record from the add form and resets it.
func (s *Session) SubmitAdd(ctx context.Context, a Applier, projectID string) (*model.MetricRecord, error) {
	if !s.addForm.Complete() {
		return nil, ErrIncomplete
	}
	r, err := a.CreateRecord(ctx, projectID, SeparateMetrics(s.addForm, s.customs))
	if err != nil {
		return nil, err
	}
	s.addForm = InitialValues(s.now())
	return r, nil
}

// ========== Global edit ==========

// EnterGlobal switches to global edit mode, ending any single-row edit.
func (s *Session) EnterGlobal() {
	s.Cancel()
	s.global = true
}

// Global reports whether global edit mode is on.
func (s *Session) Global() bool {
	return s.global
}

// StageEdit sets a field on r in the bulk edit, seeding the staged values
// from r on first touch.
func (s *Session) StageEdit(r model.MetricRecord, field string, value any) {
	vals, ok := s.bulkEdits[r.ID]
	if !ok {
		vals = EditValues(r)
		s.bulkEdits[r.ID] = vals
	}
	vals[field] = value
}

// Staged returns the staged values for a record.
func (s *Session) Staged(recordID string) (Values, bool) {
	v, ok := s.bulkEdits[recordID]
	return v, ok
}

// ToggleDelete marks or unmarks a record for deletion.
func (s *Session) ToggleDelete(recordID string) {
	if s.bulkDeletes[recordID] {
		delete(s.bulkDeletes, recordID)
		return
	}
	s.bulkDeletes[recordID] = true
}

// MarkedForDeletion reports whether a record is marked for deletion.
func (s *Session) MarkedForDeletion(recordID string) bool {
	return s.bulkDeletes[recordID]
}

// Additions returns the add rows of global edit mode. The last row is
// always blank or incomplete.
func (s *Session) Additions() []Values {
	return s.additions
}

// SetAddition changes a field of add row i. Completing the last row
// appends a new blank one.
func (s *Session) SetAddition(i int, field string, value any) {
	if i < 0 || i >= len(s.additions) {
		return
	}
	s.additions[i][field] = value
	if i == len(s.additions)-1 && s.additions[i].Complete() {
		s.additions = append(s.additions, InitialValues(s.now()))
	}
}

// Pending summarizes the staged changes.
func (s *Session) Pending() Summary {
	sum := Summary{Edits: len(s.bulkEdits), Deletions: len(s.bulkDeletes)}
	for _, a := range s.additions {
		if a.Complete() {
			sum.Additions++
		}
	}
	return sum
}

// HasPendingChanges reports whether leaving global mode would lose work.
func (s *Session) HasPendingChanges() bool {
	return s.Pending().Total() > 0
}

// ExitGlobal leaves global edit mode when nothing is pending and reports
// false. With pending changes it stays in global mode and reports true;
// the caller must confirm with Commit or Discard.
func (s *Session) ExitGlobal() (needsConfirm bool) {
	if s.HasPendingChanges() {
		return true
	}
	s.Discard()
	return false
}

// Changes converts the staged state into a Changes set.
func (s *Session) Changes() Changes {
	var ch Changes
	for id := range s.bulkDeletes {
		ch.Deletes = append(ch.Deletes, id)
	}
	sort.Strings(ch.Deletes)
	if len(s.bulkEdits) > 0 {
		ch.Updates = make(map[string]model.RecordPatch, len(s.bulkEdits))
		for id, vals := range s.bulkEdits {
			ch.Updates[id] = SeparateMetrics(vals, s.customs)
		}
	}
	for _, a := range s.additions {
		if a.Complete() {
			ch.Additions = append(ch.Additions, SeparateMetrics(a, s.customs))
		}
	}
	return ch
}

// Commit applies the staged changes and leaves global mode.
func (s *Session) Commit(ctx context.Context, a Applier, projectID string) Result {
	res := Apply(ctx, a, projectID, s.Changes())
	s.Discard()
	return res
}

// Discard drops all staged changes and leaves global mode.
func (s *Session) Discard() {
	s.reset()
}
