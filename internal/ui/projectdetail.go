package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chronology/internal/chart"
	"chronology/internal/jsonutil"
	"chronology/internal/model"
	"chronology/internal/table"
	"chronology/internal/ui/textutil"
)

const (
	maxCellWidth   = 22
	sparklineWidth = 24
)

// chartOption is one toggle in the chart panel: a metric or a model.
type chartOption struct {
	metric bool
	id     string
	label  string
}

// ProjectDetailView shows one project's metrics table, chart and stats.
type ProjectDetailView struct {
	Project   *model.Project
	Sort      *table.SortConfig
	Cursor    int
	ShowChart bool
	Selection chart.Selection
	Focus     *FocusManager
	Session   *table.Session

	chartCursor int
	saving      bool // a single-row save or add is in flight
	width       int
	height      int
}

var _ View = (*ProjectDetailView)(nil)

// NewProjectDetailView creates a detail view for p with the default
// chart selection.
func NewProjectDetailView(p *model.Project) *ProjectDetailView {
	v := &ProjectDetailView{
		ShowChart: true,
		Selection: chart.DefaultSelection(),
		Focus:     NewFocusManager(FocusTable, FocusChart),
		Session:   table.NewSession(nil),
	}
	v.SetProject(p)
	return v
}

// SetProject swaps in a reloaded project, keeping sort, cursor and chart
// selection where they still apply.
func (v *ProjectDetailView) SetProject(p *model.Project) {
	v.Project = p
	enabled := p.Enabled()
	available := p.AvailableModels()

	sel := v.Selection
	sel.Metrics = slices.DeleteFunc(slices.Clone(sel.Metrics), func(id string) bool {
		return !slices.Contains(enabled, id)
	})
	sel.Models = slices.DeleteFunc(slices.Clone(sel.Models), func(name string) bool {
		return !slices.Contains(available, name)
	})
	if sel.Comparison != "" && !slices.Contains(enabled, sel.Comparison) {
		sel.Comparison = ""
	}
	sel.SetMode(sel.Mode, enabled, available)
	v.Selection = sel

	v.Session.SetCustoms(v.columns().Customs)
	v.Cursor = min(v.Cursor, max(len(p.Records)-1, 0))
	v.chartCursor = min(v.chartCursor, max(len(v.chartOptions())-1, 0))
}

// SetSize sets the render area.
func (v *ProjectDetailView) SetSize(width, height int) {
	v.width, v.height = width, height
}

func (v *ProjectDetailView) columns() table.Columns {
	return table.SplitMetrics(v.Project.Config())
}

// Rows returns the table rows in display order.
func (v *ProjectDetailView) Rows() []table.Row {
	return table.Annotate(table.Sort(v.Project.Records, v.Sort, v.columns()))
}

// SelectedRecord returns the record under the cursor.
func (v *ProjectDetailView) SelectedRecord() (model.MetricRecord, bool) {
	rows := v.Rows()
	if v.Cursor < 0 || v.Cursor >= len(rows) {
		return model.MetricRecord{}, false
	}
	return rows[v.Cursor].Record, true
}

// sortKeys lists the sortable columns in display order.
func (v *ProjectDetailView) sortKeys() []string {
	return append([]string{table.KeyTimestamp, table.KeyModelName}, v.columns().All()...)
}

// CycleSort moves the sort to the next column, ascending. After the last
// column the table returns to its default order.
func (v *ProjectDetailView) CycleSort() {
	keys := v.sortKeys()
	if v.Sort == nil {
		v.Sort = &table.SortConfig{Key: keys[0], Direction: table.Asc}
		return
	}
	i := slices.Index(keys, v.Sort.Key)
	if i < 0 || i == len(keys)-1 {
		v.Sort = nil
		return
	}
	v.Sort = &table.SortConfig{Key: keys[i+1], Direction: table.Asc}
}

// ToggleSortDirection flips the direction of the current sort column.
func (v *ProjectDetailView) ToggleSortDirection() {
	if v.Sort == nil {
		return
	}
	v.Sort = table.Toggle(v.Sort, v.Sort.Key)
}

// ToggleMode switches the chart between metric-wise and model-wise.
func (v *ProjectDetailView) ToggleMode() {
	mode := chart.ModelWise
	if v.Selection.Mode == chart.ModelWise {
		mode = chart.MetricWise
	}
	v.Selection.SetMode(mode, v.Project.Enabled(), v.Project.AvailableModels())
}

func (v *ProjectDetailView) chartOptions() []chartOption {
	var opts []chartOption
	for _, id := range v.Project.Enabled() {
		opts = append(opts, chartOption{metric: true, id: id, label: v.Project.MetricLabel(id)})
	}
	for _, name := range v.Project.AvailableModels() {
		opts = append(opts, chartOption{id: name, label: name})
	}
	return opts
}

func (v *ProjectDetailView) optionSelected(o chartOption) bool {
	if !o.metric {
		return slices.Contains(v.Selection.Models, o.id)
	}
	if v.Selection.Mode == chart.ModelWise {
		return v.Selection.Comparison == o.id
	}
	return slices.Contains(v.Selection.Metrics, o.id)
}

func (v *ProjectDetailView) toggleChartOption() {
	opts := v.chartOptions()
	if v.chartCursor < 0 || v.chartCursor >= len(opts) {
		return
	}
	o := opts[v.chartCursor]
	if o.metric {
		v.Selection.ToggleMetric(o.id)
	} else {
		v.Selection.ToggleModel(o.id)
	}
}

func (v *ProjectDetailView) Init() tea.Cmd {
	return nil
}

func (v *ProjectDetailView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetSize(msg.Width, msg.Height)
		return v, nil
	case DiscardChangesMsg:
		v.Session.Discard()
		return v, nil
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *ProjectDetailView) handleKey(k string) tea.Cmd {
	switch k {
	case "tab":
		if v.ShowChart {
			v.Focus.Next()
		}
		return nil
	case "c":
		v.ShowChart = !v.ShowChart
		if !v.ShowChart {
			v.Focus.SetFocus(FocusTable)
		}
		return nil
	case "m":
		v.ToggleMode()
		return nil
	}

	if v.Focus.Is(FocusChart) {
		return v.handleChartKey(k)
	}
	return v.handleTableKey(k)
}

func (v *ProjectDetailView) handleChartKey(k string) tea.Cmd {
	n := len(v.chartOptions())
	switch k {
	case "j", "down":
		v.chartCursor = min(v.chartCursor+1, max(n-1, 0))
	case "k", "up":
		v.chartCursor = max(v.chartCursor-1, 0)
	case "enter", "t":
		v.toggleChartOption()
	case "esc":
		v.Focus.SetFocus(FocusTable)
	}
	return nil
}

func (v *ProjectDetailView) handleTableKey(k string) tea.Cmd {
	n := len(v.Project.Records)
	switch k {
	case "j", "down":
		v.Cursor = min(v.Cursor+1, max(n-1, 0))
	case "k", "up":
		v.Cursor = max(v.Cursor-1, 0)
	case "g":
		v.Cursor = 0
	case "G":
		v.Cursor = max(n-1, 0)
	case "s":
		v.CycleSort()
	case "S":
		v.ToggleSortDirection()
	case "e", "enter":
		return v.editSelected()
	case "a":
		return v.addRecord()
	case "b":
		if !v.Session.Global() {
			v.Session.EnterGlobal()
		}
	case "d":
		if r, ok := v.SelectedRecord(); ok && v.Session.Global() {
			v.Session.ToggleDelete(r.ID)
		}
	case "ctrl+s":
		if v.Session.Global() && v.Session.HasPendingChanges() {
			msg := CommitChangesMsg{ProjectID: v.Project.ID, Changes: v.Session.Changes()}
			return func() tea.Msg { return msg }
		}
	case "esc":
		if v.Session.Global() && v.Session.ExitGlobal() {
			pending := v.Session.Pending()
			return func() tea.Msg { return ConfirmDiscardMsg{Pending: pending} }
		}
	}
	return nil
}

// editSelected opens a form for the row under the cursor. In bulk mode
// the form stages its values; otherwise it starts a single-row edit.
func (v *ProjectDetailView) editSelected() tea.Cmd {
	r, ok := v.SelectedRecord()
	if !ok || v.saving {
		return nil
	}
	var form *RecordFormModal
	if v.Session.Global() {
		vals, staged := v.Session.Staged(r.ID)
		if !staged {
			vals = table.EditValues(r)
		}
		form = NewRecordFormModal(FormStageEdit, v.Project, vals)
	} else {
		v.Session.Begin(r)
		form = NewRecordFormModal(FormEdit, v.Project, table.EditValues(r))
	}
	form.RecordID = r.ID
	return func() tea.Msg { return ShowRecordFormMsg{Form: form} }
}

// addRecord opens the add form, or in bulk mode the last addition row.
func (v *ProjectDetailView) addRecord() tea.Cmd {
	if v.saving {
		return nil
	}
	var form *RecordFormModal
	if v.Session.Global() {
		adds := v.Session.Additions()
		i := len(adds) - 1
		form = NewRecordFormModal(FormStageAdd, v.Project, adds[i])
		form.Index = i
	} else {
		form = NewRecordFormModal(FormAdd, v.Project, v.Session.AddForm())
	}
	return func() tea.Msg { return ShowRecordFormMsg{Form: form} }
}

// ApplyForm stores a submitted form in the session. It reports whether
// the values still have to be written through a Backend.
func (v *ProjectDetailView) ApplyForm(msg RecordFormSubmitMsg) (save bool) {
	switch msg.Kind {
	case FormEdit:
		for field, val := range msg.Values {
			v.Session.Set(field, val)
		}
		return true
	case FormAdd:
		for field, val := range msg.Values {
			v.Session.SetAddField(field, val)
		}
		return true
	case FormStageEdit:
		r, ok := v.record(msg.RecordID)
		if !ok {
			return false
		}
		for field, val := range msg.Values {
			v.Session.StageEdit(r, field, val)
		}
	case FormStageAdd:
		for _, field := range slices.Sorted(maps.Keys(msg.Values)) {
			v.Session.SetAddition(msg.Index, field, msg.Values[field])
		}
	}
	return false
}

func (v *ProjectDetailView) record(id string) (model.MetricRecord, bool) {
	for _, r := range v.Project.Records {
		if r.ID == id {
			return r, true
		}
	}
	return model.MetricRecord{}, false
}

// Bulk reports whether the view is in bulk edit mode. The app routes esc
// to the view instead of leaving it while this holds.
func (v *ProjectDetailView) Bulk() bool {
	return v.Session.Global()
}

func (v *ProjectDetailView) View() string {
	var b strings.Builder
	p := v.Project

	b.WriteString("← " + Styles.Title.Render(p.Name) + "\n")
	if p.Description != "" {
		b.WriteString(Styles.Muted.Render(p.Description) + "\n")
	}
	b.WriteString(v.renderStats() + "\n\n")

	if v.Session.Global() {
		b.WriteString(Styles.Pending.Render("BULK EDIT  "+v.Session.Pending().String()) +
			"  " + Styles.Hint.Render("e: stage edit  a: add row  d: mark delete  ctrl+s: commit  esc: exit") + "\n")
	}
	b.WriteString(v.renderTable())

	if v.ShowChart {
		b.WriteString("\n" + v.renderChart())
	}

	b.WriteString("\n" + Styles.Hint.Render(v.hints()))
	return b.String()
}

func (v *ProjectDetailView) hints() string {
	if v.Focus.Is(FocusChart) {
		return "j/k: move  enter: toggle  m: mode  tab: table  c: hide chart  esc: table"
	}
	return "j/k: move  e: edit  a: add  s/S: sort  b: bulk edit  c: chart  m: mode  tab: chart  esc: back"
}

func (v *ProjectDetailView) renderStats() string {
	sum := chart.Stats(v.Project, v.Project.Enabled())
	parts := []string{fmt.Sprintf("%d records · %d models", sum.TotalRecords, sum.Models)}
	for _, st := range sum.Stats {
		s := st.Label + " " + chart.FormatValue(st.Value, true)
		if imp := st.Improvement; imp != nil {
			change := chart.FormatPercent(imp.Percent)
			if imp.IsPositive {
				s += " " + Styles.Positive.Render("▲ "+change)
			} else {
				s += " " + Styles.Negative.Render("▼ "+change)
			}
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "  |  ")
}

func (v *ProjectDetailView) sortMarker(key string) string {
	if v.Sort == nil || v.Sort.Key != key {
		return ""
	}
	if v.Sort.Direction == table.Desc {
		return " ↓"
	}
	return " ↑"
}

func (v *ProjectDetailView) renderTable() string {
	metrics := v.columns().All()
	headers := []string{"Date" + v.sortMarker(table.KeyTimestamp), "Model" + v.sortMarker(table.KeyModelName), "Version"}
	for _, id := range metrics {
		headers = append(headers, v.Project.MetricLabel(id)+v.sortMarker(id))
	}

	rows := v.Rows()
	global := v.Session.Global()
	cells := make([][]string, len(rows))
	staged := make([]bool, len(rows))
	for i, row := range rows {
		r := row.Record
		if vals, ok := v.Session.Staged(r.ID); ok && global {
			cells[i] = valuesCells(vals, metrics)
			staged[i] = true
			continue
		}
		name := r.ModelName
		if !row.FirstOfModel {
			name = ""
		}
		line := []string{r.Timestamp.Date(), name, r.ModelVersion}
		for _, id := range metrics {
			val, ok := r.Value(id)
			line = append(line, chart.FormatValue(val, ok))
		}
		cells[i] = line
	}
	var additions [][]string
	if global {
		for _, add := range v.Session.Additions() {
			if add.Complete() {
				additions = append(additions, valuesCells(add, metrics))
			}
		}
	}
	if len(rows) == 0 && len(additions) == 0 {
		return "  " + Styles.Empty.Render("(no metric records)") + "\n"
	}

	widths := textutil.FitWidths(headers, append(slices.Clone(cells), additions...), maxCellWidth)
	cols := make([]textutil.Column, len(widths))
	for i, w := range widths {
		cols[i] = textutil.Column{Width: w}
		if i >= 3 {
			cols[i].Align = textutil.AlignRight
		}
	}

	var b strings.Builder
	b.WriteString("  " + Styles.Header.Render(textutil.Row(cols, headers, 2)) + "\n")

	from, to := visibleRange(v.Cursor, len(rows), v.tableHeight())
	for i := from; i < to; i++ {
		line := textutil.Row(cols, cells[i], 2)
		style := Styles.Normal
		switch {
		case v.Session.MarkedForDeletion(rows[i].Record.ID):
			style = Styles.Deleted
		case staged[i]:
			style = Styles.Pending
		case i == v.Cursor && v.Focus.Is(FocusTable):
			style = Styles.Selected
		}
		bullet := "  "
		if i == v.Cursor {
			bullet = "▸ "
		}
		b.WriteString(bullet + style.Render(line) + "\n")
	}
	if to-from < len(rows) {
		b.WriteString(Styles.Hint.Render(fmt.Sprintf("  %d-%d of %d", from+1, to, len(rows))) + "\n")
	}
	for _, add := range additions {
		b.WriteString("+ " + Styles.Pending.Render(textutil.Row(cols, add, 2)) + "\n")
	}
	return b.String()
}

// valuesCells renders edit values as a table row.
func valuesCells(vals table.Values, metrics []string) []string {
	date := vals.String(table.FieldTimestamp)
	if t, err := model.ParseTimestamp(date); err == nil {
		date = model.NewTimestamp(t).Date()
	}
	line := []string{date, vals.String(table.FieldModelName), vals.String(table.FieldModelVersion)}
	for _, id := range metrics {
		if f, ok := jsonutil.ToFloat(vals[id]); ok {
			line = append(line, chart.FormatValue(f, true))
		} else if s := vals.String(id); s != "" {
			line = append(line, s)
		} else {
			line = append(line, chart.FormatValue(0, false))
		}
	}
	return line
}

// tableHeight is the number of table rows that fit, or 0 for no limit.
func (v *ProjectDetailView) tableHeight() int {
	if v.height <= 0 {
		return 0
	}
	reserved := 8
	if v.ShowChart {
		reserved += 4 + len(v.Selection.Metrics) + len(v.Selection.Models)
	}
	return max(v.height-reserved, 3)
}

// visibleRange returns the window [from, to) of n rows that keeps cursor
// in view. size 0 shows everything.
func visibleRange(cursor, n, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	from := max(cursor-size/2, 0)
	from = min(from, n-size)
	return from, from + size
}

func (v *ProjectDetailView) renderChart() string {
	sel := v.Selection
	var b strings.Builder

	title := "Chart · " + string(sel.Mode)
	switch {
	case sel.Mode == chart.ModelWise:
		title += " · " + v.Project.MetricLabel(sel.Comparison)
	case len(sel.Models) > 0:
		title += " · " + sel.Models[0]
	}
	titleStyle := Styles.Section
	if v.Focus.Is(FocusChart) {
		titleStyle = Styles.Selected
	}
	b.WriteString(titleStyle.Render(title) + "\n")

	series := chart.Build(v.Project, sel)
	if len(series) == 0 {
		b.WriteString("  " + Styles.Empty.Render("(nothing selected)") + "\n")
	}
	labelWidth := 0
	for _, s := range series {
		labelWidth = max(labelWidth, textutil.VisualWidth(s.ID))
	}
	for _, s := range series {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(s.Color))).Render("●")
		line := dot + " " + textutil.PadRight(s.ID, min(labelWidth, maxCellWidth)) + "  "
		if len(s.Data) == 0 {
			line += Styles.Empty.Render("no data")
		} else {
			last := s.Data[len(s.Data)-1]
			line += Sparkline(seriesValues(s), sparklineWidth) + "  " + chart.FormatValue(last.Y, true)
		}
		b.WriteString("  " + line + "\n")
	}

	if v.Focus.Is(FocusChart) {
		b.WriteString("\n")
		for i, o := range v.chartOptions() {
			box := "[ ]"
			if v.optionSelected(o) {
				box = "[x]"
			}
			kind := "model"
			if o.metric {
				kind = "metric"
			}
			line := fmt.Sprintf("%s %s %s", box, o.label, Styles.Hint.Render("("+kind+")"))
			if i == v.chartCursor {
				b.WriteString("▸ " + Styles.Selected.Render(line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}
	return b.String()
}
