package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"chronology/internal/jsonutil"
	"chronology/internal/model"
	"chronology/internal/table"
)

// RecordFormKind says what submitting a record form does.
type RecordFormKind int

const (
	// FormEdit saves one row immediately.
	FormEdit RecordFormKind = iota
	// FormAdd creates a record immediately.
	FormAdd
	// FormStageEdit stages an edit in bulk mode.
	FormStageEdit
	// FormStageAdd fills an addition row in bulk mode.
	FormStageAdd
)

func (k RecordFormKind) title() string {
	switch k {
	case FormEdit:
		return "Edit record"
	case FormAdd:
		return "Add record"
	case FormStageEdit:
		return "Stage edit"
	case FormStageAdd:
		return "Stage new record"
	}
	return "Record"
}

type formField struct {
	id      string
	label   string
	numeric bool
	input   textinput.Model
}

// RecordFormModal edits the fields of one metric record: date, model,
// version and every enabled metric.
type RecordFormModal struct {
	Kind     RecordFormKind
	RecordID string // FormEdit and FormStageEdit
	Index    int    // FormStageAdd

	fields []formField
	focus  int
	err    string
}

var _ View = (*RecordFormModal)(nil)

// NewRecordFormModal creates a form over the enabled metrics of p,
// prefilled from vals.
func NewRecordFormModal(kind RecordFormKind, p *model.Project, vals table.Values) *RecordFormModal {
	m := &RecordFormModal{Kind: kind}
	m.addField(table.FieldTimestamp, "Date", false, vals)
	m.addField(table.FieldModelName, "Model", false, vals)
	m.addField(table.FieldModelVersion, "Version", false, vals)
	for _, s := range p.Config() {
		if s.Enabled {
			m.addField(s.ID, p.MetricLabel(s.ID), s.Type != model.TypeString, vals)
		}
	}
	m.setFocus(0)
	return m
}

func (m *RecordFormModal) addField(id, label string, numeric bool, vals table.Values) {
	in := textinput.New()
	in.Prompt = ""
	in.Width = 30
	in.CharLimit = 120
	in.Placeholder = label
	in.SetValue(jsonutil.ToString(vals[id]))
	m.fields = append(m.fields, formField{id: id, label: label, numeric: numeric, input: in})
}

func (m *RecordFormModal) setFocus(i int) {
	n := len(m.fields)
	m.focus = ((i % n) + n) % n
	for j := range m.fields {
		if j == m.focus {
			m.fields[j].input.Focus()
		} else {
			m.fields[j].input.Blur()
		}
	}
}

// Values returns every field, trimmed. A blank metric clears it.
func (m *RecordFormModal) Values() table.Values {
	vals := make(table.Values, len(m.fields))
	for _, f := range m.fields {
		vals[f.id] = strings.TrimSpace(f.input.Value())
	}
	return vals
}

// SetField replaces the text of a field.
func (m *RecordFormModal) SetField(id, value string) {
	for i := range m.fields {
		if m.fields[i].id == id {
			m.fields[i].input.SetValue(value)
			return
		}
	}
}

func (m *RecordFormModal) validate(vals table.Values) error {
	if !vals.Complete() {
		return table.ErrIncomplete
	}
	if _, err := model.ParseTimestamp(vals.String(table.FieldTimestamp)); err != nil {
		return fmt.Errorf("invalid date %q", vals.String(table.FieldTimestamp))
	}
	for _, f := range m.fields {
		if !f.numeric {
			continue
		}
		if v := vals.String(f.id); v != "" {
			if _, ok := jsonutil.ToFloat(v); !ok {
				return fmt.Errorf("%s must be a number", f.label)
			}
		}
	}
	return nil
}

func (m *RecordFormModal) Init() tea.Cmd {
	return textinput.Blink
}

func (m *RecordFormModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			kind := m.Kind
			return m, func() tea.Msg { return RecordFormCancelMsg{Kind: kind} }
		case "tab", "down":
			m.setFocus(m.focus + 1)
			return m, nil
		case "shift+tab", "up":
			m.setFocus(m.focus - 1)
			return m, nil
		case "enter":
			vals := m.Values()
			if err := m.validate(vals); err != nil {
				m.err = err.Error()
				return m, nil
			}
			submit := RecordFormSubmitMsg{Kind: m.Kind, RecordID: m.RecordID, Index: m.Index, Values: vals}
			return m, func() tea.Msg { return submit }
		}
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	m.err = ""
	return m, cmd
}

func (m *RecordFormModal) View() string {
	labelWidth := 0
	for _, f := range m.fields {
		labelWidth = max(labelWidth, len(f.label))
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render(m.Kind.title()) + "\n\n")
	for i, f := range m.fields {
		label := fmt.Sprintf("%-*s", labelWidth, f.label)
		if i == m.focus {
			label = Styles.Selected.Render(label)
		} else {
			label = Styles.Muted.Render(label)
		}
		b.WriteString(label + "  " + f.input.View() + "\n")
	}
	if m.err != "" {
		b.WriteString("\n" + Styles.Error.Render(m.err) + "\n")
	}
	action := "save"
	if m.Kind == FormStageEdit || m.Kind == FormStageAdd {
		action = "stage"
	}
	b.WriteString("\n" + Styles.Hint.Render("Tab: next field  Enter: "+action+"  Esc: cancel"))
	return Styles.Box.Render(b.String())
}
