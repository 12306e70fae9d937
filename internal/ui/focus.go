package ui

// Focus targets of the project detail view.
const (
	FocusTable = "table"
	FocusChart = "chart"
)

// FocusManager tracks and rotates focus across the panes of a view.
type FocusManager struct {
	Current  string   // focused pane id
	Order    []string // tab order
	OnChange func(from, to string)
}

// NewFocusManager focuses the first of order.
func NewFocusManager(order ...string) *FocusManager {
	f := &FocusManager{Order: order}
	if len(order) > 0 {
		f.Current = order[0]
	}
	return f
}

// Is reports whether id has focus.
func (f *FocusManager) Is(id string) bool {
	return f.Current == id
}

func (f *FocusManager) index() int {
	for i, id := range f.Order {
		if id == f.Current {
			return i
		}
	}
	return -1
}

func (f *FocusManager) moveTo(id string) string {
	from := f.Current
	f.Current = id
	if f.OnChange != nil && from != id {
		f.OnChange(from, id)
	}
	return id
}

// Next advances focus and returns the new focus id.
func (f *FocusManager) Next() string {
	if len(f.Order) == 0 {
		return ""
	}
	return f.moveTo(f.Order[(f.index()+1)%len(f.Order)])
}

// Prev moves focus backwards and returns the new focus id.
func (f *FocusManager) Prev() string {
	if len(f.Order) == 0 {
		return ""
	}
	i := f.index() - 1
	if i < 0 {
		i = len(f.Order) - 1
	}
	return f.moveTo(f.Order[i])
}

// SetFocus focuses id. It reports false when id is not in Order.
func (f *FocusManager) SetFocus(id string) bool {
	for _, o := range f.Order {
		if o == id {
			f.moveTo(id)
			return true
		}
	}
	return false
}
