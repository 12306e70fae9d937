package ui

// AppMode is the top-level screen the app shows.
type AppMode int

const (
	ModeDashboard AppMode = iota
	ModeProjectDetail
)

func (m AppMode) String() string {
	switch m {
	case ModeDashboard:
		return "Dashboard"
	case ModeProjectDetail:
		return "ProjectDetail"
	default:
		return "Unknown"
	}
}
