package ui

import (
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type markerMsg string

func marker(s string) tea.Cmd {
	return func() tea.Msg { return markerMsg(s) }
}

// press feeds keys to h and returns the command of the last one.
func press(h *KeyHandler, keys ...string) (bool, tea.Cmd) {
	var (
		consumed bool
		cmd      tea.Cmd
	)
	for _, k := range keys {
		consumed, cmd = h.Handle(keyMsg(k))
	}
	return consumed, cmd
}

func newModeRegistry() *KeybindRegistry {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("q", marker("quit"), "Quit")
	reg.BindWithDesc("SPC r", marker("refresh"), "Refresh")
	reg.BindWithDesc("SPC p c", marker("create"), "Create project")
	reg.BindWithDescForMode("SPC p d", marker("delete"), "Delete project", []AppMode{ModeDashboard})
	reg.BindWithDescForMode("SPC e c", marker("csv"), "Export CSV", []AppMode{ModeProjectDetail})
	reg.BindWithDescForMode("SPC e x", marker("xlsx"), "Export Excel", []AppMode{ModeProjectDetail})
	return reg
}

func TestKeybindRegistry_LookupForMode(t *testing.T) {
	reg := newModeRegistry()
	tests := []struct {
		seq  string
		mode AppMode
		want bool
	}{
		{"q", ModeDashboard, true},
		{"q", ModeProjectDetail, true},
		{"SPC p d", ModeDashboard, true},
		{"SPC p d", ModeProjectDetail, false},
		{"SPC e c", ModeProjectDetail, true},
		{"SPC e c", ModeDashboard, false},
		{"space e x", ModeProjectDetail, true},
		{"SPC z", ModeDashboard, false},
	}
	for _, tt := range tests {
		t.Run(tt.seq+"/"+tt.mode.String(), func(t *testing.T) {
			if got := reg.LookupForMode(tt.seq, tt.mode) != nil; got != tt.want {
				t.Errorf("LookupForMode(%q, %v) bound = %v, want %v", tt.seq, tt.mode, got, tt.want)
			}
		})
	}
	if reg.Lookup("SPC e c") == nil {
		t.Error("Lookup ignores modes and should find SPC e c")
	}
}

func TestKeybindRegistry_RebindClearsModeFilter(t *testing.T) {
	reg := newModeRegistry()
	reg.BindWithDesc("SPC p d", marker("delete-anywhere"), "Delete project")

	cmd := reg.LookupForMode("SPC p d", ModeProjectDetail)
	if cmd == nil {
		t.Fatal("rebinding without modes should make SPC p d global")
	}
	if got := cmd(); got != markerMsg("delete-anywhere") {
		t.Errorf("cmd() = %v, want delete-anywhere", got)
	}

	reg.BindWithDescForMode("SPC p d", marker("delete"), "Delete project", []AppMode{ModeDashboard})
	if reg.LookupForMode("SPC p d", ModeProjectDetail) != nil {
		t.Error("mode filter should apply again after binding with modes")
	}
}

func TestKeybindRegistry_HasPrefixForMode(t *testing.T) {
	reg := newModeRegistry()
	if !reg.HasPrefix("SPC e", ModeProjectDetail) {
		t.Error("SPC e should be a prefix in the detail view")
	}
	if reg.HasPrefix("SPC e", ModeDashboard) {
		t.Error("SPC e has no bindings on the dashboard")
	}
	if !reg.HasPrefix("SPC p", ModeProjectDetail) {
		t.Error("SPC p c applies everywhere")
	}
}

func TestKeybindRegistry_LeaderHints(t *testing.T) {
	reg := newModeRegistry()

	detail := reg.LeaderHints("", ModeProjectDetail)
	want := map[string]string{"r": "Refresh", "p": "Project", "e": "Export"}
	if len(detail) != len(want) {
		t.Errorf("detail hints = %v, want %v", detail, want)
	}
	for k, v := range want {
		if detail[k] != v {
			t.Errorf("detail hints[%q] = %q, want %q", k, detail[k], v)
		}
	}

	dash := reg.LeaderHints("SPC", ModeDashboard)
	if _, ok := dash["e"]; ok {
		t.Errorf("dashboard hints should not offer export: %v", dash)
	}

	if got := reg.LeaderHints("SPC p", ModeProjectDetail); len(got) != 1 || got["c"] != "Create project" {
		t.Errorf("SPC p hints in detail = %v, want only c", got)
	}
	if got := reg.LeaderHints("SPC p", ModeDashboard); got["d"] != "Delete project" {
		t.Errorf("SPC p hints on dashboard = %v, want d", got)
	}
	if got := reg.LeaderHints("SPC e", ModeProjectDetail); got["c"] != "Export CSV" || got["x"] != "Export Excel" {
		t.Errorf("SPC e hints = %v", got)
	}
}

func TestKeyHandler_ModeFilteredDispatch(t *testing.T) {
	tests := []struct {
		name string
		mode AppMode
		keys []string
		want markerMsg
	}{
		{"export in detail", ModeProjectDetail, []string{" ", "e", "c"}, "csv"},
		{"delete on dashboard", ModeDashboard, []string{" ", "p", "d"}, "delete"},
		{"create anywhere", ModeProjectDetail, []string{" ", "p", "c"}, "create"},
		{"single key", ModeDashboard, []string{"q"}, "quit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewKeyHandler(newModeRegistry())
			h.Mode = tt.mode
			consumed, cmd := press(h, tt.keys...)
			if !consumed || cmd == nil {
				t.Fatalf("consumed=%v cmd=%v", consumed, cmd)
			}
			if got := cmd(); got != tt.want {
				t.Errorf("cmd() = %v, want %v", got, tt.want)
			}
			if h.LeaderWaiting {
				t.Error("leader should be done after a full sequence")
			}
		})
	}
}

func TestKeyHandler_FilteredSequenceEndsLeader(t *testing.T) {
	h := NewKeyHandler(newModeRegistry())
	h.Mode = ModeDashboard

	consumed, cmd := press(h, " ", "e")
	if !consumed || cmd != nil {
		t.Errorf("SPC e on dashboard: consumed=%v cmd=%v", consumed, cmd)
	}
	if h.LeaderWaiting {
		t.Error("SPC e has nothing to offer on the dashboard; leader should reset")
	}

	h.Mode = ModeProjectDetail
	press(h, " ", "p")
	if !h.LeaderWaiting || h.CurrentSeq() != "SPC p" {
		t.Errorf("after SPC p: waiting=%v seq=%q", h.LeaderWaiting, h.CurrentSeq())
	}
	consumed, cmd = press(h, "d")
	if !consumed || cmd != nil {
		t.Errorf("SPC p d in detail: consumed=%v cmd=%v", consumed, cmd)
	}
	if h.LeaderWaiting {
		t.Error("unmatched sequence should reset the leader")
	}
}

func TestKeyHandler_EscCancelsLeaderOnly(t *testing.T) {
	h := NewKeyHandler(newModeRegistry())
	press(h, " ")
	if consumed, _ := press(h, "esc"); !consumed || h.LeaderWaiting {
		t.Errorf("esc in leader: consumed=%v waiting=%v", consumed, h.LeaderWaiting)
	}
	if consumed, _ := press(h, "esc"); consumed {
		t.Error("esc outside leader mode belongs to the views")
	}
	if consumed, _ := press(h, "j"); consumed {
		t.Error("unbound j should fall through")
	}
}

func TestRenderKeybindHelp(t *testing.T) {
	h := NewKeyHandler(newModeRegistry())
	h.Mode = ModeProjectDetail
	if got := RenderKeybindHelp(h, h.Mode); got != "" {
		t.Errorf("help outside leader mode = %q, want empty", got)
	}
	press(h, " ", "e")
	got := RenderKeybindHelp(h, h.Mode)
	for _, want := range []string{"SPC e", "Export CSV", "Export Excel", "cancel"} {
		if !containsPlain(got, want) {
			t.Errorf("help %q missing %q", got, want)
		}
	}
}

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// containsPlain reports whether s contains sub once styling is stripped.
func containsPlain(s, sub string) bool {
	return strings.Contains(ansiSeq.ReplaceAllString(s, ""), sub)
}

// keyMsg creates a tea.KeyMsg for testing. KeySpace.String() is " ".
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "space", " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
