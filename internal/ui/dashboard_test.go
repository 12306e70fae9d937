package ui

import (
	"strings"
	"testing"

	"chronology/internal/seed"
)

func TestSummarize(t *testing.T) {
	s := Summarize(*seedProject("2"))
	if s.ID != "2" || s.Name != "NLP Sentiment Analysis" {
		t.Errorf("summary = %+v", s)
	}
	if s.Records != 9 || s.Models != 3 {
		t.Errorf("records=%d models=%d, want 9 and 3", s.Records, s.Models)
	}
	if s.UpdatedAt != "2024-06-30" {
		t.Errorf("UpdatedAt = %q", s.UpdatedAt)
	}
}

func TestDashboardView_EnterSelectsProject(t *testing.T) {
	d := NewDashboardView()
	d.SetProjects(seed.Projects())

	d.Update(keyMsg("j"))
	if d.Selected() != 1 {
		t.Fatalf("Selected = %d after j, want 1", d.Selected())
	}
	_, cmd := d.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter: expected command")
	}
	msg, ok := cmd().(SelectProjectMsg)
	if !ok || msg.ID != "2" {
		t.Errorf("enter: got %#v, want SelectProjectMsg{ID: 2}", cmd())
	}
}

func TestDashboardView_SetProjectsKeepsCursorInRange(t *testing.T) {
	d := NewDashboardView()
	projects := seed.Projects()
	d.SetProjects(projects)
	d.Update(keyMsg("G"))
	if d.Selected() != 2 {
		t.Fatalf("Selected = %d after G, want 2", d.Selected())
	}
	d.SetProjects(projects[:1])
	if d.Selected() != 0 {
		t.Errorf("Selected = %d after shrink, want 0", d.Selected())
	}
}

func TestDashboardView_View(t *testing.T) {
	d := NewDashboardView()
	if !strings.Contains(d.View(), "No projects yet") {
		t.Error("empty dashboard should show the empty hint")
	}
	d.SetProjects(seed.Projects())
	out := d.View()
	for _, want := range []string{"Projects (3)", "Image Classification Model", "9 records, 3 models"} {
		if !strings.Contains(out, want) {
			t.Errorf("View missing %q", want)
		}
	}
}
