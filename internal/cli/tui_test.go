package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

func testPeople() family.People {
	return family.People{
		"z": {ID: "z", FirstName: "Anna", BirthDate: "1901"},
		"a": {ID: "a", FirstName: "Carl", BirthDate: "1930", DeathDate: "1999", Parents: []string{"z"}},
		"m": {ID: "m", FirstName: "Bert", Parents: []string{"z"}},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPersonListOrder(t *testing.T) {
	m := NewPersonListModel(testPeople(), nil, pipeline.LayoutRequest{})
	want := []string{"z", "m", "a"} // Anna, Bert, Carl
	for i, id := range want {
		if m.IDs[i] != id {
			t.Errorf("IDs[%d] = %q, want %q", i, m.IDs[i], id)
		}
	}
}

func TestPersonListNavigation(t *testing.T) {
	var model tea.Model = NewPersonListModel(testPeople(), nil, pipeline.LayoutRequest{})

	for _, k := range []string{"down", "down", "down", "up", "j"} {
		model, _ = model.Update(key(k))
	}
	m := model.(PersonListModel)
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", m.Cursor)
	}

	model, cmd := model.Update(key("enter"))
	m = model.(PersonListModel)
	if m.Selected != "a" {
		t.Errorf("Selected = %q, want a", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestPersonListPreview(t *testing.T) {
	var model tea.Model = NewPersonListModel(testPeople(), nil, pipeline.LayoutRequest{})
	if !strings.Contains(model.View(), "computing") {
		t.Error("View() should show a pending preview")
	}

	res := layout.NewResult()
	res.Nodes = []layout.TreeNode{
		{ID: family.PersonID("z"), Role: layout.RoleFocus},
		{ID: family.PersonID("m"), Role: layout.RoleDescendant},
	}
	model, _ = model.Update(layoutMsg{resp: pipeline.NewLayoutResponse(1, res, nil)})
	if view := model.View(); !strings.Contains(view, "2 nodes") || !strings.Contains(view, "1 descendants") {
		t.Errorf("View() preview missing counts:\n%s", view)
	}

	model, _ = model.Update(layoutMsg{resp: pipeline.LayoutResponse{RequestID: 2, Result: layout.NewResult(), Error: "boom"}})
	if !strings.Contains(model.View(), "boom") {
		t.Error("View() should show the layout error")
	}
}

func TestLifespan(t *testing.T) {
	tests := []struct {
		p    family.Person
		want string
	}{
		{family.Person{BirthDate: "1901", DeathDate: "1980"}, "1901–1980"},
		{family.Person{BirthDate: "1901"}, "b. 1901"},
		{family.Person{DeathDate: "1980"}, "d. 1980"},
		{family.Person{}, ""},
	}
	for _, tt := range tests {
		if got := lifespan(&tt.p); got != tt.want {
			t.Errorf("lifespan(%+v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := summarize(layout.NewResult()); !strings.Contains(got, "empty chart") {
		t.Errorf("summarize(empty) = %q", got)
	}
}
