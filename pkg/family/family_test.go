package family

import (
	"encoding/json"
	"fmt"
	"slices"
	"testing"
)

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1901-03-12", 1901},
		{"12 MAR 1901", 1901},
		{"abt. 1850", 1850},
		{"c. 985", 985},
		{"", UnknownYear},
		{"unknown", UnknownYear},
		{"12/03", UnknownYear},
	}
	for _, tt := range tests {
		if got := ParseYear(tt.in); got != tt.want {
			t.Errorf("ParseYear(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFindRoot_Chain(t *testing.T) {
	people := People{
		"a": {ID: "a"},
		"b": {ID: "b", Parents: []string{"a"}},
		"c": {ID: "c", Parents: []string{"b"}},
	}
	if got := FindRoot(people, "c"); got != "a" {
		t.Errorf("FindRoot() = %q, want %q", got, "a")
	}
}

func TestFindRoot_SkipsMissingFirstParent(t *testing.T) {
	people := People{
		"a": {ID: "a"},
		"c": {ID: "c", Parents: []string{"missing", "a"}},
	}
	if got := FindRoot(people, "c"); got != "a" {
		t.Errorf("FindRoot() = %q, want %q", got, "a")
	}
}

func TestFindRoot_Cycle(t *testing.T) {
	// Everyone is everyone else's parent.
	people := People{}
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		people[id] = &Person{ID: id, Parents: ids}
	}
	got := FindRoot(people, "a")
	if !people.Has(got) {
		t.Errorf("FindRoot() = %q, want a present person", got)
	}
}

func TestFindRoot_SelfParent(t *testing.T) {
	people := People{"a": {ID: "a", Parents: []string{"a"}}}
	if got := FindRoot(people, "a"); got != "a" {
		t.Errorf("FindRoot() = %q, want %q", got, "a")
	}
}

func TestFindRoot_BoundedHops(t *testing.T) {
	people := People{}
	for i := range 200 {
		p := &Person{ID: fmt.Sprintf("p%03d", i)}
		if i < 199 {
			p.Parents = []string{fmt.Sprintf("p%03d", i+1)}
		}
		people[p.ID] = p
	}
	got := FindRoot(people, "p000")
	if want := fmt.Sprintf("p%03d", MaxRootHops); got != want {
		t.Errorf("FindRoot() = %q, want %q", got, want)
	}
}

func TestFindRoot_AbsentStart(t *testing.T) {
	if got := FindRoot(People{}, "ghost"); got != "ghost" {
		t.Errorf("FindRoot() = %q, want %q", got, "ghost")
	}
}

func TestResolveFocus(t *testing.T) {
	people := People{"b": {ID: "b"}, "a": {ID: "a"}}
	if got := people.ResolveFocus("b"); got != "b" {
		t.Errorf("ResolveFocus(b) = %q", got)
	}
	if got := people.ResolveFocus("zzz"); got != "a" {
		t.Errorf("ResolveFocus(zzz) = %q, want a", got)
	}
	if got := (People{}).ResolveFocus("x"); got != "" {
		t.Errorf("ResolveFocus on empty = %q, want empty", got)
	}
}

func TestSortedIDsSkipsNil(t *testing.T) {
	people := People{"c": {ID: "c"}, "a": nil, "b": {ID: "b", Parents: []string{"a"}}}
	if got := people.SortedIDs(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("SortedIDs() = %v, want [b c]", got)
	}
	if got := people.FirstID(); got != "b" {
		t.Errorf("FirstID() = %q, want b", got)
	}
	if got := people.ChildIndex(); len(got["a"]) != 1 {
		t.Errorf("ChildIndex()[a] = %v, want [b]", got["a"])
	}
}

func TestFatherMother(t *testing.T) {
	people := People{
		"mom": {ID: "mom", Gender: GenderFemale},
		"dad": {ID: "dad", Gender: GenderMale},
		"kid": {ID: "kid", Parents: []string{"mom", "dad", "ghost"}},
	}
	kid := people["kid"]
	father := people.Father(kid)
	if father != "dad" {
		t.Errorf("Father() = %q, want dad", father)
	}
	if mother := people.Mother(kid, father); mother != "mom" {
		t.Errorf("Mother() = %q, want mom", mother)
	}
}

func TestFatherMother_NoGender(t *testing.T) {
	people := People{
		"p1":  {ID: "p1"},
		"p2":  {ID: "p2"},
		"kid": {ID: "kid", Parents: []string{"p1", "p2"}},
	}
	kid := people["kid"]
	father := people.Father(kid)
	if father != "p1" {
		t.Errorf("Father() = %q, want p1", father)
	}
	if mother := people.Mother(kid, father); mother != "p2" {
		t.Errorf("Mother() = %q, want p2", mother)
	}
}

func TestNodeIDString(t *testing.T) {
	tests := []struct {
		id   NodeID
		want string
	}{
		{PersonID("a"), "a"},
		{SpouseBoxID("a", "b"), "spouse-a-b"},
		{UnionID("a", "b"), "a:b"},
		{UnionID("a", SingleParent), "a:single"},
		{PlaceholderID("a", "father"), "placeholder-a-father"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseUnionKey(t *testing.T) {
	key, err := ParseUnionKey("x:y:single")
	if err != nil {
		t.Fatalf("ParseUnionKey() error: %v", err)
	}
	if key.Person != "x:y" || !key.IsSingle() {
		t.Errorf("ParseUnionKey() = %+v", key)
	}
	for _, bad := range []string{"", "abc", ":b", "a:"} {
		if _, err := ParseUnionKey(bad); err == nil {
			t.Errorf("ParseUnionKey(%q) should fail", bad)
		}
	}
}

func TestNodeIDJSON(t *testing.T) {
	data, err := json.Marshal(UnionID("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"a:b"` {
		t.Errorf("Marshal = %s", data)
	}
	var id NodeID
	if err := json.Unmarshal(data, &id); err != nil {
		t.Fatal(err)
	}
	if id != UnionID("a", "b") {
		t.Errorf("Unmarshal = %+v", id)
	}
}

func TestAncestors(t *testing.T) {
	people := People{
		"gp":  {ID: "gp", Parents: []string{"kid"}}, // cycle back down
		"p":   {ID: "p", Parents: []string{"gp"}},
		"kid": {ID: "kid", Parents: []string{"p"}},
	}
	got := Ancestors(people, "kid", 10)
	for _, want := range []string{"p", "gp", "kid"} {
		if !got[want] {
			t.Errorf("Ancestors() missing %q", want)
		}
	}
}
