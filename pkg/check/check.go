// Package check validates a family graph for structural and temporal
// consistency.
//
// Two independent passes run over the same graph:
//
//   - Cycle detection walks parent links with an explicit stack and flags
//     every person who is their own ancestor (self-parentage included).
//   - Temporal rules compare year-granular birth and death dates of a
//     person and their parents. Missing dates skip a rule; they are never
//     an issue by themselves.
//
// Issues from both passes are merged into one [Report] keyed by person ID.
// A person may carry several issues. The checker never modifies the graph.
package check

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/lineage/pkg/family"
)

// Severity grades an issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Kind is the taxonomy tag of an issue.
type Kind string

const (
	KindCircularReference    Kind = "circular-reference"
	KindDeathBeforeBirth     Kind = "death-before-birth"
	KindParentTooYoung       Kind = "parent-too-young"
	KindParentTooOld         Kind = "parent-too-old"
	KindBornBeforeParent     Kind = "born-before-parent"
	KindBornAfterParentDeath Kind = "born-after-parent-death"
	KindImplausibleLifespan  Kind = "implausible-lifespan"
)

// Thresholds in years. The rules are year-granular and deliberately
// approximate; they apply to both genders.
const (
	MinParentAge    = 14
	MaxParentAge    = 100
	MaxLifespan     = 120
	PosthumousGrace = 1
)

// issueNamespace scopes the name-based issue IDs.
var issueNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://lineage.dev/check/issue"))

// Issue is one consistency problem found for a person.
type Issue struct {
	ID              string   `json:"id"`
	PersonID        string   `json:"personId"`
	RelatedPersonID string   `json:"relatedPersonId,omitempty"`
	Kind            Kind     `json:"type"`
	Details         string   `json:"details"`
	Severity        Severity `json:"severity"`
}

func newIssue(kind Kind, severity Severity, personID, relatedID, format string, args ...any) Issue {
	// The same finding on the same graph always gets the same ID.
	name := string(kind) + "\x00" + personID + "\x00" + relatedID
	return Issue{
		ID:              uuid.NewSHA1(issueNamespace, []byte(name)).String(),
		PersonID:        personID,
		RelatedPersonID: relatedID,
		Kind:            kind,
		Details:         fmt.Sprintf(format, args...),
		Severity:        severity,
	}
}

// Report maps person IDs to their issues. Persons without issues are
// absent.
type Report map[string][]Issue

func (r Report) add(issue Issue) {
	r[issue.PersonID] = append(r[issue.PersonID], issue)
}

// Count returns the total number of issues.
func (r Report) Count() int {
	n := 0
	for _, issues := range r {
		n += len(issues)
	}
	return n
}

// CountBySeverity returns the number of issues with the given severity.
func (r Report) CountBySeverity(s Severity) int {
	n := 0
	for _, issues := range r {
		for _, issue := range issues {
			if issue.Severity == s {
				n++
			}
		}
	}
	return n
}

// Has reports whether personID carries an issue of the given kind.
func (r Report) Has(personID string, kind Kind) bool {
	return slices.ContainsFunc(r[personID], func(i Issue) bool { return i.Kind == kind })
}

// PersonIDs returns the IDs of persons with issues, sorted.
func (r Report) PersonIDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Messages projects the report onto the checker wire format: person ID to
// human-readable detail strings.
func (r Report) Messages() map[string][]string {
	out := make(map[string][]string, len(r))
	for id, issues := range r {
		msgs := make([]string, len(issues))
		for i, issue := range issues {
			msgs[i] = issue.Details
		}
		out[id] = msgs
	}
	return out
}

// Check runs both passes over people and returns the merged report.
// Persons are visited in ID order, so the report is deterministic. Nil
// entries are treated as absent persons.
func Check(people family.People) Report {
	r := Report{}
	for _, issue := range findCycles(people) {
		r.add(issue)
	}
	for _, issue := range checkTemporal(people) {
		r.add(issue)
	}
	return r
}
