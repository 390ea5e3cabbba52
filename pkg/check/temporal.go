package check

import "github.com/matzehuels/lineage/pkg/family"

// checkTemporal applies the year-based plausibility rules. Each rule is
// skipped when a year it needs is unknown.
func checkTemporal(people family.People) []Issue {
	var issues []Issue
	for _, id := range people.SortedIDs() {
		p := people[id]
		birth, death := p.BirthYear(), p.DeathYear()
		known := family.KnownYear(birth)

		if known && family.KnownYear(death) {
			switch {
			case death < birth:
				issues = append(issues, newIssue(KindDeathBeforeBirth, SeverityError, id, "",
					"death year %d is before birth year %d", death, birth))
			case death-birth > MaxLifespan:
				issues = append(issues, newIssue(KindImplausibleLifespan, SeverityWarning, id, "",
					"lifespan of %d years exceeds %d", death-birth, MaxLifespan))
			}
		}
		if !known {
			continue
		}

		seen := make(map[string]bool, len(p.Parents))
		for _, pid := range p.Parents {
			parent := people.Get(pid)
			if parent == nil || pid == id || seen[pid] {
				continue
			}
			seen[pid] = true
			issues = append(issues, checkParentAge(p, parent, birth)...)
		}
	}
	return issues
}

// checkParentAge compares a child's birth year with one parent's life.
// A negative age is reported only as born-before-parent, never as a
// too-young parent.
func checkParentAge(child, parent *family.Person, birth int) []Issue {
	var issues []Issue
	name := parent.DisplayName()

	if pb := parent.BirthYear(); family.KnownYear(pb) {
		age := birth - pb
		switch {
		case age < 0:
			issues = append(issues, newIssue(KindBornBeforeParent, SeverityError, child.ID, parent.ID,
				"born %d years before parent %s", -age, name))
		case age < MinParentAge:
			issues = append(issues, newIssue(KindParentTooYoung, SeverityWarning, child.ID, parent.ID,
				"parent %s was %d at birth (minimum %d)", name, age, MinParentAge))
		case age > MaxParentAge:
			issues = append(issues, newIssue(KindParentTooOld, SeverityWarning, child.ID, parent.ID,
				"parent %s was %d at birth (maximum %d)", name, age, MaxParentAge))
		}
	}

	if pd := parent.DeathYear(); family.KnownYear(pd) && birth-pd > PosthumousGrace {
		issues = append(issues, newIssue(KindBornAfterParentDeath, SeverityWarning, child.ID, parent.ID,
			"born %d years after parent %s died", birth-pd, name))
	}
	return issues
}
