package form

// Step is one wizard screen: a run of consecutive questions between page
// breaks.
type Step struct {
	// Section is the owning section of the step's first question, shown as
	// the step header.
	Section *Section

	Questions []*Question
}

// Partition derives the wizard's steps from the template's flat, ordered
// question list. PAGE_BREAK questions are pure delimiters: they start a new
// step and belong to none. Empty groups are dropped, so a template without
// page breaks yields exactly one step with every question. Step order and
// in-step question order equal template order.
func Partition(t *Template) []Step {
	var steps []Step
	var cur Step

	flush := func() {
		if len(cur.Questions) > 0 {
			steps = append(steps, cur)
		}
		cur = Step{}
	}

	for _, sec := range t.Sections {
		for _, q := range sec.Questions {
			if q.Type == TypePageBreak {
				flush()
				continue
			}
			if len(cur.Questions) == 0 {
				cur.Section = sec
			}
			cur.Questions = append(cur.Questions, q)
		}
	}
	flush()

	return steps
}
