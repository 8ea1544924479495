package timeline

import (
	"fmt"
	"strings"
	"time"
)

// Parse extracts project metadata and milestones from free-form timeline
// text, reading bare dates as local midnight. See ParseInLocation.
func Parse(text string) ParseResult {
	return ParseInLocation(text, time.Local)
}

// ParseInLocation extracts project metadata and milestones from free-form
// timeline text (Notion exports, sprint tables, prose). It never panics:
// internal failures are reported in Errors and whatever was recognised
// before the failure is still returned.
//
// Only the first markdown table is read. A row becomes a milestone when it
// has a title and at least one resolvable start or end date; other rows are
// dropped without an error.
func ParseInLocation(text string, loc *time.Location) (res ParseResult) {
	res.Milestones = []Milestone{}
	res.Errors = []string{}

	defer func() {
		if r := recover(); r != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("timeline parse failed: %v", r))
		}
	}()

	text = strings.ReplaceAll(text, "\r\n", "\n")

	for _, rule := range headerRules {
		applyRule(rule, text, &res, loc)
	}

	rows := findTable(strings.Split(text, "\n"))
	if len(rows) == 0 {
		return res
	}

	headers := splitRow(rows[0])
	for i := range headers {
		headers[i] = normalizeHeader(headers[i])
	}

	for _, row := range rows[1:] {
		cells := splitRow(row)
		if len(cells) < len(headers) {
			continue
		}
		m := buildMilestone(headers, cells, loc)
		if m.Emittable() {
			res.Milestones = append(res.Milestones, m)
		}
	}
	return res
}

// applyRule runs a single header rule, recording a failure without
// aborting the remaining rules.
func applyRule(rule headerRule, text string, res *ParseResult, loc *time.Location) {
	defer func() {
		if r := recover(); r != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("header rule %s failed: %v", rule.name, r))
		}
	}()
	rule.apply(text, &res.ProjectInfo, loc)
}

// buildMilestone maps one table row onto a Milestone by header key.
func buildMilestone(headers, cells []string, loc *time.Location) Milestone {
	var m Milestone
	for i, key := range headers {
		val := cells[i]
		switch key {
		case "milestone":
			m.MilestoneNumber = val
		case "title":
			m.Title = val
		case "description":
			m.Description = val
		case "start":
			m.StartDate = ParseDate(val, loc)
		case "end":
			m.EndDate = ParseDate(val, loc)
		case "effort_(hrs)", "effort":
			m.Effort = val
		case "acceptance_criteria":
			m.AcceptanceCriteria = val
		case "payment":
			m.Payment = val
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]string)
			}
			m.Extra[key] = val
		}
	}
	return m
}
