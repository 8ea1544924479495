package timeline

import (
	"regexp"
	"strings"
	"time"
)

// headerRule extracts one piece of project metadata from the whole document.
// Rules are independent of each other and of table parsing.
type headerRule struct {
	name  string
	apply func(text string, info *ProjectInfo, loc *time.Location)
}

// Labels may be wrapped in markdown emphasis, e.g. "**Start Date:** 2026-01-05".
var (
	durationPattern   = regexp.MustCompile(`(?i)\bproject\s+timeline\s*\(([^)\n]+)\)`)
	startDatePattern  = regexp.MustCompile(`(?i)\bstart\s+date\**\s*:\**[ \t]*([^\n]*)`)
	endDatePattern    = regexp.MustCompile(`(?i)\bend\s+date\**\s*:\**[ \t]*([^\n]*)`)
	engagementPattern = regexp.MustCompile(`(?i)\bengagement\**\s*:\**[ \t]*([^\n]*)`)
	depositPattern    = regexp.MustCompile(`(?i)\bdeposit\**\s*:\**[ \t]*([^\n]*)`)
	sprintsPattern    = regexp.MustCompile(`(?i)\[sprints\]\([^)]*\)`)
)

var headerRules = []headerRule{
	{name: "duration", apply: extractDuration},
	{name: "start_date", apply: extractStartDate},
	{name: "end_date", apply: extractEndDate},
	{name: "engagement", apply: extractEngagement},
	{name: "deposit", apply: extractDeposit},
	{name: "sprints", apply: detectSprints},
}

// firstMatch returns the trimmed first capture group of re in text.
func firstMatch(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "*"))
	return v, v != ""
}

func extractDuration(text string, info *ProjectInfo, _ *time.Location) {
	if v, ok := firstMatch(durationPattern, text); ok {
		info.Duration = v
	}
}

func extractStartDate(text string, info *ProjectInfo, loc *time.Location) {
	if v, ok := firstMatch(startDatePattern, text); ok {
		info.StartDate = ParseDate(v, loc)
	}
}

func extractEndDate(text string, info *ProjectInfo, loc *time.Location) {
	if v, ok := firstMatch(endDatePattern, text); ok {
		info.EndDate = ParseDate(v, loc)
	}
}

func extractEngagement(text string, info *ProjectInfo, _ *time.Location) {
	if v, ok := firstMatch(engagementPattern, text); ok {
		info.Engagement = v
	}
}

func extractDeposit(text string, info *ProjectInfo, _ *time.Location) {
	if v, ok := firstMatch(depositPattern, text); ok {
		info.Deposit = v
	}
}

func detectSprints(text string, info *ProjectInfo, _ *time.Location) {
	info.HasSprints = sprintsPattern.MatchString(text)
}
