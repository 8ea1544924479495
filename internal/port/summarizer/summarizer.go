// Package summarizer defines the port for AI text processing.
package summarizer

import (
	"context"

	"github.com/Strob0t/ClientForge/internal/domain/timeline"
)

// Summarizer condenses intake text and extracts structure from free-form timelines.
type Summarizer interface {
	// SummarizeDescription rewrites a prospect's project description into a short brief.
	SummarizeDescription(ctx context.Context, description string) (string, error)

	// ParseTimeline extracts project info and milestones from text the rule-based
	// parser cannot handle. The result has the same shape as timeline.Parse.
	ParseTimeline(ctx context.Context, text string) (timeline.ParseResult, error)
}
