package notifier

import (
	"github.com/pitchside/calcetto/internal/stats"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For the full statistics report
	SendReport(report *stats.Report, dryRun bool) error
	// For the plain-text match digest
	SendMatchList(tenant string, lines []string, dryRun bool) error
	// For short confirmations (match saved, edited, deleted)
	SendConfirmation(text string, dryRun bool) error

	// For formatting responses returned inline over HTTP
	FormatReportResponse(report *stats.Report) (any, error)
	FormatMatchListResponse(tenant string, lines []string) (any, error)
}
