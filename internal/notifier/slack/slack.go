package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pitchside/calcetto/internal/metrics"
	"github.com/pitchside/calcetto/internal/notifier"
	"github.com/pitchside/calcetto/internal/stats"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendReport(report *stats.Report, dryRun bool) error {
	msg := s.formatReport(report)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendMatchList(tenant string, lines []string, dryRun bool) error {
	msg := s.formatMatchList(tenant, lines)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendConfirmation(text string, dryRun bool) error {
	msg := slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil),
	)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatReportResponse formats the statistics report for an inline HTTP response.
func (s *Notifier) FormatReportResponse(report *stats.Report) (any, error) {
	return s.formatReport(report), nil
}

// FormatMatchListResponse formats the match digest for an inline HTTP response.
func (s *Notifier) FormatMatchListResponse(tenant string, lines []string) (any, error) {
	return s.formatMatchList(tenant, lines), nil
}

// formatReport creates the Slack message for a full statistics report using Block Kit.
// Slack has no native table block, so each table is rendered as a fenced
// monospace grid inside a section block.
func (s *Notifier) formatReport(report *stats.Report) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Statistics report ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(report.Players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players registered yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, table := range []stats.Table{report.Summary, report.TopScorers, report.TopAssists, report.TopPresences, report.Matches} {
		blocks = append(blocks, tableBlocks(table)...)
	}

	contextText := fmt.Sprintf("%d matches on record", report.MatchCount)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatMatchList creates the Slack message for the plain-text match digest.
func (s *Notifier) formatMatchList(tenant string, lines []string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Match history ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(lines) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No matches recorded yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Slack section blocks cap out at 3000 characters, so chunk long histories.
	const maxChunk = 2900
	var chunk []string
	chunkLen := 0
	flush := func() {
		if len(chunk) == 0 {
			return
		}
		text := strings.Join(chunk, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil))
		chunk = nil
		chunkLen = 0
	}
	for _, line := range lines {
		if chunkLen+len(line)+1 > maxChunk {
			flush()
		}
		chunk = append(chunk, line)
		chunkLen += len(line) + 1
	}
	flush()

	return slack.NewBlockMessage(blocks...)
}

// tableBlocks renders a stats table as a header section plus a monospace grid.
func tableBlocks(table stats.Table) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s*", table.Title), false, false), nil, nil),
	}
	if len(table.Rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No data yet.", true, false), nil, nil))
		return blocks
	}

	widths := make([]int, len(table.Header))
	for i, h := range table.Header {
		widths[i] = len(h)
	}
	for _, row := range table.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			if i < len(widths) {
				sb.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		sb.WriteString("\n")
	}
	writeRow(table.Header)
	for _, row := range table.Rows {
		writeRow(row)
	}

	text := fmt.Sprintf("```%s```", sb.String())
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	return blocks
}
