package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pitchside/calcetto/internal/ledger"
	"github.com/pitchside/calcetto/internal/metrics"
	"github.com/pitchside/calcetto/internal/pubsub"
	"github.com/pitchside/calcetto/internal/roster"
)

const emptyCell = "-"

// Aggregator derives the statistics report from the full ledger
// history of a tenant. It only reads; for a fixed ledger snapshot the
// result is the same on every run.
type Aggregator struct {
	ledger  ledger.Store
	roster  roster.Store
	metrics metrics.Metrics
	events  pubsub.Client
}

// New creates a new Aggregator.
func New(ledgerStore ledger.Store, rosterStore roster.Store, metricsSvc metrics.Metrics, events pubsub.Client) *Aggregator {
	return &Aggregator{
		ledger:  ledgerStore,
		roster:  rosterStore,
		metrics: metricsSvc,
		events:  events,
	}
}

// Report computes the per-player summary, the three ranking tables and
// the match digest for a tenant.
func (a *Aggregator) Report(tenant string) (*Report, error) {
	start := time.Now()

	names, err := a.roster.ListPlayers(tenant)
	if err != nil {
		return nil, err
	}
	matches, err := a.ledger.Matches(tenant)
	if err != nil {
		return nil, err
	}
	perfs, err := a.ledger.TenantPerformances(tenant)
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[string][]ledger.Performance)
	byMatch := make(map[string][]ledger.Performance)
	for _, p := range perfs {
		byPlayer[p.PlayerName] = append(byPlayer[p.PlayerName], p)
		byMatch[p.MatchID] = append(byMatch[p.MatchID], p)
	}

	report := &Report{Tenant: tenant, MatchCount: len(matches)}
	for _, name := range names {
		report.Players = append(report.Players, summarize(name, byPlayer[name], byMatch))
	}

	report.Summary = summaryTable(report.Players)
	report.TopScorers = rankingTable("Top scorers", "Goals", report.Players, func(s PlayerSummary) int { return s.Goals })
	report.TopAssists = rankingTable("Top assist-makers", "Assists", report.Players, func(s PlayerSummary) int { return s.Assists })
	report.TopPresences = rankingTable("Top appearances", "Presences", report.Players, func(s PlayerSummary) int { return s.Presences })
	report.Matches = digestTable(matches, byMatch)

	duration := time.Since(start).Seconds()
	a.metrics.IncReportsGenerated()
	a.metrics.ObserveReportDuration(duration)
	if err := a.events.SendMessage(pubsub.EventReportGenerated, pubsub.ReportEvent{
		Tenant:  tenant,
		Players: len(names),
		Matches: len(matches),
	}); err != nil {
		log.Warn("Failed to publish report event", "error", err, "tenant", tenant)
	}
	log.Info("Generated statistics report", "tenant", tenant, "players", len(names), "matches", len(matches), "duration_s", duration)

	return report, nil
}

// summarize folds one player's performance rows into their aggregate,
// including the co-occurrence pass over every match they appeared in.
func summarize(name string, rows []ledger.Performance, byMatch map[string][]ledger.Performance) PlayerSummary {
	s := PlayerSummary{Name: name, Presences: len(rows)}

	teammates := newCooccurrence()
	opponents := newCooccurrence()
	for _, row := range rows {
		s.Goals += row.Goals
		s.Assists += row.Assists
		s.Wins += row.Win
		s.Draws += row.Draw
		s.Losses += row.Loss

		for _, other := range byMatch[row.MatchID] {
			if other.PlayerID == row.PlayerID {
				continue
			}
			if other.Team == row.Team {
				teammates.add(other.PlayerName)
			} else {
				opponents.add(other.PlayerName)
			}
		}
	}

	s.AvgGoals = average(s.Goals, s.Presences)
	s.AvgAssists = average(s.Assists, s.Presences)
	s.WinPct = percentage(s.Wins, s.Presences)
	s.DrawPct = percentage(s.Draws, s.Presences)
	s.LossPct = percentage(s.Losses, s.Presences)
	s.TopTeammates = teammates.top(3)
	s.TopOpponents = opponents.top(3)
	return s
}

// cooccurrence counts appearances of other players, remembering the
// order names were first seen so that ties break deterministically.
type cooccurrence struct {
	counts map[string]int
	order  []string
}

func newCooccurrence() *cooccurrence {
	return &cooccurrence{counts: make(map[string]int)}
}

func (c *cooccurrence) add(name string) {
	if _, seen := c.counts[name]; !seen {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// top renders the n highest-count names as a "name (count)" list, or
// a placeholder when the player never shared a pitch with anyone.
func (c *cooccurrence) top(n int) string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	sort.SliceStable(names, func(i, j int) bool {
		return c.counts[names[i]] > c.counts[names[j]]
	})
	if len(names) > n {
		names = names[:n]
	}
	if len(names) == 0 {
		return emptyCell
	}
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s (%d)", name, c.counts[name])
	}
	return strings.Join(parts, ", ")
}

// average is the per-match mean rounded to 2 decimal places, 0 when
// the player has no presences.
func average(total, presences int) float64 {
	if presences == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(presences)*100) / 100
}

// percentage renders 100*count/presences rounded to 1 decimal with a
// '%' suffix, "0%" when the player has no presences.
func percentage(count, presences int) string {
	if presences == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(count)/float64(presences))
}

func summaryTable(players []PlayerSummary) Table {
	t := Table{
		Title: "Player statistics",
		Header: []string{
			"Name", "Presences", "Goals", "Avg Goals", "Assists", "Avg Assists",
			"Wins", "Win%", "Draws", "Draw%", "Losses", "Loss%",
			"Top Teammates", "Top Opponents",
		},
	}
	for _, s := range players {
		t.Rows = append(t.Rows, []string{
			s.Name,
			strconv.Itoa(s.Presences),
			strconv.Itoa(s.Goals),
			formatAvg(s.AvgGoals),
			strconv.Itoa(s.Assists),
			formatAvg(s.AvgAssists),
			strconv.Itoa(s.Wins),
			s.WinPct,
			strconv.Itoa(s.Draws),
			s.DrawPct,
			strconv.Itoa(s.Losses),
			s.LossPct,
			s.TopTeammates,
			s.TopOpponents,
		})
	}
	return t
}

func formatAvg(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// rankingTable sorts players descending by a metric, ascending by name
// on ties, and assigns 1-based rank positions.
func rankingTable(title, metricName string, players []PlayerSummary, metric func(PlayerSummary) int) Table {
	ranked := make([]PlayerSummary, len(players))
	copy(ranked, players)
	sort.Slice(ranked, func(i, j int) bool {
		if metric(ranked[i]) != metric(ranked[j]) {
			return metric(ranked[i]) > metric(ranked[j])
		}
		return ranked[i].Name < ranked[j].Name
	})

	t := Table{Title: title, Header: []string{"Rank", "Name", metricName}}
	for i, s := range ranked {
		t.Rows = append(t.Rows, []string{strconv.Itoa(i + 1), s.Name, strconv.Itoa(metric(s))})
	}
	return t
}

// digestTable lists every match with its scorers and assist-makers,
// each ordered by team then player name.
func digestTable(matches []ledger.Match, byMatch map[string][]ledger.Performance) Table {
	t := Table{
		Title:  "Matches",
		Header: []string{"Date", "Team A", "Team B", "Score", "Scorers", "Assist-makers"},
	}
	for _, m := range matches {
		rows := make([]ledger.Performance, len(byMatch[m.ID]))
		copy(rows, byMatch[m.ID])
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Team != rows[j].Team {
				return rows[i].Team < rows[j].Team
			}
			return rows[i].PlayerName < rows[j].PlayerName
		})

		var scorers, assisters []string
		for _, p := range rows {
			if p.Goals > 0 {
				scorers = append(scorers, fmt.Sprintf("%s (%d)", p.PlayerName, p.Goals))
			}
			if p.Assists > 0 {
				assisters = append(assisters, fmt.Sprintf("%s (%d)", p.PlayerName, p.Assists))
			}
		}
		t.Rows = append(t.Rows, []string{
			m.Date,
			strings.Join(m.TeamA, ", "),
			strings.Join(m.TeamB, ", "),
			m.Score,
			joinOrDash(scorers),
			joinOrDash(assisters),
		})
	}
	return t
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return emptyCell
	}
	return strings.Join(parts, ", ")
}

// MatchLines renders the plain-text match list, one line per match.
func (a *Aggregator) MatchLines(tenant string) ([]string, error) {
	matches, err := a.ledger.Matches(tenant)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("%s | Score: %s | Team A: %s | Team B: %s",
			m.Date, m.Score, strings.Join(m.TeamA, ", "), strings.Join(m.TeamB, ", ")))
	}
	return lines, nil
}
