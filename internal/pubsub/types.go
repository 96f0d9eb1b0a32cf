package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchCommitted  EventType = "match-committed"
	EventMatchEdited     EventType = "match-edited"
	EventMatchDeleted    EventType = "match-deleted"
	EventReportGenerated EventType = "report-generated"
)

// MatchEvent is the payload published for match lifecycle events.
type MatchEvent struct {
	Tenant  string `msgpack:"tenant"`
	MatchID string `msgpack:"match_id"`
	Date    string `msgpack:"date,omitempty"`
	Field   string `msgpack:"field,omitempty"`
}

// ReportEvent is the payload published when a statistics report is
// generated.
type ReportEvent struct {
	Tenant  string `msgpack:"tenant"`
	Players int    `msgpack:"players"`
	Matches int    `msgpack:"matches"`
}
