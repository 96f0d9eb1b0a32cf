package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                    sync.Mutex
	matchesCommitted      int
	matchesEdited         int
	matchesDeleted        int
	intakeSessionsStarted int
	intakeCancellations   int
	validationFailures    int
	reportsGenerated      int
	slackNotifSent        int
	slackNotifFailed      int
	reportDurations       []float64
	startupTime           float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		reportDurations: make([]float64, 0),
	}
}

func (m *Mock) IncMatchesCommitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCommitted++
}

func (m *Mock) IncMatchesEdited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesEdited++
}

func (m *Mock) IncMatchesDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesDeleted++
}

func (m *Mock) IncIntakeSessionsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intakeSessionsStarted++
}

func (m *Mock) IncIntakeCancellations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intakeCancellations++
}

func (m *Mock) IncValidationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationFailures++
}

func (m *Mock) IncReportsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportsGenerated++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) ObserveReportDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportDurations = append(m.reportDurations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesCommitted returns the number of times IncMatchesCommitted was called.
func (m *Mock) MatchesCommitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCommitted
}

// MatchesEdited returns the number of times IncMatchesEdited was called.
func (m *Mock) MatchesEdited() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesEdited
}

// MatchesDeleted returns the number of times IncMatchesDeleted was called.
func (m *Mock) MatchesDeleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesDeleted
}

// ValidationFailures returns the number of times IncValidationFailures was called.
func (m *Mock) ValidationFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validationFailures
}

// ReportsGenerated returns the number of times IncReportsGenerated was called.
func (m *Mock) ReportsGenerated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reportsGenerated
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
