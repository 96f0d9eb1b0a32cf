package notifier

import (
	"sync"

	"github.com/pitchside/calcetto/internal/stats"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendReportCalls    []*stats.Report
	SendMatchListCalls []struct {
		Tenant string
		Lines  []string
	}
	SendConfirmationCalls []string

	// Spies for format functions
	FormatReportResponseFunc    func(report *stats.Report) (any, error)
	FormatMatchListResponseFunc func(tenant string, lines []string) (any, error)

	// Call records for format functions
	LastReportResponse    any
	LastMatchListResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendReportCalls = nil
	m.SendMatchListCalls = nil
	m.SendConfirmationCalls = nil
	m.LastReportResponse = nil
	m.LastMatchListResponse = nil
}

func (m *Mock) SendReport(report *stats.Report, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendReportCalls = append(m.SendReportCalls, report)
	return nil
}

func (m *Mock) SendMatchList(tenant string, lines []string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchListCalls = append(m.SendMatchListCalls, struct {
		Tenant string
		Lines  []string
	}{tenant, lines})
	return nil
}

func (m *Mock) SendConfirmation(text string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendConfirmationCalls = append(m.SendConfirmationCalls, text)
	return nil
}

func (m *Mock) FormatReportResponse(report *stats.Report) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatReportResponseFunc != nil {
		resp, err := m.FormatReportResponseFunc(report)
		m.LastReportResponse = resp
		return resp, err
	}
	return "formatted_report", nil
}

func (m *Mock) FormatMatchListResponse(tenant string, lines []string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatMatchListResponseFunc != nil {
		resp, err := m.FormatMatchListResponseFunc(tenant, lines)
		m.LastMatchListResponse = resp
		return resp, err
	}
	return "formatted_match_list", nil
}
