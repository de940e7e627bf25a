package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ResolveReporter adapts resolution step updates to bubbletea row messages.
// It implements resolve.Reporter: each artifact gets one row keyed by its
// item name, and status changes flow into the STATUS column.
type ResolveReporter struct {
	send func(tea.Msg)
}

// NewResolveReporter constructs a reporter sending through the given callback.
func NewResolveReporter(send func(tea.Msg)) *ResolveReporter {
	return &ResolveReporter{send: send}
}

// Step implements resolve.Reporter.
func (r *ResolveReporter) Step(item, status string) {
	r.send(RowUpdateMsg{
		Key:    item,
		Fields: map[string]string{"STATUS": status},
	})
}
