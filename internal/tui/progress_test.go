package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel() ProgressModel {
	m := NewProgressModel("Resolving ideaIC 2023.2", []Column{
		{Header: "ARTIFACT", Width: 20},
		{Header: "STATUS", Width: 12},
	})
	m.AddRow("ideaIC", []string{"ideaIC", "pending"})
	m.AddRow("sources", []string{"sources", "pending"})
	return m
}

func TestRowUpdate(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(RowUpdateMsg{
		Key:    "ideaIC",
		Fields: map[string]string{"STATUS": "downloaded"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[1] != "downloaded" {
		t.Errorf("expected STATUS=downloaded, got %q", m.rows[0].Fields[1])
	}
	// Second row unchanged.
	if m.rows[1].Fields[1] != "pending" {
		t.Errorf("expected sources STATUS=pending, got %q", m.rows[1].Fields[1])
	}
}

func TestRowUpdateUnknownKey(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(RowUpdateMsg{
		Key:    "nope",
		Fields: map[string]string{"STATUS": "downloaded"},
	})
	m = updated.(ProgressModel)

	for i, row := range m.rows {
		if row.Fields[1] != "pending" {
			t.Errorf("row %d STATUS changed unexpectedly: %q", i, row.Fields[1])
		}
	}
}

func TestWorkDoneQuits(t *testing.T) {
	m := newTestModel()
	updated, cmd := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Error("model should be done after WorkDoneMsg")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestViewRendersRowsAndCounter(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(RowUpdateMsg{
		Key:    "ideaIC",
		Fields: map[string]string{"STATUS": "downloaded"},
	})
	m = updated.(ProgressModel)

	view := m.View()
	for _, want := range []string{"ARTIFACT", "STATUS", "ideaIC", "sources", "Resolving 1/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestResolveReporterSendsRowUpdates(t *testing.T) {
	var got []tea.Msg
	reporter := NewResolveReporter(func(msg tea.Msg) { got = append(got, msg) })

	reporter.Step("ideaIC", "downloading")
	reporter.Step("ideaIC", "downloaded")

	if len(got) != 2 {
		t.Fatalf("messages = %d, want 2", len(got))
	}
	update, ok := got[1].(RowUpdateMsg)
	if !ok {
		t.Fatalf("message type %T", got[1])
	}
	if update.Key != "ideaIC" || update.Fields["STATUS"] != "downloaded" {
		t.Fatalf("update = %+v", update)
	}
}

func TestDetectMode(t *testing.T) {
	var buf bytes.Buffer
	if got := DetectMode(&buf, false, true); got != ModeJSON {
		t.Fatalf("json flag: mode = %d", got)
	}
	if got := DetectMode(&buf, true, false); got != ModePlain {
		t.Fatalf("no-progress flag: mode = %d", got)
	}
	// A plain buffer is not a character device.
	if got := DetectMode(&buf, false, false); got != ModePlain {
		t.Fatalf("buffer: mode = %d", got)
	}
}

func TestStatusStylesMatchReporterVocabulary(t *testing.T) {
	want := []string{"pending", "downloading", "downloaded", "skipped", "error"}
	if len(statusStyles) != len(want) {
		t.Fatalf("statusStyles has %d entries, want %d", len(statusStyles), len(want))
	}
	for _, status := range want {
		if _, ok := statusStyles[status]; !ok {
			t.Errorf("no style for status %q", status)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate(short) = %q", got)
	}
	if got := truncate("a-very-long-artifact-name", 10); got != "a-very-..." {
		t.Fatalf("truncate = %q", got)
	}
}
