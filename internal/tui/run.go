package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// startupDelay gives the program time to render its first frame before
	// work starts sending updates.
	startupDelay = 50 * time.Millisecond
	// sendDelay yields to the renderer between messages; against real
	// downloads it is noise.
	sendDelay = 5 * time.Millisecond
)

// RunWithWork drives a progress model while workFn executes in the
// background. workFn receives a callback forwarding messages to the running
// program; when it returns, the program is told the work is done and
// RunWithWork unblocks with any fatal error the model recorded.
func RunWithWork(out io.Writer, model ProgressModel, workFn func(send func(tea.Msg))) error {
	program := tea.NewProgram(model, tea.WithOutput(out))

	go func() {
		time.Sleep(startupDelay)
		workFn(func(msg tea.Msg) {
			program.Send(msg)
			time.Sleep(sendDelay)
		})
		program.Send(WorkDoneMsg{})
	}()

	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(ProgressModel); ok {
		return m.Err()
	}
	return nil
}
