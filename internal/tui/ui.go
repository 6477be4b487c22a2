// Package tui renders a single running job: a status header over a
// scrolling view of its output. Quitting the view stops the job
// gracefully.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jmaese/runnel/internal/proc"
	"github.com/jmaese/runnel/internal/runner"
)

// UI coordinates the interactive job view backed by tview.
type UI struct {
	app     *tview.Application
	header  *tview.TextView
	logs    *tview.TextView
	jobName string
}

// New constructs a UI for the named job.
func New(jobName string) *UI {
	app := tview.NewApplication()

	header := tview.NewTextView().SetDynamicColors(true)
	header.SetBorder(true).SetTitle("Job")

	logs := tview.NewTextView().SetDynamicColors(true).SetWrap(false).SetScrollable(true)
	logs.SetBorder(true).SetTitle("Output")
	logs.SetChangedFunc(func() {
		logs.ScrollToEnd()
		app.Draw()
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 3, 0, false).
		AddItem(logs, 0, 1, true)
	app.SetRoot(flex, true)

	return &UI{
		app:     app,
		header:  header,
		logs:    logs,
		jobName: jobName,
	}
}

// Run drives the UI until the job exits or the user quits (q or Ctrl-C,
// both of which stop the job gracefully first). It returns the job's
// final status.
func Run(ctx context.Context, jobName string, in *runner.Instance) (proc.Status, error) {
	ui := New(jobName)
	ui.header.SetText(headerLine(jobName, in.PID(), "running"))

	stop := func() {
		go func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), in.Job().StopGrace.Duration+5*time.Second)
			defer cancel()
			_ = in.Stop(stopCtx)
		}()
	}

	ui.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
			stop()
			return nil
		}
		return ev
	})

	go func() {
		<-ctx.Done()
		stop()
	}()

	go func() {
		for evt := range in.Events() {
			evt := evt
			ui.app.QueueUpdateDraw(func() {
				ui.apply(evt)
			})
		}
		ui.app.Stop()
	}()

	if err := ui.app.Run(); err != nil {
		return proc.Status{}, err
	}
	return in.Wait(context.Background())
}

func (u *UI) apply(evt runner.Event) {
	switch evt.Type {
	case runner.EventStarted:
		u.header.SetText(headerLine(u.jobName, evt.PID, "running"))
	case runner.EventLog:
		fmt.Fprintf(u.logs, "[%s]%s[-] %s\n", colorFor(evt.Source), sourceTag(evt.Source), tview.Escape(evt.Message))
	case runner.EventExited:
		state := evt.Message
		if evt.Err != nil {
			state = "wait failed: " + evt.Err.Error()
		}
		u.header.SetText(headerLine(u.jobName, evt.PID, state))
	}
}

// headerLine renders the one-line job summary shown above the logs.
func headerLine(jobName string, pid int, state string) string {
	return fmt.Sprintf("[::b]%s[::-]  pid %d  %s", tview.Escape(jobName), pid, tview.Escape(state))
}

// sourceTag renders the stream label, escaped so tview does not read it
// as a color tag.
func sourceTag(source string) string {
	return tview.Escape("[" + source + "]")
}

func colorFor(source string) string {
	switch source {
	case runner.SourceStderr:
		return "yellow"
	case runner.SourceSystem:
		return "green"
	default:
		return "white"
	}
}
