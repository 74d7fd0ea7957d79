package predictctl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"predictd/pkg/types"
)

// Live is the interactive terminal view: an input line wired to the
// session and a live rendering of the distribution the server pushes
// over its event stream.
type Live struct {
	app         *tview.Application
	client      *Client
	distView    *tview.TextView
	historyView *tview.TextView
	statusBar   *tview.TextView
	input       *tview.InputField

	mu   sync.Mutex
	last types.Snapshot
}

// NewLive builds the terminal view around an API client.
func NewLive(client *Client) *Live {
	l := &Live{
		app:    tview.NewApplication(),
		client: client,
	}
	l.setupViews()
	l.setupHandlers()
	return l
}

func (l *Live) setupViews() {
	l.distView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	l.distView.SetBorder(true).
		SetTitle("Next Token Predictions").
		SetTitleAlign(tview.AlignLeft)

	l.historyView = tview.NewTextView().
		SetScrollable(true).
		SetWordWrap(false)
	l.historyView.SetBorder(true).
		SetTitle("Recent History").
		SetTitleAlign(tview.AlignLeft)

	l.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	l.input = tview.NewInputField().
		SetLabel("> ").
		SetPlaceholder("Once upon a time, in a land far away...").
		SetFieldWidth(0)
	l.input.SetBorder(false)
}

func (l *Live) setupHandlers() {
	// Every edit goes straight to the session; the server decides whether
	// it triggers a prediction.
	l.input.SetChangedFunc(func(text string) {
		go l.pushInput(text)
	})
	l.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			go l.refresh()
		}
	})

	l.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlR:
			go l.refresh()
			return nil
		case tcell.KeyCtrlA:
			go l.toggleAutoUpdate()
			return nil
		case tcell.KeyEscape, tcell.KeyCtrlC:
			l.app.Stop()
			return nil
		}
		return event
	})
}

// Run blocks until the user quits or ctx is cancelled.
func (l *Live) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		l.app.Stop()
	}()

	go l.watchLoop(ctx)
	go l.loadHistory()

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(l.distView, 0, 2, false).
		AddItem(l.historyView, 0, 1, false).
		AddItem(l.input, 1, 0, true).
		AddItem(l.statusBar, 1, 0, false)

	return l.app.SetRoot(flex, true).EnableMouse(true).Run()
}

// watchLoop keeps the event stream open, reconnecting until ctx is done.
// The first frame of each connection is a full snapshot, so reconnects
// resynchronize the view on their own.
func (l *Live) watchLoop(ctx context.Context) {
	for ctx.Err() == nil {
		err := l.client.Watch(ctx, func(name string, snap types.Snapshot) {
			l.mu.Lock()
			l.last = snap
			l.mu.Unlock()
			if name == "prediction_succeeded" {
				go l.loadHistory()
			}
			l.app.QueueUpdateDraw(func() {
				l.render(snap)
			})
		})
		if ctx.Err() != nil {
			return
		}
		l.setStatus(fmt.Sprintf("[red]stream lost: %v, reconnecting[white]", err))
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return
		}
	}
}

func (l *Live) pushInput(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := l.client.SetInput(ctx, text); err != nil {
		l.setStatus(fmt.Sprintf("[red]input: %v[white]", err))
	}
}

func (l *Live) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := l.client.Refresh(ctx); err != nil {
		l.setStatus(fmt.Sprintf("[red]refresh: %v[white]", err))
	}
}

func (l *Live) toggleAutoUpdate() {
	l.mu.Lock()
	settings := l.last.Settings
	l.mu.Unlock()
	settings.AutoUpdate = !settings.AutoUpdate

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := l.client.UpdateSettings(ctx, settings); err != nil {
		l.setStatus(fmt.Sprintf("[red]settings: %v[white]", err))
	}
}

func (l *Live) loadHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	entries, err := l.client.History(ctx)
	if err != nil {
		return
	}
	var b strings.Builder
	WriteHistory(&b, entries)
	l.app.QueueUpdateDraw(func() {
		l.historyView.SetText(b.String())
		l.historyView.ScrollToBeginning()
	})
}

func (l *Live) setStatus(msg string) {
	l.app.QueueUpdateDraw(func() {
		l.statusBar.SetText(msg)
	})
}

func (l *Live) render(snap types.Snapshot) {
	auto := "off"
	if snap.Settings.AutoUpdate {
		auto = "on"
	}
	l.statusBar.SetText(fmt.Sprintf("%s · auto %s · top_n %d · temp %.2f · model %s · Ctrl+R refresh · Ctrl+A auto · Esc quit",
		stateTag(snap.State), auto, snap.Settings.TopN, snap.Settings.Temperature, snap.Settings.Model))

	l.distView.Clear()
	if snap.State == "requesting" {
		fmt.Fprintf(l.distView, "[yellow]predicting…[white]\n\n")
	}
	if snap.Error != nil {
		fmt.Fprintf(l.distView, "[red]prediction failed (%s): %s[white]\n\n",
			snap.Error.Code, tview.Escape(snap.Error.Message))
	}
	res := snap.Result
	if res == nil {
		fmt.Fprint(l.distView, "Start typing to see predictions.\n")
		return
	}
	for i, c := range res.Candidates {
		fmt.Fprintf(l.distView, "%2d. %s%-20s[white] %s %6.2f%%  (logprob %.3f)\n",
			i+1, probTag(c.Probability), tview.Escape(tokenLabel(c.Token)),
			probabilityBar(c.Probability), c.Probability*100, c.LogProb)
	}
	if len(res.Candidates) > 0 {
		top := res.Candidates[0]
		fmt.Fprintf(l.distView, "\ntop choice: %s (%.1f%%)\n",
			tview.Escape(tokenLabel(top.Token)), top.Probability*100)
	}
	if res.Preview != "" {
		fmt.Fprintf(l.distView, "preview: %s\n", tview.Escape(res.Preview))
	}
}

func stateTag(state string) string {
	switch state {
	case "displaying":
		return "[green]" + state + "[white]"
	case "requesting":
		return "[yellow]" + state + "[white]"
	case "failed":
		return "[red]" + state + "[white]"
	default:
		return state
	}
}

func probTag(p float64) string {
	switch {
	case p > 0.2:
		return "[green]"
	case p > 0.05:
		return "[yellow]"
	default:
		return "[red]"
	}
}
