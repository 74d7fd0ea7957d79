package predictctl

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"predictd/pkg/types"
)

const (
	barWidth  = 24
	barChar   = "█"
	emptyChar = "░"
)

// probabilityBar renders p in [0,1] as a fixed-width bar. The scale is
// doubled so the common sub-50% candidates stay visually distinct.
func probabilityBar(p float64) string {
	bars := int(p * 2 * float64(barWidth))
	if bars > barWidth {
		bars = barWidth
	}
	if bars < 0 {
		bars = 0
	}
	return strings.Repeat(barChar, bars) + strings.Repeat(emptyChar, barWidth-bars)
}

// tokenLabel quotes a token so leading spaces stay visible.
func tokenLabel(tok string) string {
	return strconv.Quote(tok)
}

// WriteResult prints an ordered candidate distribution.
func WriteResult(w io.Writer, res *types.PredictionResult) {
	fmt.Fprintf(w, "model: %s  id: %s\n\n", res.Model, res.ID)
	for i, c := range res.Candidates {
		fmt.Fprintf(w, "%2d. %-20s %s %6.2f%%  (logprob %.3f)\n",
			i+1, tokenLabel(c.Token), probabilityBar(c.Probability), c.Probability*100, c.LogProb)
	}
	if len(res.Candidates) > 0 {
		top := res.Candidates[0]
		fmt.Fprintf(w, "\ntop choice: %s (%.1f%%)\n", tokenLabel(top.Token), top.Probability*100)
	}
	if res.Preview != "" {
		fmt.Fprintf(w, "preview: %s\n", res.Preview)
	}
}

// WriteSnapshot prints the session state with its current result, if any.
func WriteSnapshot(w io.Writer, snap types.Snapshot) {
	fmt.Fprintf(w, "state: %s\n", snap.State)
	if snap.Text != "" {
		fmt.Fprintf(w, "text:  %s\n", snap.Text)
	}
	fmt.Fprintf(w, "settings: auto_update=%t top_n=%d temperature=%.2f model=%s\n",
		snap.Settings.AutoUpdate, snap.Settings.TopN, snap.Settings.Temperature, snap.Settings.Model)
	if snap.Error != nil {
		fmt.Fprintf(w, "error: %s: %s\n", snap.Error.Code, snap.Error.Message)
	}
	if snap.Result != nil {
		fmt.Fprintln(w)
		WriteResult(w, snap.Result)
	}
}

// WriteHistory prints retained predictions, most recent first.
func WriteHistory(w io.Writer, entries []types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no history")
		return
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(w, "%2d. %s  %q\n", i+1, time.Unix(e.At, 0).Format("15:04:05"), e.Text)
		for _, c := range e.Candidates {
			fmt.Fprintf(w, "      %-20s %5.1f%%\n", tokenLabel(c.Token), c.Probability*100)
		}
	}
}

// WriteModels prints the configured profiles.
func WriteModels(w io.Writer, models []types.Profile) {
	for _, m := range models {
		line := m.ID
		if m.BaseURL != "" {
			line += "  " + m.BaseURL
		}
		if m.Notes != "" {
			line += "  (" + m.Notes + ")"
		}
		fmt.Fprintln(w, line)
	}
}

// usageBar renders a percentage as a narrow gauge.
func usageBar(percent float64) string {
	const width = 12
	bars := int(percent * float64(width) / 100)
	if bars > width {
		bars = width
	}
	if bars < 0 {
		bars = 0
	}
	return strings.Repeat(barChar, bars) + strings.Repeat(emptyChar, width-bars)
}

// WriteStatus prints server counters and host usage gauges.
func WriteStatus(w io.Writer, st types.StatusResponse) {
	fmt.Fprintf(w, "state:       %s\n", st.State)
	fmt.Fprintf(w, "uptime:      %s\n", (time.Duration(st.UptimeSeconds) * time.Second).String())
	fmt.Fprintf(w, "predictions: %d total, %d ok, %d failed\n",
		st.PredictionsTotal, st.PredictionsOK, st.PredictionsFailed)
	fmt.Fprintf(w, "history:     %d entries\n", st.HistoryLen)
	fmt.Fprintf(w, "credential:  present=%t\n", st.CredentialPresent)
	fmt.Fprintf(w, "CPU %s %3.0f%%\n", usageBar(st.CPUPercent), st.CPUPercent)
	fmt.Fprintf(w, "MEM %s %3.0f%%  (%.1f/%.1f GB)\n",
		usageBar(st.MemPercent), st.MemPercent, st.MemUsedGB, st.MemTotalGB)
}
