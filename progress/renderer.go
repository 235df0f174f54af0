package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"tarun-kavipurapu/swarm-sim/pkg/logger"
)

// ANSI color codes for terminal output
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"
	Bold   = "\033[1m"
)

// Renderer redraws a one-line swarm progress bar.
type Renderer struct {
	tracker     *Tracker
	out         io.Writer
	stopChan    chan struct{}
	doneChan    chan struct{}
	refreshRate time.Duration
	useColors   bool
	width       int
	lastLineLen int
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(tracker *Tracker, out io.Writer, useColors bool) *Renderer {
	return &Renderer{
		tracker:     tracker,
		out:         out,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
		refreshRate: 200 * time.Millisecond,
		useColors:   useColors,
		width:       40,
	}
}

// SetRefreshRate sets the refresh rate for the progress bar
func (r *Renderer) SetRefreshRate(rate time.Duration) {
	r.refreshRate = rate
}

// SetWidth sets the width of the progress bar
func (r *Renderer) SetWidth(width int) {
	r.width = width
}

// Start runs the render loop until StopAndWait. Call it on its own
// goroutine.
func (r *Renderer) Start() {
	defer close(r.doneChan)
	r.Render()

	ticker := time.NewTicker(r.refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Render()
		case <-r.stopChan:
			return
		}
	}
}

// StopAndWait stops the render loop and prints the final line.
func (r *Renderer) StopAndWait() {
	close(r.stopChan)
	<-r.doneChan

	if r.tracker == nil {
		logger.Sugar.Warn("[Progress] No tracker to stop")
		return
	}
	if r.tracker.IsComplete() {
		r.RenderFinal()
	} else {
		r.RenderIncomplete()
	}
}

// Render draws the current progress over the previous line.
func (r *Renderer) Render() {
	s := r.tracker.GetProgress()
	percent := s.Percent()

	filled := int(float64(r.width) * percent / 100)
	if filled > r.width {
		filled = r.width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", r.width-filled)

	var line string
	if r.useColors {
		line = fmt.Sprintf("\r%s[round %d]%s [%s]%s %.1f%%%s (%d/%d peers, %d/%d chunks) | %s%d transfers%s | %s units",
			Cyan, s.Round, Reset,
			Green+bar+Reset,
			Yellow, percent, Reset,
			s.CompletedPeers, s.TotalPeers, s.CompletedChunks, s.TotalChunks,
			Blue, s.ActiveTransfers, Reset,
			formatUnits(float64(s.Units)),
		)
	} else {
		line = fmt.Sprintf("\r[round %d] [%s] %.1f%% (%d/%d peers, %d/%d chunks) | %d transfers | %s units",
			s.Round, bar, percent,
			s.CompletedPeers, s.TotalPeers, s.CompletedChunks, s.TotalChunks,
			s.ActiveTransfers, formatUnits(float64(s.Units)),
		)
	}

	if pad := r.lastLineLen - len(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	r.lastLineLen = len(line)
	fmt.Fprint(r.out, line)
}

// RenderFinal renders the completed state
func (r *Renderer) RenderFinal() {
	s := r.tracker.GetProgress()
	elapsed := r.tracker.GetElapsedTime()

	fmt.Fprint(r.out, "\r\033[K")

	full := strings.Repeat("█", r.width)
	if r.useColors {
		fmt.Fprintf(r.out, "%s[round %d]%s [%s]%s 100%% (%d peers, %d chunks)%s | Completed in %s\n",
			Cyan, s.Round, Reset,
			Green+full+Reset,
			Green, s.TotalPeers, s.TotalChunks, Reset,
			formatDuration(elapsed),
		)
		return
	}
	fmt.Fprintf(r.out, "[round %d] [%s] 100%% (%d peers, %d chunks) | Completed in %s\n",
		s.Round, full, s.TotalPeers, s.TotalChunks, formatDuration(elapsed))
}

// RenderIncomplete renders a run that was stopped before every peer
// finished.
func (r *Renderer) RenderIncomplete() {
	s := r.tracker.GetProgress()

	fmt.Fprint(r.out, "\r\033[K")

	if r.useColors {
		fmt.Fprintf(r.out, "%s[round %d]%s [%s] %.1f%% | %sStopped%s: %d/%d peers complete\n",
			Cyan, s.Round, Reset,
			Red+"✗"+Reset,
			s.Percent(),
			Red+Bold, Reset, s.CompletedPeers, s.TotalPeers,
		)
		return
	}
	fmt.Fprintf(r.out, "[round %d] [✗] %.1f%% | Stopped: %d/%d peers complete\n",
		s.Round, s.Percent(), s.CompletedPeers, s.TotalPeers)
}

// formatUnits formats a transfer volume with a metric suffix.
func formatUnits(units float64) string {
	const unit = 1000
	if units < unit {
		return fmt.Sprintf("%.0f", units)
	}
	div, exp := float64(unit), 0
	for n := units / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", units/div, "kMGTPE"[exp])
}

// formatDuration formats a duration into a human-readable string
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", d/time.Second)
	}
	if d < time.Hour {
		mins := d / time.Minute
		secs := (d % time.Minute) / time.Second
		return fmt.Sprintf("%dm%ds", mins, secs)
	}
	hours := d / time.Hour
	mins := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%dh%dm", hours, mins)
}
