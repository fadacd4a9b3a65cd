package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/ports"
	"golang.org/x/term"
)

const (
	defaultBarWidth    = 40
	defaultTTYInterval = 100 * time.Millisecond
	defaultLogInterval = 5 * time.Second
)

// Reporter polls a domain.Progress from its own goroutine. On a terminal
// it redraws a bar in place; otherwise it emits periodic log lines.
type Reporter struct {
	out         io.Writer
	logger      *slog.Logger
	interactive bool
	interval    time.Duration
	bar         progress.Model

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	p       *domain.Progress
	title   string
	started time.Time
}

var _ ports.ProgressReporter = (*Reporter)(nil)

// Options tweaks a Reporter. Zero values pick defaults.
type Options struct {
	Interactive bool
	Interval    time.Duration
	Width       int
}

// New returns a reporter drawing to out. The bar is used only when out is
// a terminal.
func New(out io.Writer, logger *slog.Logger) *Reporter {
	return NewWithOptions(out, logger, Options{Interactive: IsTerminal(out)})
}

func NewWithOptions(out io.Writer, logger *slog.Logger, opts Options) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultLogInterval
		if opts.Interactive {
			opts.Interval = defaultTTYInterval
		}
	}
	if opts.Width <= 0 {
		opts.Width = defaultBarWidth
	}
	return &Reporter{
		out:         out,
		logger:      logger,
		interactive: opts.Interactive,
		interval:    opts.Interval,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(opts.Width)),
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

func (r *Reporter) Start(p *domain.Progress, title string) {
	r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.p = p
	r.title = title
	r.started = time.Now()
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go r.loop(r.stop, r.done)
}

// Stop halts polling and draws the final state. It is safe to call when
// the reporter is not running.
func (r *Reporter) Stop() {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	r.render(true)
}

func (r *Reporter) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.render(false)
		}
	}
}

func (r *Reporter) render(final bool) {
	completed, total := r.p.Completed(), r.p.Total()
	elapsed := time.Since(r.started).Round(time.Second)

	if !r.interactive {
		msg := "hashing"
		if final {
			msg = "hashing finished"
		}
		r.logger.Info(msg,
			"title", r.title,
			"completed", completed,
			"total", total,
			"percent", fmt.Sprintf("%.1f", 100*r.p.Fraction()),
		)
		return
	}

	_, _ = fmt.Fprintf(r.out, "\r[%s] %s %d/%d", elapsed, r.bar.ViewAs(r.p.Fraction()), completed, total)
	if final {
		_, _ = fmt.Fprintln(r.out)
	}
}
