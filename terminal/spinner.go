package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Spinner draws a progress indicator on a terminal while requests are in
// flight. Show and Hide are reference counted, so nested requests keep a
// single spinner on screen.
type Spinner struct {
	out     io.Writer
	enabled bool

	// draw serializes frames with lines printed through Pause
	draw sync.Mutex

	mu      sync.Mutex
	depth   int
	message string
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a spinner writing to stderr. It does nothing when
// stderr is not a terminal.
func NewSpinner() *Spinner {
	fd := os.Stderr.Fd()
	return NewSpinnerWriter(os.Stderr, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// NewSpinnerWriter creates a spinner writing to out
func NewSpinnerWriter(out io.Writer, enabled bool) *Spinner {
	return &Spinner{out: out, enabled: enabled}
}

// Show starts the spinner, or updates its message if it is already running
func (s *Spinner) Show(message string) {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.depth++
	s.message = message
	if s.depth > 1 {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

// Hide stops the spinner once every Show has been matched
func (s *Spinner) Hide() {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	if s.depth == 0 {
		s.mu.Unlock()
		return
	}
	s.depth--
	if s.depth > 0 {
		s.mu.Unlock()
		return
	}
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

// Active reports whether the spinner is currently shown
func (s *Spinner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth > 0
}

// Pause clears the spinner line and runs fn before the next frame is drawn
func (s *Spinner) Pause(fn func()) {
	s.draw.Lock()
	defer s.draw.Unlock()
	if s.enabled && s.Active() {
		fmt.Fprint(s.out, "\r\033[K")
	}
	fn()
}

func (s *Spinner) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		s.mu.Lock()
		msg := s.message
		s.mu.Unlock()

		s.draw.Lock()
		fmt.Fprintf(s.out, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], msg)
		s.draw.Unlock()

		select {
		case <-stop:
			// clear the line
			s.draw.Lock()
			fmt.Fprint(s.out, "\r\033[K")
			s.draw.Unlock()
			return
		case <-ticker.C:
		}
	}
}
