package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// Notifier prints user-facing messages, one per line
type Notifier struct {
	mu      sync.Mutex
	out     io.Writer
	quiet   bool
	spinner *Spinner
}

// NewNotifier creates a notifier writing to stderr. A quiet notifier only
// prints errors.
func NewNotifier(quiet bool) *Notifier {
	return NewNotifierWriter(os.Stderr, quiet)
}

// NewNotifierWriter creates a notifier writing to out
func NewNotifierWriter(out io.Writer, quiet bool) *Notifier {
	return &Notifier{out: out, quiet: quiet}
}

// PauseSpinner makes every message clear s first, so a message sharing the
// terminal with a running spinner starts on a clean line
func (n *Notifier) PauseSpinner(s *Spinner) *Notifier {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spinner = s
	return n
}

func (n *Notifier) Success(message string) {
	if n.quiet {
		return
	}
	n.print(successStyle.Render("✔ " + message))
}

func (n *Notifier) Error(message string) {
	n.print(errorStyle.Render("✖ " + message))
}

func (n *Notifier) Warning(message string) {
	if n.quiet {
		return
	}
	n.print(warningStyle.Render("! " + message))
}

func (n *Notifier) Info(message string) {
	if n.quiet {
		return
	}
	n.print(infoStyle.Render("i " + message))
}

func (n *Notifier) print(line string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.spinner == nil {
		fmt.Fprintln(n.out, line)
		return
	}
	n.spinner.Pause(func() { fmt.Fprintln(n.out, line) })
}
