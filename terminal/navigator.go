package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LoginHint is printed whenever the client sends the user to the login page
const LoginHint = "Run 'moasaja login' to sign in."

// Navigator stands in for page navigation on the command line: instead of
// opening the login page it tells the user how to sign in again.
type Navigator struct {
	mu      sync.Mutex
	out     io.Writer
	targets []string
}

// NewNavigator creates a navigator writing to stderr
func NewNavigator() *Navigator {
	return NewNavigatorWriter(os.Stderr)
}

// NewNavigatorWriter creates a navigator writing to out
func NewNavigatorWriter(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

// Redirect prints the login hint and records target
func (n *Navigator) Redirect(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.targets = append(n.targets, target)
	fmt.Fprintln(n.out, mutedStyle.Render(LoginHint))
}

// Redirected reports whether any redirect happened
func (n *Navigator) Redirected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.targets) > 0
}

// LastTarget returns the most recent redirect target
func (n *Navigator) LastTarget() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.targets) == 0 {
		return ""
	}
	return n.targets[len(n.targets)-1]
}
