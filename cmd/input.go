package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moasaja/moasaja/api"
	"golang.org/x/term"
)

// parseID validates a post, comment or user id argument
func parseID(arg string) (api.ID, error) {
	id := strings.TrimSpace(arg)
	if id == "" {
		return "", fmt.Errorf("id must not be empty")
	}
	return api.ID(id), nil
}

// parseFields turns key=value pairs into a JSON patch. Values that parse as
// JSON (numbers, booleans, null, quoted strings) keep their type; anything
// else is sent as a string.
func parseFields(pairs []string) (map[string]any, error) {
	patch := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", pair)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		patch[key] = value
	}
	return patch, nil
}

// stdin is shared so consecutive prompts don't lose buffered input
var stdin = bufio.NewReader(os.Stdin)

// prompt reads one line from in after printing label to stderr
func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)

	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// terminal hooks, swapped in tests
var (
	isTerminal = term.IsTerminal
	readNoEcho = term.ReadPassword
	stdinFD    = func() int { return int(os.Stdin.Fd()) }
)

// readPassword reads a secret without echo when stdin is a terminal and
// falls back to a plain prompt on in otherwise
func readPassword(in *bufio.Reader, label string) (string, error) {
	fd := stdinFD()
	if !isTerminal(fd) {
		return prompt(in, label)
	}

	fmt.Fprint(os.Stderr, label)
	secret, err := readNoEcho(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// confirm asks a yes/no question, defaulting to no
func confirm(in *bufio.Reader, question string) bool {
	answer, err := prompt(in, question+" [y/N]: ")
	if err != nil {
		return false
	}
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}
