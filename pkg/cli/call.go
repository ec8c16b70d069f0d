package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// CallOption configures Call
type CallOption func(*exec.Cmd)

// WithDir runs the command in dir
func WithDir(dir string) CallOption {
	return func(c *exec.Cmd) {
		c.Dir = dir
	}
}

// WithEnv appends environment variables to the inherited environment
func WithEnv(env ...string) CallOption {
	return func(c *exec.Cmd) {
		c.Env = append(os.Environ(), env...)
	}
}

// WithStderr sends the command's standard error to w
func WithStderr(w io.Writer) CallOption {
	return func(c *exec.Cmd) {
		c.Stderr = w
	}
}

// Call echoes argv to out, runs it and turns a non-zero exit into *ExitError
func Call(ctx context.Context, out io.Writer, argv []string, opts ...CallOption) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}

	quoted := make([]string, 0, len(argv))
	for _, a := range argv {
		quoted = append(quoted, shellQuote(a))
	}
	fmt.Fprintln(out, strings.Join(quoted, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	for _, opt := range opts {
		opt(cmd)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return &CliError{Message: fmt.Sprintf("Failed to run '%s'.", argv[0]), Err: err}
	}
	return nil
}

var unsafeShellChars = regexp.MustCompile(`[^\w@%+=:,./-]`)

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !unsafeShellChars.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
