package cli

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// VerboseHint closes non-verbose error output
const VerboseHint = "Run with --verbose to see the full exception"

// DefaultHighlightPackages are the package paths whose errors are surfaced
// first even in non-verbose mode. Scaffolding failures from templates are
// otherwise buried under the wrapping error.
var DefaultHighlightPackages = []string{"text/template", "html/template"}

// RunConfig is the per-invocation state read from the parsed command line
type RunConfig struct {
	Verbose bool
}

// ErrorRenderer formats command failures
type ErrorRenderer struct {
	Highlight []string
}

// RenderError writes err to w following cfg
func (r ErrorRenderer) RenderError(w io.Writer, err error, cfg RunConfig) {
	for _, line := range strings.Split(r.Format(err, cfg), "\n") {
		fmt.Fprintln(w, ErrorStyle.Render(line))
	}
}

// Format returns the text RenderError prints.
//
// Verbose output lists the whole chain of wrapped errors with their types.
// Otherwise only the summary line is shown, preceded by the first error
// from a highlighted package and followed by a hint to add --verbose.
func (r ErrorRenderer) Format(err error, cfg RunConfig) string {
	if err == nil {
		return ""
	}

	chain := errorChain(err)
	if cfg.Verbose {
		var b strings.Builder
		fmt.Fprintf(&b, "Error: %s\n", err)
		for i, e := range chain {
			fmt.Fprintf(&b, "%s%s: %s\n", strings.Repeat("  ", i+1), typeName(e), e)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	summary := fmt.Sprintf("%s: %s", typeName(err), err)
	if IsConfigValidationError(err) {
		return summary
	}

	var b strings.Builder
	if h := r.highlighted(chain); h != nil && h != err {
		fmt.Fprintf(&b, "%s: %s\n", typeName(h), h)
	}
	b.WriteString(summary)
	b.WriteString("\n")
	b.WriteString(VerboseHint)
	return b.String()
}

func (r ErrorRenderer) highlighted(chain []error) error {
	prefixes := r.Highlight
	if prefixes == nil {
		prefixes = DefaultHighlightPackages
	}
	for _, e := range chain {
		pkg := pkgPath(e)
		for _, p := range prefixes {
			if pkg != "" && strings.HasPrefix(pkg, p) {
				return e
			}
		}
	}
	return nil
}

// errorChain flattens err and everything it wraps, depth first
func errorChain(err error) []error {
	var chain []error
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		chain = append(chain, e)
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		default:
			walk(errors.Unwrap(e))
		}
	}
	walk(err)
	return chain
}

func typeName(err error) string {
	return reflect.TypeOf(err).String()
}

func pkgPath(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath()
}
