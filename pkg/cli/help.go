package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
)

// WriteHelp prints the top level help: usage, the joined group help texts,
// global options and one command listing per "<title> from <source>"
func (r *Router) WriteHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [OPTIONS] COMMAND [ARGS]...\n", r.name)
	if r.help != "" {
		fmt.Fprintf(w, "\n%s\n", indent(r.help, "  "))
	}

	fmt.Fprintf(w, "\nOptions:\n")
	rows := [][2]string{{"-h, --help", "Show this message and exit."}}
	if r.version != "" {
		rows = append(rows, [2]string{"--version", "Show the version and exit."})
	}
	if r.hasRoot {
		for _, p := range r.root.Params {
			rows = append(rows, [2]string{optionLabel(p), p.Help})
		}
	}
	writeRows(w, rows, false)

	for _, s := range r.sections {
		for _, src := range s.sources {
			if len(src.Groups) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s\n", SectionStyle.Render(fmt.Sprintf("%s from %s", s.title, src.Name)))

			var cmdRows [][2]string
			for _, name := range src.Names() {
				c, _ := src.Command(name)
				cmdRows = append(cmdRows, [2]string{name, c.short()})
			}
			writeRows(w, cmdRows, true)
		}
	}
}

func writeRows(w io.Writer, rows [][2]string, styled bool) {
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}
	for _, row := range rows {
		label := row[0]
		pad := strings.Repeat(" ", width-len(label))
		if styled {
			label = CmdStyle.Render(label)
		}
		fmt.Fprintf(w, "  %s%s  %s\n", label, pad, row[1])
	}
}

func optionLabel(p Param) string {
	label := "--" + p.FlagName()
	if len(p.Short) == 1 {
		label = "-" + p.Short + ", " + label
	}
	return label
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

func toString(v any) string {
	return cast.ToString(v)
}

func toBool(v any) bool {
	return cast.ToBool(v)
}

func toInt(v any) int {
	return cast.ToInt(v)
}

func toFloat(v any) float64 {
	return cast.ToFloat64(v)
}

func toStrings(v any) []string {
	if v == nil {
		return nil
	}
	return cast.ToStringSlice(v)
}
