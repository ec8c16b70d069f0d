package cli

import (
	"io"

	"github.com/spf13/cast"
)

// Invocation carries the resolved inputs of one command run
type Invocation struct {
	Command string
	Args    []string
	Values  map[string]any
	Out     io.Writer
	Err     io.Writer
}

// Value returns the raw value of a parameter
func (i *Invocation) Value(name string) any {
	return i.Values[name]
}

// String returns a parameter as a string
func (i *Invocation) String(name string) string {
	return cast.ToString(i.Values[name])
}

// Bool returns a parameter as a bool
func (i *Invocation) Bool(name string) bool {
	return cast.ToBool(i.Values[name])
}

// Int returns a parameter as an int
func (i *Invocation) Int(name string) int {
	return cast.ToInt(i.Values[name])
}

// Strings returns a parameter as a list. A plain string, e.g. from a
// config file, is split on commas.
func (i *Invocation) Strings(name string) []string {
	switch v := i.Values[name].(type) {
	case nil:
		return nil
	case string:
		return SplitString(v)
	default:
		return cast.ToStringSlice(v)
	}
}

// Map returns a parameter as a string keyed map
func (i *Invocation) Map(name string) map[string]any {
	return cast.ToStringMap(i.Values[name])
}

// StringMap returns a parameter as a map of strings
func (i *Invocation) StringMap(name string) map[string]string {
	return cast.ToStringMapString(i.Values[name])
}
