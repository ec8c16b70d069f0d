package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// SplitString splits a comma separated value, dropping empty items
func SplitString(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// SplitNodeNames splits on commas that are not enclosed in square brackets.
// Default node names look like "fn([in1,in2]) -> [out1,out2]" and must stay
// whole.
func SplitNodeNames(value string) []string {
	var result []string
	var arg strings.Builder
	depth := 0
	for _, r := range value + "," {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		}
		if r == ',' && depth == 0 && arg.Len() > 0 {
			result = append(result, strings.TrimSpace(arg.String()))
			arg.Reset()
			continue
		}
		arg.WriteRune(r)
	}
	return result
}

// SplitParams parses "key=value" items into a nested map. Dotted keys nest
// ("a.b=1" gives {"a": {"b": 1}}) and values are typed as YAML scalars.
func SplitParams(value string) (map[string]any, error) {
	params := make(map[string]any)
	for _, item := range SplitString(value) {
		key, raw, found := strings.Cut(item, "=")
		if !found {
			return nil, fmt.Errorf("Invalid format of `params` option: Item `%s` must contain a key and a value separated by `=`.", item)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, errors.New("Invalid format of `params` option: Parameter key cannot be an empty string.")
		}
		setDotted(params, strings.Split(key, "."), scalar(raw))
	}
	return params, nil
}

func setDotted(m map[string]any, path []string, value any) {
	for _, part := range path[:len(path)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

func scalar(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// SplitLoadVersions parses "dataset:version" pairs separated by commas
func SplitLoadVersions(value string) (map[string]string, error) {
	versions := make(map[string]string)
	if value == "" {
		return versions, nil
	}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		name, version, found := strings.Cut(item, ":")
		if !found {
			return nil, &CliError{
				Message: fmt.Sprintf("Expected the form of 'load_versions' to be 'dataset_name:YYYY-MM-DDThh.mm.ss.sssZ', found %s instead", item),
			}
		}
		versions[name] = version
	}
	return versions, nil
}

// PkgVersion returns the first line of a requirements style file that
// mentions pkg, e.g. "github.com/spf13/cobra v1.8.1" from a go.mod
func PkgVersion(reqsPath, pkg string) (string, error) {
	abs, err := filepath.Abs(reqsPath)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return "", &CliError{Message: fmt.Sprintf("Given path '%s' is not a regular file.", abs)}
	}

	f, err := os.Open(abs)
	if err != nil {
		return "", &CliError{Message: fmt.Sprintf("Failed to read '%s'.", abs), Err: err}
	}
	defer f.Close()

	pattern := regexp.MustCompile(regexp.QuoteMeta(pkg) + `([^\w]|$)`)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if pattern.MatchString(line) {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", &CliError{Message: fmt.Sprintf("Failed to read '%s'.", abs), Err: err}
	}
	return "", &CliError{Message: fmt.Sprintf("Cannot find '%s' package in '%s'.", pkg, abs)}
}

// ParseParams adapts SplitParams to Param.Parse
func ParseParams(value string) (any, error) {
	return SplitParams(value)
}

// ParseNodeNames adapts SplitNodeNames to Param.Parse
func ParseNodeNames(value string) (any, error) {
	return SplitNodeNames(value), nil
}

// ParseList adapts SplitString to Param.Parse
func ParseList(value string) (any, error) {
	return SplitString(value), nil
}

// ParseLoadVersions adapts SplitLoadVersions to Param.Parse
func ParseLoadVersions(value string) (any, error) {
	return SplitLoadVersions(value)
}
