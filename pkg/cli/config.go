package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// ConfigParam is the reserved parameter that names the config file
const ConfigParam = "config"

// ApplyConfigDefaults reads the section named after cmd from the config file
// at path and validates its keys against the command's parameters. The
// returned values are defaults: options given on the command line win.
//
// The file format follows the extension (yml, yaml, toml, json).
func ApplyConfigDefaults(cmd Command, path string) (map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, &CliError{
			Message: fmt.Sprintf("Failed to read configuration file '%s'.", path),
			Err:     err,
		}
	}

	if !v.IsSet(cmd.Name) {
		return nil, &CliError{
			Message: fmt.Sprintf("Section `%s` not found in configuration file '%s'.", cmd.Name, path),
		}
	}
	section := v.GetStringMap(cmd.Name)

	valid := configKeys(cmd)
	keys := make([]string, 0, len(section))
	for key := range section {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	defaults := make(map[string]any, len(section))
	for _, key := range keys {
		name, ok := valid[key]
		if !ok {
			return nil, &ConfigValidationError{
				Key:        key,
				Command:    cmd.Name,
				Suggestion: Suggest(key, configKeyNames(cmd)),
			}
		}
		defaults[name] = section[key]
	}
	return defaults, nil
}

// configKeys maps the lower cased key viper reports to the parameter name
func configKeys(cmd Command) map[string]string {
	keys := make(map[string]string, len(cmd.Params))
	for _, name := range configKeyNames(cmd) {
		keys[strings.ToLower(name)] = name
	}
	return keys
}

func configKeyNames(cmd Command) []string {
	var names []string
	for _, name := range cmd.ParamNames() {
		if name != ConfigParam {
			names = append(names, name)
		}
	}
	return names
}
