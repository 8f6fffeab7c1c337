// Package flagx lets several independent flag sets share one command line.
// Each set picks out the flags it owns and ignores the rest.
package flagx

import (
	"flag"
	"strings"
)

// flagName returns the bare name of a "-x", "--x" or "--x=v" argument.
func flagName(arg string) (name string, hasValue bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	name = strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	name, _, hasValue = strings.Cut(name, "=")
	return name, hasValue
}

// FilterArgs keeps only the flags listed in names, together with their
// values. Names are given without dashes and match both "-name" and
// "--name", like the flag package does. A value is either joined with '='
// or the next argument, unless that argument starts with '-'. Parsing stops
// at a bare "--".
func FilterArgs(args []string, names ...string) []string {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		name, hasValue := flagName(arg)
		if _, ok := allowed[name]; !ok || name == "" {
			continue
		}

		filtered = append(filtered, arg)
		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFileFlag returns the path given with -c or -config, or "" when
// neither is present. The last occurrence wins.
func ConfigFileFlag(args []string) string {
	var config string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file (JSON or YAML)")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, "c", "config"))

	return config
}
