package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// envFileNames are read in order; a variable set by an earlier file or by
// the process environment is never overridden.
var envFileNames = []string{".env.local", ".env"}

// loadEnvFiles applies the env files found in the working directory and
// next to the executable.
func loadEnvFiles() {
	for _, dir := range envSearchDirs() {
		for _, name := range envFileNames {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			applyEnvFile(data)
		}
	}
}

func envSearchDirs() []string {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		if dir := filepath.Dir(exe); len(dirs) == 0 || dir != dirs[0] {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// applyEnvFile sets the variables of one env file that are unset or empty.
func applyEnvFile(data []byte) {
	for key, value := range parseEnv(string(data)) {
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}

// parseEnv reads KEY=VALUE lines. Blank lines, comments and lines without
// "=" are skipped; an optional "export " prefix is accepted.
func parseEnv(data string) map[string]string {
	vars := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		vars[key] = envValue(strings.TrimSpace(value))
	}
	return vars
}

// envValue unquotes a double-quoted value (with Go escapes), strips single
// quotes verbatim and cuts a trailing " #" comment from bare values.
func envValue(v string) string {
	n := len(v)
	switch {
	case n >= 2 && v[0] == '"' && v[n-1] == '"':
		if s, err := strconv.Unquote(v); err == nil {
			return s
		}
		return v[1 : n-1]
	case n >= 2 && v[0] == '\'' && v[n-1] == '\'':
		return v[1 : n-1]
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}
