// Package discover finds the subprojects of a Gradle build by reading its
// settings script (settings.gradle.kts or settings.gradle).
//
// Only the project structure is extracted: `include(...)` statements in
// both the Kotlin and Groovy forms, and `rootProject.name`. Everything else
// in the script (plugin management, repositories, version catalogs) is
// opaque data and ignored.
package discover

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// SettingsFileNames lists the settings script names probed by FindSettings,
// in priority order.
var SettingsFileNames = []string{"settings.gradle.kts", "settings.gradle"}

// Result is the project structure declared by a settings script.
type Result struct {
	// SettingsFile is the path of the script that was parsed.
	SettingsFile string

	// RootName is the value assigned to rootProject.name, if any.
	RootName string

	// ProjectPaths lists included project paths (":app") in declaration
	// order, without duplicates. Paths written without a leading colon are
	// normalized to have one.
	ProjectPaths []string
}

var (
	// kotlinInclude matches include(":a", ":b") including calls spanning
	// several lines.
	kotlinInclude = regexp.MustCompile(`\binclude\s*\(([^)]*)\)`)

	// groovyInclude matches the parenthesis-free Groovy form include ':a', ':b'.
	groovyInclude = regexp.MustCompile(`(?m)^\s*include\s+([^\s(].*)$`)

	// quoted extracts string literals from an argument list.
	quoted = regexp.MustCompile(`["']([^"']+)["']`)

	rootName = regexp.MustCompile(`\brootProject\.name\s*=\s*["']([^"']+)["']`)
)

// FindSettings returns the path of the settings script in dir.
// It returns an error satisfying os.IsNotExist when none exists.
func FindSettings(dir string) (string, error) {
	for _, name := range SettingsFileNames {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", &os.PathError{Op: "find", Path: filepath.Join(dir, SettingsFileNames[0]), Err: os.ErrNotExist}
}

// ParseFile reads and parses a settings script.
func ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read settings script %s", path)
	}
	result := Parse(string(data))
	result.SettingsFile = path
	return result, nil
}

// Parse extracts the project structure from settings script source.
func Parse(src string) *Result {
	src = stripComments(src)
	result := &Result{}

	if m := rootName.FindStringSubmatch(src); m != nil {
		result.RootName = m[1]
	}

	type match struct {
		offset int
		args   string
	}
	var matches []match
	for _, loc := range kotlinInclude.FindAllStringSubmatchIndex(src, -1) {
		matches = append(matches, match{offset: loc[0], args: src[loc[2]:loc[3]]})
	}
	for _, loc := range groovyInclude.FindAllStringSubmatchIndex(src, -1) {
		matches = append(matches, match{offset: loc[0], args: src[loc[2]:loc[3]]})
	}
	// Keep declaration order across both syntaxes.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].offset < matches[j-1].offset; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	seen := make(map[string]bool)
	for _, m := range matches {
		for _, q := range quoted.FindAllStringSubmatch(m.args, -1) {
			path := normalizePath(q[1])
			if path == "" || seen[path] {
				continue
			}
			seen[path] = true
			result.ProjectPaths = append(result.ProjectPaths, path)
		}
	}
	return result
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == ":" {
		return ""
	}
	if !strings.HasPrefix(p, ":") {
		p = ":" + p
	}
	return p
}

// stripComments removes // and /* */ comments while leaving string
// literals intact, so URLs such as "https://..." survive.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && i+1 < len(src):
				i++
				b.WriteByte(src[i])
			case c == quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			// Keep line structure so the Groovy line-based form still works.
			b.WriteString(strings.Repeat("\n", strings.Count(src[i:i+2+end+2], "\n")))
			i += 2 + end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
