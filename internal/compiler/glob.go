package compiler

import (
	"path"
	"strings"
)

// MatchesGlob checks if a slash-separated path relative to the project
// directory matches any of the include patterns and none of the exclude
// patterns.
func MatchesGlob(relPath string, includePatterns []string, excludePatterns []string) bool {
	if len(includePatterns) == 0 {
		return false
	}

	relPath = strings.TrimPrefix(relPath, "./")

	// Check exclude first
	for _, pattern := range excludePatterns {
		if globMatch(relPath, normalizePattern(pattern)) {
			return false
		}
	}

	for _, pattern := range includePatterns {
		if globMatch(relPath, normalizePattern(pattern)) {
			return true
		}
	}

	return false
}

func normalizePattern(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	// A bare directory excludes everything below it.
	if !strings.ContainsAny(p, "*?[") && !strings.Contains(path.Base(p), ".") {
		p = strings.TrimSuffix(p, "/") + "/**"
	}
	return p
}

// globMatch matches a path against a glob pattern with ** support.
// "**" spans any number of directories, including none; the remaining
// segments use path.Match syntax.
func globMatch(relPath, pattern string) bool {
	if matched, _ := path.Match(pattern, relPath); matched {
		return true
	}
	if !strings.Contains(pattern, "**") {
		return false
	}
	return matchSegments(strings.Split(relPath, "/"), strings.Split(pattern, "/"))
}

func matchSegments(parts, pattern []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(parts); i++ {
				if matchSegments(parts[i:], rest) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 {
			return false
		}
		if matched, _ := path.Match(pattern[0], parts[0]); !matched {
			return false
		}
		parts, pattern = parts[1:], pattern[1:]
	}
	return len(parts) == 0
}
