// Package shared provides common utility functions used across multiple
// packages in the config-packager codebase.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

var machineNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// NormalizeMachineName lowercases a human name and replaces every run of
// characters outside [a-z0-9] with a single underscore.
func NormalizeMachineName(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	underscore := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ValidMachineName reports whether value is usable as a package or bundle
// machine name.
func ValidMachineName(value string) bool {
	return machineNamePattern.MatchString(value)
}

// SplitItemReference splits "package:item" into its parts.  A reference
// without a colon names a package only.
func SplitItemReference(value string) (string, string) {
	pkg, item, found := strings.Cut(strings.TrimSpace(value), ":")
	if !found {
		return pkg, ""
	}
	return pkg, item
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
