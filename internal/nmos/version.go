package nmos

import (
	"fmt"
	"strconv"
	"strings"
)

// APIVersion is a parsed NMOS API version such as "v1.2".
type APIVersion struct {
	Major int
	Minor int
}

// ParseAPIVersion parses a version string of the form "v<major>.<minor>".
func ParseAPIVersion(s string) (APIVersion, error) {
	trimmed := strings.TrimPrefix(s, "v")
	if trimmed == s {
		return APIVersion{}, fmt.Errorf("invalid API version %q: missing 'v' prefix", s)
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) != 2 {
		return APIVersion{}, fmt.Errorf("invalid API version %q: expected v<major>.<minor>", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return APIVersion{}, fmt.Errorf("invalid API version %q: %w", s, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return APIVersion{}, fmt.Errorf("invalid API version %q: %w", s, err)
	}
	if major < 0 || minor < 0 {
		return APIVersion{}, fmt.Errorf("invalid API version %q: negative component", s)
	}

	return APIVersion{Major: major, Minor: minor}, nil
}

// String returns the canonical "v<major>.<minor>" form.
func (v APIVersion) String() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether v is greater than or equal to major.minor.
func (v APIVersion) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}
