// Package manifest reads and rewrites the package version of a crate
// manifest with plain string edits. Only the package part of the manifest,
// the text before the first [[bin]] table, is ever inspected or modified, so
// versions of dependencies and binaries are left alone.
package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/mod/semver"
)

const (
	// Marker separates the package part from the rest of the manifest.
	Marker = "[[bin]]"
	// DefaultVersion is reported for manifests without a version field.
	DefaultVersion = "0.0.0"
)

var (
	ErrInvalidVersion = errors.New("invalid version")
	ErrUnknownPart    = errors.New("unknown version part")
)

var (
	versionKey   = regexp.MustCompile(`(?m)^[ \t]*version[ \t]*[.=]`)
	versionField = regexp.MustCompile(`(?m)^[ \t]*version[ \t]*=[ \t]*['"]([\d.]+)['"]`)
	triple       = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

type Part string

const (
	Major Part = "major"
	Minor Part = "minor"
	Patch Part = "patch"
)

func split(doc string) (pkg, rest string) {
	idx := strings.Index(doc, Marker)
	if idx < 0 {
		return doc, ""
	}
	return doc[:idx], doc[idx:]
}

// findVersion locates the value of the package version field. It reports
// found=false when the package part has no version key at all, and
// ErrInvalidVersion when the key is there but its value is not a plain
// dotted number, such as a pre-release or a workspace-inherited version.
func findVersion(pkg string) (start, end int, found bool, err error) {
	key := versionKey.FindStringIndex(pkg)
	if key == nil {
		return 0, 0, false, nil
	}
	loc := versionField.FindStringSubmatchIndex(pkg)
	if loc == nil || loc[0] != key[0] {
		line := pkg[key[0]:]
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		return 0, 0, true, fmt.Errorf("%w: unsupported field %q", ErrInvalidVersion, strings.TrimSpace(line))
	}
	return loc[2], loc[3], true, nil
}

// ReadVersion returns the package version of doc, or DefaultVersion when the
// package part has no version field.
func ReadVersion(doc string) (string, error) {
	pkg, _ := split(doc)
	start, end, found, err := findVersion(pkg)
	switch {
	case err != nil:
		return "", err
	case !found:
		return DefaultVersion, nil
	}
	return pkg[start:end], nil
}

// WriteVersion returns doc with the package version set to version.
// A missing field is inserted on its own line after the last non-whitespace
// character of the package part. A field that cannot be rewritten in place
// is an error; the document is never given a second version key.
func WriteVersion(doc, version string) (string, error) {
	if err := Validate(version); err != nil {
		return "", err
	}
	pkg, rest := split(doc)

	start, end, found, err := findVersion(pkg)
	if err != nil {
		return "", err
	}
	if !found {
		last := strings.LastIndexFunc(pkg, func(r rune) bool { return !unicode.IsSpace(r) })
		if last < 0 {
			return "version = '" + version + "'\n" + pkg + rest, nil
		}
		_, size := utf8.DecodeRuneInString(pkg[last:])
		end := last + size
		return pkg[:end] + "\nversion = '" + version + "'" + pkg[end:] + rest, nil
	}
	return pkg[:start] + version + pkg[end:] + rest, nil
}

// Validate reports whether version is a MAJOR.MINOR.PATCH triple.
func Validate(version string) error {
	if !triple.MatchString(version) || !semver.IsValid("v"+version) {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	return nil
}

// Bump increments part of version, resetting the lower parts.
func Bump(version string, part Part) (string, error) {
	if err := Validate(version); err != nil {
		return "", err
	}
	fields := strings.Split(version, ".")
	nums := make([]uint64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidVersion, version, err)
		}
		nums[i] = n
	}

	switch part {
	case Major:
		nums[0], nums[1], nums[2] = nums[0]+1, 0, 0
	case Minor:
		nums[1], nums[2] = nums[1]+1, 0
	case Patch:
		nums[2]++
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPart, part)
	}
	return fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2]), nil
}
