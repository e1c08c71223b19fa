package manifest

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

var ErrVersionMismatch = errors.New("manifest version mismatch")

type cargoManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

// Check decodes doc as TOML and verifies that package.version equals want.
// It guards the string edits against producing a broken manifest.
func Check(doc, want string) error {
	var m cargoManifest
	if _, err := toml.Decode(doc, &m); err != nil {
		return fmt.Errorf("decoding manifest: %w", err)
	}
	if m.Package.Version != want {
		return fmt.Errorf("%w: have %q, want %q", ErrVersionMismatch, m.Package.Version, want)
	}
	return nil
}
