package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/mangata-finance/parachain-ops/manifest"
)

type globalOptions struct {
	File  string `short:"f" long:"file"  description:"Cargo manifest to read or update" default:"Cargo.toml"`
	Check bool   `long:"check"           description:"Decode the updated manifest as TOML before writing it back"`
}

var global globalOptions

type readCommand struct{}

func (c *readCommand) Execute([]string) error {
	doc, err := os.ReadFile(global.File)
	if err != nil {
		return err
	}
	version, err := manifest.ReadVersion(string(doc))
	if err != nil {
		return fmt.Errorf("%s: %w", global.File, err)
	}
	fmt.Println(version)
	return nil
}

type writeCommand struct {
	Args struct {
		Version string `positional-arg-name:"version" description:"New MAJOR.MINOR.PATCH version"`
	} `positional-args:"yes" required:"yes"`
}

func (c *writeCommand) Execute([]string) error {
	return update(func(string) (string, error) { return c.Args.Version, nil })
}

type bumpCommand struct {
	Args struct {
		Part string `positional-arg-name:"part" description:"Version part to increment" choice:"major" choice:"minor" choice:"patch"`
	} `positional-args:"yes" required:"yes"`
}

func (c *bumpCommand) Execute([]string) error {
	return update(func(current string) (string, error) {
		return manifest.Bump(current, manifest.Part(c.Args.Part))
	})
}

// update rewrites the manifest with the version next derives from the
// current one and prints the new version.
func update(next func(current string) (string, error)) error {
	info, err := os.Stat(global.File)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(global.File)
	if err != nil {
		return err
	}
	doc := string(data)

	current, err := manifest.ReadVersion(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", global.File, err)
	}
	version, err := next(current)
	if err != nil {
		return err
	}
	updated, err := manifest.WriteVersion(doc, version)
	if err != nil {
		return err
	}
	if global.Check {
		if err := manifest.Check(updated, version); err != nil {
			return fmt.Errorf("%s: %w", global.File, err)
		}
	}
	if err := os.WriteFile(global.File, []byte(updated), info.Mode().Perm()); err != nil {
		return err
	}
	fmt.Println(version)
	return nil
}

func updaterMain(args []string) error {
	global = globalOptions{}
	parser := flags.NewParser(&global, flags.Default)
	if _, err := parser.AddCommand("read", "Print the package version", "", &readCommand{}); err != nil {
		return err
	}
	if _, err := parser.AddCommand("write", "Set the package version", "", &writeCommand{}); err != nil {
		return err
	}
	if _, err := parser.AddCommand("bump", "Increment the package version", "", &bumpCommand{}); err != nil {
		return err
	}
	_, err := parser.ParseArgs(args)
	return err
}

func main() {
	// the parser already printed the error
	if err := updaterMain(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
