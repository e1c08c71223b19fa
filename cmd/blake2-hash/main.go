package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/mangata-finance/parachain-ops/digest"
)

//nolint:lll
type options struct {
	Input  string `short:"i" long:"input"  description:"File to hash"  required:"true"`
	Algo   string `long:"algo"             description:"Hash algorithm" choice:"blake2b-256" choice:"sha2-256"       default:"blake2b-256"`
	Format string `long:"format"           description:"Output format"  choice:"hex" choice:"multihash" choice:"cid" default:"hex"`
}

func hashMain(args []string, out io.Writer) error {
	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).ParseArgs(args); err != nil {
		return err
	}

	algo := digest.Algorithm(opts.Algo)
	sum, err := digest.File(opts.Input, algo)
	if err != nil {
		return err
	}
	encoded, err := digest.Encode(sum, algo, digest.Format(opts.Format))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, encoded)
	return err
}

func main() {
	if err := hashMain(os.Args[1:], os.Stdout); err != nil {
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrHelp {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
