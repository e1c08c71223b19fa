// Package digest computes content hashes of runtime artifacts (genesis code,
// genesis state) and renders them in the encodings tooling expects.
package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/ipfs/go-cid"
	"github.com/minio/sha256-simd"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/blake2b"
)

type Algorithm string

const (
	Blake2b256 Algorithm = "blake2b-256"
	SHA256     Algorithm = "sha2-256"
)

type Format string

const (
	FormatHex       Format = "hex"
	FormatMultihash Format = "multihash"
	FormatCID       Format = "cid"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
	ErrUnknownFormat    = errors.New("unknown output format")
)

// multihash codes of the supported algorithms.
var codes = map[Algorithm]uint64{
	Blake2b256: multihash.BLAKE2B_MIN + 31,
	SHA256:     multihash.SHA2_256,
}

// Sum hashes data with the given algorithm.
func Sum(algo Algorithm, data []byte) ([]byte, error) {
	switch algo {
	case Blake2b256:
		sum := blake2b.Sum256(data)
		return sum[:], nil
	case SHA256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}
}

// File reads the file at path and hashes its contents.
func File(path string, algo Algorithm) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Sum(algo, data)
}

// Encode renders a digest produced by algo.
// FormatHex yields 0x-prefixed lower-case hex.
func Encode(sum []byte, algo Algorithm, format Format) (string, error) {
	switch format {
	case FormatHex:
		return "0x" + hex.EncodeToString(sum), nil
	case FormatMultihash, FormatCID:
		code, ok := codes[algo]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
		}
		mh, err := multihash.Encode(sum, code)
		if err != nil {
			return "", fmt.Errorf("encoding multihash: %w", err)
		}
		if format == FormatMultihash {
			return hex.EncodeToString(mh), nil
		}
		return cid.NewCidV1(cid.Raw, mh).String(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
