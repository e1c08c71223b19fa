package chain

import (
	"fmt"
	"os"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

// ReadGenesis loads the genesis head and validation code of a parachain.
// Collators export both as 0x-prefixed hex text; files without the prefix
// are taken as raw bytes.
func ReadGenesis(stateFile, wasmFile string) (Genesis, error) {
	head, err := readBlob(stateFile)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis state: %w", err)
	}
	code, err := readBlob(wasmFile)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis wasm: %w", err)
	}
	return Genesis{Head: head, Code: code}, nil
}

func readBlob(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, "0x") {
		return data, nil
	}
	decoded, err := codec.HexDecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return decoded, nil
}
