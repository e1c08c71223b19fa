package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashEmptyFile(t *testing.T) {
	input := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(input, nil, 0o600))

	var out bytes.Buffer
	require.NoError(t, hashMain([]string{"--input", input}, &out))
	require.Equal(t, "0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8\n", out.String())
}

func TestHashMissingInput(t *testing.T) {
	var out bytes.Buffer
	require.ErrorIs(t, hashMain([]string{"-i", filepath.Join(t.TempDir(), "missing")}, &out), os.ErrNotExist)
	require.Error(t, hashMain(nil, &out))
}
