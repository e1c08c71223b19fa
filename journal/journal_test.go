package journal

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testGenesis = bytes.Repeat([]byte{0x91}, 32)

func TestStepsAdvanceOnly(t *testing.T) {
	j, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })
	ctx := context.Background()

	step, err := j.Step(ctx, 2000)
	require.NoError(t, err)
	require.Equal(t, StepNone, step)

	require.NoError(t, j.MarkReserved(ctx, 2000, []byte{0x01}))
	step, err = j.Step(ctx, 2000)
	require.NoError(t, err)
	require.Equal(t, StepReserved, step)

	require.NoError(t, j.MarkRegistered(ctx, 2000, []byte{0x02}))
	// reserving again must not move the para back
	require.NoError(t, j.MarkReserved(ctx, 2000, []byte{0x03}))
	step, err = j.Step(ctx, 2000)
	require.NoError(t, err)
	require.Equal(t, StepRegistered, step)
}

func TestLeases(t *testing.T) {
	j, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })
	ctx := context.Background()

	leased, err := j.Leased(ctx, 2001, 3)
	require.NoError(t, err)
	require.False(t, leased)

	require.NoError(t, j.MarkLeased(ctx, 2001, 3, nil))
	leased, err = j.Leased(ctx, 2001, 3)
	require.NoError(t, err)
	require.True(t, leased)

	leased, err = j.Leased(ctx, 2001, 4)
	require.NoError(t, err)
	require.False(t, leased)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	j, err := Open(ctx, dir, testGenesis)
	require.NoError(t, err)
	j.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	require.NoError(t, j.MarkRegistered(ctx, 2110, []byte{0xaa, 0xbb}))
	require.NoError(t, j.MarkReserved(ctx, 2000, nil))
	require.NoError(t, j.Close())

	j, err = Open(ctx, dir, testGenesis)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })

	records, err := j.Paras(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, uint32(2000), records[0].ParaID)
	require.Equal(t, StepReserved, records[0].Step)
	require.Equal(t, uint32(2110), records[1].ParaID)
	require.Equal(t, StepRegistered, records[1].Step)
	require.Equal(t, []byte{0xaa, 0xbb}, records[1].TxHash)
	require.Equal(t, time.Unix(1_700_000_000, 0), records[1].Time())
}
