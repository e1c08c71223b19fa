package journal

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

func TestReopenOnOtherChainDropsRecords(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	j, err := Open(ctx, dir, testGenesis)
	require.NoError(t, err)
	require.NoError(t, j.MarkRegistered(ctx, 2000, []byte{0x01}))
	require.NoError(t, j.MarkLeased(ctx, 2000, 0, []byte{0x02}))
	require.NoError(t, j.Close())

	reset := bytes.Repeat([]byte{0x42}, 32)
	j, err = Open(ctx, dir, reset)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })
	require.Equal(t, reset, j.Genesis())

	step, err := j.Step(ctx, 2000)
	require.NoError(t, err)
	require.Equal(t, StepNone, step)
	leased, err := j.Leased(ctx, 2000, 0)
	require.NoError(t, err)
	require.False(t, leased)
	records, err := j.Paras(ctx)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestReopenOnSameChainKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	j, err := Open(ctx, dir, testGenesis)
	require.NoError(t, err)
	require.NoError(t, j.MarkRegistered(ctx, 2000, nil))
	require.NoError(t, j.Close())

	j, err = Open(ctx, dir, testGenesis)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })
	step, err := j.Step(ctx, 2000)
	require.NoError(t, err)
	require.Equal(t, StepRegistered, step)
}

func TestUnboundJournalIsDropped(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// a journal written without a genesis record belongs to an unknown chain
	db, err := leveldb.OpenFile(dir, nil)
	require.NoError(t, err)
	data, err := serialize(Record{ParaID: 2000, Step: StepRegistered})
	require.NoError(t, err)
	require.NoError(t, db.Put(paraKey(2000), data, nil))
	require.NoError(t, db.Close())

	j, err := Open(ctx, dir, testGenesis)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })
	step, err := j.Step(ctx, 2000)
	require.NoError(t, err)
	require.Equal(t, StepNone, step)
}

func TestOpenRequiresGenesis(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
}
