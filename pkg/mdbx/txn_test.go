package mdbx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxnCommitAndAbort(t *testing.T) {
	env := newTestEnv(t)

	txn, err := env.Begin(TxnReadWrite)
	require.NoError(t, err)
	m, err := txn.OpenMap("", MapDefaults)
	require.NoError(t, err)
	require.NoError(t, m.Put(txn, []byte("kept"), []byte("v"), PutUpsert))
	require.NoError(t, txn.Commit())

	txn, err = env.Begin(TxnReadWrite)
	require.NoError(t, err)
	m, err = txn.OpenMap("", MapDefaults)
	require.NoError(t, err)
	require.NoError(t, m.Put(txn, []byte("dropped"), []byte("v"), PutUpsert))
	require.NoError(t, txn.Abort())

	v, err := env.Get([]byte("kept"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	v, err = env.Get([]byte("dropped"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTxnInertAfterEnd(t *testing.T) {
	env := newTestEnv(t)

	txn, err := env.Begin(TxnReadWrite)
	require.NoError(t, err)
	require.NoError(t, txn.Commit())

	assert.ErrorIs(t, txn.Commit(), ErrTxnDone)
	assert.ErrorIs(t, txn.Abort(), ErrTxnDone)
	assert.ErrorIs(t, txn.Break(), ErrTxnDone)
	_, err = txn.OpenMap("", MapDefaults)
	assert.ErrorIs(t, err, ErrTxnDone)
	_, err = txn.Begin(TxnReadWrite)
	assert.ErrorIs(t, err, ErrTxnDone)
	assert.Zero(t, txn.ID())
}

func TestTxnEndClosesCursors(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"k", "v"})

	for _, terminal := range []struct {
		name string
		end  func(*Txn) error
	}{
		{name: "commit", end: (*Txn).Commit},
		{name: "abort", end: (*Txn).Abort},
	} {
		t.Run(terminal.name, func(t *testing.T) {
			txn, err := env.Begin(TxnReadWrite)
			require.NoError(t, err)
			cur, err := txn.CursorNamed("")
			require.NoError(t, err)

			_, _, err = cur.First()
			require.NoError(t, err)

			require.NoError(t, terminal.end(txn))

			_, _, err = cur.First()
			assert.ErrorIs(t, err, ErrCursorClosed)
			assert.NoError(t, cur.Close())
		})
	}
}

func TestTxnSnapshotIsolation(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"k", "old"})

	reader, err := env.Begin(TxnReadOnly)
	require.NoError(t, err)
	defer reader.Abort()
	rm, err := reader.OpenMap("", MapDefaults)
	require.NoError(t, err)

	fill(t, env, [2]string{"k", "new"})

	v, err := rm.Get(reader, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), v)

	// Reset and renew moves the reader to the current snapshot.
	require.NoError(t, reader.Reset())
	require.NoError(t, reader.Renew())
	v, err = rm.Get(reader, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestTxnNested(t *testing.T) {
	env := newTestEnv(t)

	parent, err := env.Begin(TxnReadWrite)
	require.NoError(t, err)
	pm, err := parent.OpenMap("", MapDefaults)
	require.NoError(t, err)

	child, err := parent.Begin(TxnReadWrite)
	require.NoError(t, err)
	cm, err := child.OpenMap("", MapDefaults)
	require.NoError(t, err)
	require.NoError(t, cm.Put(child, []byte("committed"), []byte("v"), PutUpsert))
	require.NoError(t, child.Commit())

	child, err = parent.Begin(TxnReadWrite)
	require.NoError(t, err)
	cm, err = child.OpenMap("", MapDefaults)
	require.NoError(t, err)
	require.NoError(t, cm.Put(child, []byte("aborted"), []byte("v"), PutUpsert))
	require.NoError(t, child.Abort())

	v, err := pm.Get(parent, []byte("committed"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	v, err = pm.Get(parent, []byte("aborted"))
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, parent.Commit())

	v, err = env.Get([]byte("committed"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestTxnParentEndAbortsChildren(t *testing.T) {
	env := newTestEnv(t)

	parent, err := env.Begin(TxnReadWrite)
	require.NoError(t, err)
	child, err := parent.Begin(TxnReadWrite)
	require.NoError(t, err)

	require.NoError(t, parent.Abort())
	assert.ErrorIs(t, child.Commit(), ErrTxnDone)
}

func TestTxnTryBusy(t *testing.T) {
	env := newTestEnv(t)

	writer, err := env.Begin(TxnReadWrite)
	require.NoError(t, err)
	defer writer.Abort()

	_, err = env.Begin(TxnReadWrite | TxnTry)
	require.Error(t, err)
	assert.True(t, IsBusy(err))
}

func TestTxnBreak(t *testing.T) {
	env := newTestEnv(t)

	txn, err := env.Begin(TxnReadWrite)
	require.NoError(t, err)
	m, err := txn.OpenMap("", MapDefaults)
	require.NoError(t, err)

	require.NoError(t, txn.Break())
	err = m.Put(txn, []byte("k"), []byte("v"), PutUpsert)
	require.Error(t, err)

	// A broken transaction still has to be settled.
	require.NoError(t, txn.Abort())
}

func TestTxnIDAndInfo(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"k", "v"})

	writer, err := env.Begin(TxnReadWrite)
	require.NoError(t, err)
	wid := writer.ID()
	assert.NotZero(t, wid)
	info, err := writer.Info(false)
	require.NoError(t, err)
	assert.Equal(t, wid, info.ID)
	require.NoError(t, writer.Commit())

	reader, err := env.Begin(TxnReadOnly)
	require.NoError(t, err)
	defer reader.Abort()
	assert.Equal(t, wid, reader.ID())
}

func TestTxnCommitLatency(t *testing.T) {
	env := newTestEnv(t)

	txn, err := env.Begin(TxnReadWrite)
	require.NoError(t, err)
	m, err := txn.CreateMap("timed", MapDefaults)
	require.NoError(t, err)
	require.NoError(t, m.Put(txn, []byte("k"), []byte("v"), PutUpsert))

	_, err = txn.CommitLatency()
	require.NoError(t, err)
}

func TestTxnUserContext(t *testing.T) {
	env := newTestEnv(t)

	txn, err := env.Begin(TxnReadOnly)
	require.NoError(t, err)
	defer txn.Abort()

	txn.SetUserData(7)
	assert.Equal(t, 7, txn.UserData())

	require.NoError(t, txn.SetRawUserCtx(99))
	ctx, err := txn.RawUserCtx()
	require.NoError(t, err)
	assert.Equal(t, uintptr(99), ctx)
}
