package mdbx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOpenAsymmetry(t *testing.T) {
	env := newTestEnv(t)

	// A read-only transaction cannot create, so a missing map is an error.
	err := env.View(func(txn *Txn) error {
		_, err := txn.OpenMap("missing", MapDefaults)
		return err
	})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	// A write transaction creates on demand.
	err = env.Update(func(txn *Txn) error {
		m, err := txn.CreateMap("missing", MapDefaults)
		if err != nil {
			return err
		}
		return m.Put(txn, []byte("k"), []byte("v"), PutUpsert)
	})
	require.NoError(t, err)

	err = env.View(func(txn *Txn) error {
		m, err := txn.OpenMap("missing", MapDefaults)
		if err != nil {
			return err
		}
		v, err := m.Get(txn, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
		return nil
	})
	require.NoError(t, err)
}

func TestMapIncompatibleFlags(t *testing.T) {
	env := newTestEnv(t)

	err := env.Update(func(txn *Txn) error {
		_, err := txn.CreateMap("plain", MapDefaults)
		return err
	})
	require.NoError(t, err)

	err = env.View(func(txn *Txn) error {
		_, err := txn.OpenMap("plain", MapDupSort)
		return err
	})
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

// Close on a map handle is deliberately a no-op: the engine aliases the
// same handle across opens of one name, so a real close here would
// invalidate every other holder.
// A dupsort map opened later with default flags keeps its dupsort behavior;
// only explicitly conflicting flags are refused.
func TestMapOpenDefaultsOnDupSort(t *testing.T) {
	env := newTestEnv(t)

	err := env.Update(func(txn *Txn) error {
		m, err := txn.CreateMap("dup", MapDupSort)
		if err != nil {
			return err
		}
		for _, v := range []string{"v1", "v2"} {
			if err := m.Put(txn, []byte("k"), []byte(v), PutUpsert); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = env.View(func(txn *Txn) error {
		m, err := txn.OpenMap("dup", MapDefaults)
		require.NoError(t, err)
		cur, err := txn.Cursor(m)
		require.NoError(t, err)
		_, _, err = cur.First()
		require.NoError(t, err)
		n, err := cur.Count()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), n)
		return nil
	})
	require.NoError(t, err)
}

func TestMapCloseNoop(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"k", "v"})

	err := env.View(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
		}
		require.NoError(t, m.Close())

		v, err := m.Get(txn, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
		return nil
	})
	require.NoError(t, err)
}

func TestMapReplace(t *testing.T) {
	env := newTestEnv(t)

	err := env.Update(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
		}
		old, err := m.Replace(txn, []byte("k"), []byte("one"))
		require.NoError(t, err)
		assert.Nil(t, old)

		old, err = m.Replace(txn, []byte("k"), []byte("two"))
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), old)
		return nil
	})
	require.NoError(t, err)
}

func TestMapPutNoOverwrite(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"k", "v"})

	err := env.Update(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
		}
		return m.Put(txn, []byte("k"), []byte("other"), PutNoOverwrite)
	})
	require.Error(t, err)
	assert.True(t, IsKeyExist(err))
}

func TestMapDrop(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"}, [2]string{"b", "2"})

	err := env.Update(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
		}
		return m.Drop(txn, false)
	})
	require.NoError(t, err)

	n, err := env.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMapDupSortDelete(t *testing.T) {
	env := newTestEnv(t)

	err := env.Update(func(txn *Txn) error {
		m, err := txn.CreateMap("dup", MapDupSort)
		if err != nil {
			return err
		}
		for _, v := range []string{"v1", "v2", "v3"} {
			if err := m.Put(txn, []byte("k"), []byte(v), PutUpsert); err != nil {
				return err
			}
		}
		// Remove one specific pair, then verify the rest survives.
		return m.Delete(txn, []byte("k"), []byte("v2"))
	})
	require.NoError(t, err)

	err = env.View(func(txn *Txn) error {
		m, err := txn.OpenMap("dup", MapDefaults)
		if err != nil {
			return err
		}
		cur, err := txn.Cursor(m)
		if err != nil {
			return err
		}
		_, _, err = cur.First()
		require.NoError(t, err)
		n, err := cur.Count()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), n)

		v, err := cur.FirstDup()
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), v)
		v, err = cur.LastDup()
		require.NoError(t, err)
		assert.Equal(t, []byte("v3"), v)
		return nil
	})
	require.NoError(t, err)
}

func TestMapSequence(t *testing.T) {
	env := newTestEnv(t)

	// Increments inside one transaction return strictly increasing
	// previous values, and a zero increment reads without mutating.
	err := env.Update(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
		}
		prev, err := m.Sequence(txn, 0)
		require.NoError(t, err)
		assert.Zero(t, prev)
		prev, err = m.Sequence(txn, 0)
		require.NoError(t, err)
		assert.Zero(t, prev)

		prev, err = m.Sequence(txn, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), prev)
		prev, err = m.Sequence(txn, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), prev)
		return nil
	})
	require.NoError(t, err)

	// The committed counter reflects the cumulative increments.
	err = env.View(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
		}
		now, err := m.Sequence(txn, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), now)
		return nil
	})
	require.NoError(t, err)
}

func TestMapSequenceAbortRollsBack(t *testing.T) {
	env := newTestEnv(t)

	txn, err := env.Begin(TxnReadWrite)
	require.NoError(t, err)
	m, err := txn.OpenMap("", MapDefaults)
	require.NoError(t, err)
	_, err = m.Sequence(txn, 10)
	require.NoError(t, err)
	require.NoError(t, txn.Abort())

	err = env.View(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
		}
		now, err := m.Sequence(txn, 0)
		require.NoError(t, err)
		assert.Zero(t, now)
		return nil
	})
	require.NoError(t, err)
}

func TestMapSequenceOverflow(t *testing.T) {
	env := newTestEnv(t)

	err := env.Update(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
		}
		_, err = m.Sequence(txn, math.MaxUint64)
		require.NoError(t, err)

		_, err = m.Sequence(txn, 1)
		assert.ErrorIs(t, err, ErrSequenceOverflow)

		// The refused increment left the counter untouched.
		now, err := m.Sequence(txn, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(math.MaxUint64), now)
		return nil
	})
	require.NoError(t, err)
}

func TestMapSequenceReadOnlyIncrement(t *testing.T) {
	env := newTestEnv(t)

	err := env.View(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
		}
		_, err = m.Sequence(txn, 1)
		return err
	})
	require.Error(t, err)
}
