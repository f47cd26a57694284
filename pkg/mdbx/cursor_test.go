package mdbx

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, it *Iterator) [][2]string {
	t.Helper()
	var out [][2]string
	for it.Next() {
		out = append(out, [2]string{string(it.Key()), string(it.Value())})
	}
	require.NoError(t, it.Err())
	return out
}

// The canonical walk: two committed pairs, first, last, then a full
// iteration in key order.
func TestCursorFirstLastIter(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"key1", "10"}, [2]string{"key2", "9"})

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("")
		require.NoError(t, err)

		k, v, err := cur.First()
		require.NoError(t, err)
		assert.Equal(t, []byte("key1"), k)
		assert.Equal(t, []byte("10"), v)

		k, v, err = cur.Last()
		require.NoError(t, err)
		assert.Equal(t, []byte("key2"), k)
		assert.Equal(t, []byte("9"), v)

		it, err := cur.Iter(nil, false, false)
		require.NoError(t, err)
		want := [][2]string{{"key1", "10"}, {"key2", "9"}}
		if diff := cmp.Diff(want, collect(t, it)); diff != "" {
			t.Errorf("iteration mismatch (-want +got):\n%s", diff)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestIterAscendingOrder(t *testing.T) {
	env := newTestEnv(t)
	// Inserted out of order on purpose.
	fill(t, env,
		[2]string{"pear", "4"},
		[2]string{"apple", "1"},
		[2]string{"plum", "5"},
		[2]string{"fig", "2"},
		[2]string{"lime", "3"},
	)

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("")
		require.NoError(t, err)
		it, err := cur.Iter(nil, false, false)
		require.NoError(t, err)

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		require.NoError(t, it.Err())
		assert.Equal(t, []string{"apple", "fig", "lime", "pear", "plum"}, keys)
		return nil
	})
	require.NoError(t, err)
}

func TestIterStartKey(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"}, [2]string{"c", "2"}, [2]string{"e", "3"})

	tests := []struct {
		start string
		want  []string
	}{
		{start: "c", want: []string{"c", "e"}}, // exact hit
		{start: "b", want: []string{"c", "e"}}, // between keys
		{start: "a", want: []string{"a", "c", "e"}},
		{start: "f", want: nil}, // past the last key
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("start_%s", tc.start), func(t *testing.T) {
			err := env.View(func(txn *Txn) error {
				cur, err := txn.CursorNamed("")
				require.NoError(t, err)
				it, err := cur.Iter([]byte(tc.start), false, false)
				require.NoError(t, err)

				var keys []string
				for it.Next() {
					keys = append(keys, string(it.Key()))
				}
				require.NoError(t, it.Err())
				assert.Equal(t, tc.want, keys)
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestIterFromNext(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"}, [2]string{"b", "2"}, [2]string{"c", "3"})

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("")
		require.NoError(t, err)

		// Position externally, then resume after the current pair.
		_, _, err = cur.Get([]byte("a"), OpSetRange)
		require.NoError(t, err)

		it, err := cur.Iter(nil, true, false)
		require.NoError(t, err)
		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		require.NoError(t, it.Err())
		assert.Equal(t, []string{"b", "c"}, keys)
		return nil
	})
	require.NoError(t, err)
}

// Copy-cursor iterations run on a duplicate, so the walk must not move the
// cursor the caller positioned.
func TestIterCopyCursor(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"}, [2]string{"b", "2"}, [2]string{"c", "3"})

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("")
		require.NoError(t, err)
		_, _, err = cur.Get([]byte("b"), OpSet)
		require.NoError(t, err)

		it, err := cur.Iter(nil, false, true)
		require.NoError(t, err)
		want := [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}}
		assert.Equal(t, want, collect(t, it))
		require.NoError(t, it.Close())

		// The original cursor is still where we left it.
		k, v, err := cur.Get(nil, OpGetCurrent)
		require.NoError(t, err)
		assert.Equal(t, []byte("b"), k)
		assert.Equal(t, []byte("2"), v)
		return nil
	})
	require.NoError(t, err)
}

func TestIterDupRowsCopyCursor(t *testing.T) {
	env := newTestEnv(t)
	fillDup(t, env)

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("dup")
		require.NoError(t, err)
		_, _, err = cur.Get([]byte("k1"), OpSet)
		require.NoError(t, err)

		rows, err := cur.IterDupRows([]byte("k2"), false, true)
		require.NoError(t, err)
		var order []string
		for rows.Next() {
			order = append(order, string(rows.Key()))
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"k2", "k3"}, order)
		require.NoError(t, rows.Close())

		k, _, err := cur.Get(nil, OpGetCurrent)
		require.NoError(t, err)
		assert.Equal(t, []byte("k1"), k)
		return nil
	})
	require.NoError(t, err)
}

func TestIterArgsExclusive(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"})

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("")
		require.NoError(t, err)
		_, err = cur.Iter([]byte("a"), true, false)
		assert.ErrorIs(t, err, ErrIterArgs)
		_, err = cur.IterDupRows([]byte("a"), true, false)
		assert.ErrorIs(t, err, ErrIterArgs)
		return nil
	})
	require.NoError(t, err)
}

func fillDup(t *testing.T, env *Env) {
	t.Helper()
	err := env.Update(func(txn *Txn) error {
		m, err := txn.CreateMap("dup", MapDupSort)
		if err != nil {
			return err
		}
		pairs := [][2]string{
			{"k1", "v1"}, {"k1", "v2"}, {"k1", "v3"},
			{"k2", "w1"},
			{"k3", "x1"}, {"k3", "x2"},
		}
		for _, p := range pairs {
			if err := m.Put(txn, []byte(p[0]), []byte(p[1]), PutUpsert); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestIterDupRows(t *testing.T) {
	env := newTestEnv(t)
	fillDup(t, env)

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("dup")
		require.NoError(t, err)

		rows, err := cur.IterDupRows(nil, false, false)
		require.NoError(t, err)

		got := map[string][]string{}
		var order []string
		for rows.Next() {
			row, err := rows.Row()
			require.NoError(t, err)
			key := string(rows.Key())
			order = append(order, key)
			for row.Next() {
				assert.Equal(t, key, string(row.Key()))
				got[key] = append(got[key], string(row.Value()))
			}
			require.NoError(t, row.Err())
			require.NoError(t, row.Close())
		}
		require.NoError(t, rows.Err())

		assert.Equal(t, []string{"k1", "k2", "k3"}, order)
		want := map[string][]string{
			"k1": {"v1", "v2", "v3"},
			"k2": {"w1"},
			"k3": {"x1", "x2"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestIterDupFlattened(t *testing.T) {
	env := newTestEnv(t)
	fillDup(t, env)

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("dup")
		require.NoError(t, err)
		it, err := cur.IterDup(nil, false, false)
		require.NoError(t, err)

		want := [][2]string{
			{"k1", "v1"}, {"k1", "v2"}, {"k1", "v3"},
			{"k2", "w1"},
			{"k3", "x1"}, {"k3", "x2"},
		}
		assert.Equal(t, want, collect(t, it))
		return nil
	})
	require.NoError(t, err)
}

func TestIterDupRowsStartKey(t *testing.T) {
	env := newTestEnv(t)
	fillDup(t, env)

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("dup")
		require.NoError(t, err)
		rows, err := cur.IterDupRows([]byte("k2"), false, false)
		require.NoError(t, err)

		var order []string
		for rows.Next() {
			order = append(order, string(rows.Key()))
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"k2", "k3"}, order)
		return nil
	})
	require.NoError(t, err)
}

// Advancing the outer row iterator must not disturb a row handed out
// earlier, because rows run on duplicated cursors.
func TestDupCursorIndependence(t *testing.T) {
	env := newTestEnv(t)
	fillDup(t, env)

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("dup")
		require.NoError(t, err)

		_, _, err = cur.First()
		require.NoError(t, err)
		dup, err := cur.Dup()
		require.NoError(t, err)

		// Move the original far away.
		_, _, err = cur.Last()
		require.NoError(t, err)

		k, v, err := dup.Get(nil, OpGetCurrent)
		require.NoError(t, err)
		assert.Equal(t, []byte("k1"), k)
		assert.Equal(t, []byte("v1"), v)
		return nil
	})
	require.NoError(t, err)
}

func TestCursorBoundaryChecks(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"}, [2]string{"b", "2"})

	err := env.View(func(txn *Txn) error {
		cur, err := txn.CursorNamed("")
		require.NoError(t, err)

		// Unpositioned cursor is at EOF.
		eof, err := cur.EOF()
		require.NoError(t, err)
		assert.True(t, eof)

		_, _, err = cur.First()
		require.NoError(t, err)
		onFirst, err := cur.OnFirst()
		require.NoError(t, err)
		assert.True(t, onFirst)
		onLast, err := cur.OnLast()
		require.NoError(t, err)
		assert.False(t, onLast)

		_, _, err = cur.Last()
		require.NoError(t, err)
		onLast, err = cur.OnLast()
		require.NoError(t, err)
		assert.True(t, onLast)

		// Walk off the end.
		k, v, err := cur.Next()
		require.NoError(t, err)
		assert.Nil(t, k)
		assert.Nil(t, v)
		eof, err = cur.EOF()
		require.NoError(t, err)
		assert.True(t, eof)
		return nil
	})
	require.NoError(t, err)
}

func TestCursorPutDelete(t *testing.T) {
	env := newTestEnv(t)

	err := env.Update(func(txn *Txn) error {
		cur, err := txn.CursorNamed("")
		require.NoError(t, err)

		for _, p := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
			require.NoError(t, cur.Put([]byte(p[0]), []byte(p[1]), PutUpsert))
		}

		// Delete the middle pair; the next step lands on its successor.
		_, _, err = cur.Get([]byte("b"), OpSet)
		require.NoError(t, err)
		require.NoError(t, cur.Delete(PutUpsert))

		k, _, err := cur.Next()
		require.NoError(t, err)
		assert.Equal(t, []byte("c"), k)
		return nil
	})
	require.NoError(t, err)

	v, err := env.Get([]byte("b"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCursorCloseIdempotent(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"})

	txn, err := env.Begin(TxnReadOnly)
	require.NoError(t, err)
	defer txn.Abort()

	cur, err := txn.CursorNamed("")
	require.NoError(t, err)
	require.NoError(t, cur.Close())
	require.NoError(t, cur.Close())

	_, _, err = cur.First()
	assert.ErrorIs(t, err, ErrCursorClosed)
}

func TestCursorRenew(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"})

	txn1, err := env.Begin(TxnReadOnly)
	require.NoError(t, err)
	cur, err := txn1.CursorNamed("")
	require.NoError(t, err)

	txn2, err := env.Begin(TxnReadOnly)
	require.NoError(t, err)
	defer txn2.Abort()

	require.NoError(t, cur.Renew(txn2))

	// Ownership moved: ending the old transaction leaves the cursor alive.
	require.NoError(t, txn1.Abort())
	k, _, err := cur.First()
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), k)

	require.NoError(t, txn2.Abort())
	_, _, err = cur.First()
	assert.ErrorIs(t, err, ErrCursorClosed)
}

// A cursor that was never bound has no transaction to move, so Renew must
// refuse instead of crashing.
func TestCursorRenewUnbound(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"})

	cur := env.NewCursor()
	defer cur.Close()

	txn, err := env.Begin(TxnReadOnly)
	require.NoError(t, err)
	defer txn.Abort()

	err = cur.Renew(txn)
	require.Error(t, err)
}

func TestCursorBindUnbound(t *testing.T) {
	env := newTestEnv(t)
	fill(t, env, [2]string{"a", "1"})

	cur := env.NewCursor()
	defer cur.Close()

	txn, err := env.Begin(TxnReadOnly)
	require.NoError(t, err)
	defer txn.Abort()
	m, err := txn.OpenMap("", MapDefaults)
	require.NoError(t, err)

	require.NoError(t, cur.Bind(txn, m))
	k, v, err := cur.First()
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), k)
	assert.Equal(t, []byte("1"), v)
}
