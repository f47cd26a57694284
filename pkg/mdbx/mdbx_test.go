package mdbx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keeldb/mdbx/internal/capi/memengine"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	env, err := Open(t.TempDir(), withEngine(memengine.New()), WithMaxMaps(8))
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

// fill commits the given pairs into the default map in one transaction.
func fill(t *testing.T, env *Env, pairs ...[2]string) {
	t.Helper()
	err := env.Update(func(txn *Txn) error {
		m, err := txn.OpenMap("", MapDefaults)
		if err != nil {
			return err
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
