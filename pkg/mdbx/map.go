package mdbx

import "github.com/keeldb/mdbx/internal/capi"

// Map is a handle to one named map (or to the default map, whose name is
// empty). The handle belongs to the environment, not to the transaction
// that opened it, and stays valid across transactions.
type Map struct {
	env   *Env
	api   capi.API
	dbi   capi.DBI
	name  string
	flags MapFlags
}

func (m *Map) Name() string {
	return m.name
}

func (m *Map) Flags() MapFlags {
	return m.flags
}

// DupSort reports whether the map keeps multiple sorted values per key.
func (m *Map) DupSort() bool {
	return m.flags&MapDupSort != 0
}

// Close is deliberately a no-op. The engine hands out the same underlying
// handle to every open of the same name, so closing one Map would
// invalidate every other holder of that name; handles are reclaimed when
// the environment closes instead.
func (m *Map) Close() error {
	return nil
}

// Get reads key within txn. A missing key is an empty result, not an
// error.
func (m *Map) Get(t *Txn, key []byte) ([]byte, error) {
	h, err := t.guard()
	if err != nil {
		return nil, err
	}
	v, rc := m.api.Get(h, m.dbi, key)
	if absent(rc) {
		return nil, nil
	}
	if rc != capi.Success {
		return nil, apiErr(m.api, rc)
	}
	return v, nil
}

// Put stores the key/value pair within txn.
func (m *Map) Put(t *Txn, key, value []byte, flags PutFlags) error {
	h, err := t.guard()
	if err != nil {
		return err
	}
	return apiErr(m.api, m.api.Put(h, m.dbi, key, value, uint32(flags)))
}

// Delete removes key within txn. On a dupsort map a non-nil value removes
// just that pair. Deleting an absent entry is a no-op.
func (m *Map) Delete(t *Txn, key, value []byte) error {
	h, err := t.guard()
	if err != nil {
		return err
	}
	rc := m.api.Del(h, m.dbi, key, value)
	if absent(rc) {
		return nil
	}
	return apiErr(m.api, rc)
}

// Replace stores a new value under key and returns the previous value, or
// nil when the key was absent.
func (m *Map) Replace(t *Txn, key, value []byte) ([]byte, error) {
	h, err := t.guard()
	if err != nil {
		return nil, err
	}
	old, rc := m.api.Replace(h, m.dbi, key, value, uint32(PutUpsert))
	if rc != capi.Success {
		return nil, apiErr(m.api, rc)
	}
	return old, nil
}

// Drop empties the map. With del the map itself is deleted as well.
func (m *Map) Drop(t *Txn, del bool) error {
	h, err := t.guard()
	if err != nil {
		return err
	}
	return apiErr(m.api, m.api.Drop(h, m.dbi, del))
}

// Stat returns B-tree statistics for the map as seen by txn.
func (m *Map) Stat(t *Txn) (Stat, error) {
	h, err := t.guard()
	if err != nil {
		return Stat{}, err
	}
	st, rc := m.api.DBIStat(h, m.dbi)
	if rc != capi.Success {
		return Stat{}, apiErr(m.api, rc)
	}
	return statFrom(st), nil
}

// Sequence reads the map's persistent sequence and advances it by
// increment. The value before the advance is returned. An increment that
// would wrap the 64-bit counter leaves it untouched and reports
// ErrSequenceOverflow.
func (m *Map) Sequence(t *Txn, increment uint64) (uint64, error) {
	h, err := t.guard()
	if err != nil {
		return 0, err
	}
	prev, rc := m.api.DBISequence(h, m.dbi, increment)
	if rc == capi.ResultTrue {
		return prev, ErrSequenceOverflow
	}
	if rc != capi.Success {
		return 0, apiErr(m.api, rc)
	}
	return prev, nil
}
