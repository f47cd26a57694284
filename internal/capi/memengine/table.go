package memengine

import (
	"bytes"
	"sort"

	"github.com/keeldb/mdbx/internal/capi"
)

// state is one snapshot of an environment's contents. Read transactions
// share the committed state; write transactions clone it at begin and swap
// their clone in at commit. A state reachable from a read transaction is
// never mutated.
type state struct {
	tables map[capi.DBI]*table
	seqs   map[capi.DBI]uint64
}

func newState() *state {
	return &state{
		tables: make(map[capi.DBI]*table),
		seqs:   make(map[capi.DBI]uint64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for dbi, t := range s.tables {
		c.tables[dbi] = t.clone()
	}
	for dbi, seq := range s.seqs {
		c.seqs[dbi] = seq
	}
	return c
}

// table returns the table for dbi, creating an empty one on first touch.
func (s *state) table(dbi capi.DBI, dup bool) *table {
	t, ok := s.tables[dbi]
	if !ok {
		t = &table{dup: dup}
		s.tables[dbi] = t
	}
	return t
}

// table is one sorted map. keys is kept in ascending bytes order; vals[i]
// holds the values of keys[i], sorted when the table is dupsort and always
// of length one otherwise. Byte slices inside a table are never mutated, so
// clones may share them.
type table struct {
	dup  bool
	keys [][]byte
	vals [][][]byte
}

func (t *table) clone() *table {
	c := &table{dup: t.dup}
	c.keys = append([][]byte(nil), t.keys...)
	c.vals = make([][][]byte, len(t.vals))
	for i, dups := range t.vals {
		c.vals[i] = append([][]byte(nil), dups...)
	}
	return c
}

func (t *table) pairCount() int {
	n := 0
	for _, dups := range t.vals {
		n += len(dups)
	}
	return n
}

// search returns the insertion index for key and whether an exact match
// lives there.
func (t *table) search(key []byte) (int, bool) {
	i := sort.Search(len(t.keys), func(i int) bool {
		return bytes.Compare(t.keys[i], key) >= 0
	})
	return i, i < len(t.keys) && bytes.Equal(t.keys[i], key)
}

// searchDup returns the insertion index for val among the duplicates of
// keys[ki] and whether an exact match lives there.
func (t *table) searchDup(ki int, val []byte) (int, bool) {
	dups := t.vals[ki]
	i := sort.Search(len(dups), func(i int) bool {
		return bytes.Compare(dups[i], val) >= 0
	})
	return i, i < len(dups) && bytes.Equal(dups[i], val)
}

func (t *table) get(key []byte) ([]byte, bool) {
	i, ok := t.search(key)
	if !ok {
		return nil, false
	}
	return t.vals[i][0], true
}

// put stores the pair under the engine's put-flag semantics and reports the
// result code plus the final position of the pair.
func (t *table) put(key, val []byte, flags uint32) (ki, vi int, rc int) {
	key = clip(key)
	val = clip(val)
	i, found := t.search(key)
	if !found {
		t.keys = append(t.keys, nil)
		copy(t.keys[i+1:], t.keys[i:])
		t.keys[i] = key
		t.vals = append(t.vals, nil)
		copy(t.vals[i+1:], t.vals[i:])
		t.vals[i] = [][]byte{val}
		return i, 0, capi.Success
	}
	if flags&capi.PutNoOverwrite != 0 && !t.dup {
		return i, 0, capi.KeyExist
	}
	if !t.dup || flags&capi.PutCurrent != 0 {
		t.vals[i] = [][]byte{val}
		return i, 0, capi.Success
	}
	j, dupFound := t.searchDup(i, val)
	if dupFound {
		if flags&(capi.PutNoDupData|capi.PutNoOverwrite) != 0 {
			return i, j, capi.KeyExist
		}
		return i, j, capi.Success
	}
	dups := t.vals[i]
	dups = append(dups, nil)
	copy(dups[j+1:], dups[j:])
	dups[j] = val
	t.vals[i] = dups
	return i, j, capi.Success
}

// del removes a pair. A nil val removes the key with all its duplicates.
func (t *table) del(key, val []byte) int {
	i, found := t.search(key)
	if !found {
		return capi.NotFound
	}
	if val == nil || !t.dup {
		t.removeKey(i)
		return capi.Success
	}
	j, dupFound := t.searchDup(i, val)
	if !dupFound {
		return capi.NotFound
	}
	t.removeDup(i, j)
	return capi.Success
}

func (t *table) removeKey(i int) {
	t.keys = append(t.keys[:i], t.keys[i+1:]...)
	t.vals = append(t.vals[:i], t.vals[i+1:]...)
}

func (t *table) removeDup(i, j int) {
	dups := t.vals[i]
	if len(dups) == 1 {
		t.removeKey(i)
		return
	}
	t.vals[i] = append(dups[:j], dups[j+1:]...)
}

// clip copies b so callers may reuse their buffers; nil stays nil-length
// but becomes a non-nil empty slice to keep stored values comparable.
func clip(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
