package memengine

import (
	"github.com/keeldb/mdbx/internal/capi"
	"github.com/keeldb/mdbx/internal/safemath"
)

func (e *Engine) liveTxn(h capi.TxnHandle, write bool) (*txn, int) {
	t, rc := e.txn(h)
	if rc != capi.Success {
		return nil, rc
	}
	if rc, ok := t.usable(); !ok {
		return nil, rc
	}
	if write && t.readOnly() {
		return nil, capi.EAccess
	}
	return t, capi.Success
}

func (t *txn) dbiDef(dbi capi.DBI) (*dbiDef, int) {
	if dbi == 0 || int(dbi) > len(t.env.dbis) {
		return nil, capi.BadDBI
	}
	return &t.env.dbis[dbi-1], capi.Success
}

func (t *txn) tableFor(dbi capi.DBI) (*table, int) {
	def, rc := t.dbiDef(dbi)
	if rc != capi.Success {
		return nil, rc
	}
	return t.state.table(dbi, def.flags&capi.DBDupSort != 0), capi.Success
}

func (e *Engine) DBIOpen(th capi.TxnHandle, name []byte, flags uint32) (capi.DBI, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, false)
	if rc != capi.Success {
		return 0, rc
	}
	v := t.env

	// Zero persistent flags accept whatever the map was created with; only a
	// non-zero mismatch is a conflict.
	persistent := flags &^ (capi.DBCreate | capi.DBAccede)

	if len(name) == 0 {
		if persistent != 0 && persistent != v.dbis[0].flags {
			if tbl := t.state.tables[1]; tbl != nil && len(tbl.keys) > 0 {
				return 0, capi.Incompatible
			}
			v.dbis[0].flags = persistent
		}
		return 1, capi.Success
	}

	for i := range v.dbis {
		if v.dbis[i].name == string(name) {
			if persistent != 0 && persistent != v.dbis[i].flags && flags&capi.DBAccede == 0 {
				return 0, capi.Incompatible
			}
			return capi.DBI(i + 1), capi.Success
		}
	}
	if flags&capi.DBCreate == 0 {
		return 0, capi.NotFound
	}
	if t.readOnly() {
		return 0, capi.EAccess
	}
	if uint64(len(v.dbis)-1) >= v.maxDBs {
		return 0, capi.DBsFull
	}
	v.dbis = append(v.dbis, dbiDef{name: string(name), flags: persistent})
	// The engine keeps a record for every named map in the unnamed map.
	root := t.state.table(1, v.dbis[0].flags&capi.DBDupSort != 0)
	root.put(name, nil, 0)
	return capi.DBI(len(v.dbis)), capi.Success
}

func (e *Engine) DBIStat(th capi.TxnHandle, dbi capi.DBI) (capi.Stat, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, false)
	if rc != capi.Success {
		return capi.Stat{}, rc
	}
	tbl, rc := t.tableFor(dbi)
	if rc != capi.Success {
		return capi.Stat{}, rc
	}
	return capi.Stat{
		PSize:    4096,
		Depth:    1,
		Entries:  uint64(tbl.pairCount()),
		ModTxnID: t.id,
	}, capi.Success
}

// DBISequence returns the sequence value before the increment was applied.
// An increment that would wrap past the 64-bit ceiling leaves the value
// untouched and reports ResultTrue.
func (e *Engine) DBISequence(th capi.TxnHandle, dbi capi.DBI, increment uint64) (uint64, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, increment != 0)
	if rc != capi.Success {
		return 0, rc
	}
	if _, rc := t.dbiDef(dbi); rc != capi.Success {
		return 0, rc
	}
	prev := t.state.seqs[dbi]
	if increment == 0 {
		return prev, capi.Success
	}
	next, ok := safemath.Add64(prev, increment)
	if !ok {
		return prev, capi.ResultTrue
	}
	t.state.seqs[dbi] = next
	return prev, capi.Success
}

func (e *Engine) Get(th capi.TxnHandle, dbi capi.DBI, key []byte) ([]byte, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, false)
	if rc != capi.Success {
		return nil, rc
	}
	tbl, rc := t.tableFor(dbi)
	if rc != capi.Success {
		return nil, rc
	}
	val, ok := tbl.get(key)
	if !ok {
		return nil, capi.NotFound
	}
	return clip(val), capi.Success
}

func (e *Engine) Put(th capi.TxnHandle, dbi capi.DBI, key, value []byte, flags uint32) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, true)
	if rc != capi.Success {
		return rc
	}
	tbl, rc := t.tableFor(dbi)
	if rc != capi.Success {
		return rc
	}
	_, _, rc = tbl.put(key, value, flags)
	return rc
}

func (e *Engine) Del(th capi.TxnHandle, dbi capi.DBI, key, value []byte) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, true)
	if rc != capi.Success {
		return rc
	}
	tbl, rc := t.tableFor(dbi)
	if rc != capi.Success {
		return rc
	}
	return tbl.del(key, value)
}

func (e *Engine) Replace(th capi.TxnHandle, dbi capi.DBI, key, newValue []byte, flags uint32) ([]byte, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, true)
	if rc != capi.Success {
		return nil, rc
	}
	tbl, rc := t.tableFor(dbi)
	if rc != capi.Success {
		return nil, rc
	}
	var old []byte
	if prev, ok := tbl.get(key); ok {
		old = clip(prev)
	}
	if _, _, rc := tbl.put(key, newValue, flags); rc != capi.Success {
		return nil, rc
	}
	return old, capi.Success
}

func (e *Engine) Drop(th capi.TxnHandle, dbi capi.DBI, del bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, true)
	if rc != capi.Success {
		return rc
	}
	if _, rc := t.dbiDef(dbi); rc != capi.Success {
		return rc
	}
	delete(t.state.tables, dbi)
	delete(t.state.seqs, dbi)
	return capi.Success
}
