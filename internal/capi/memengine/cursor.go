package memengine

import (
	"github.com/keeldb/mdbx/internal/capi"
)

// cursor tracks a position as key/dup indices into its table. After a
// delete the indices already name the successor pair; the gap flag makes
// the next relative move land there instead of skipping it.
type cursor struct {
	h          capi.CursorHandle
	txn        *txn
	dbi        capi.DBI
	ki, vi     int
	positioned bool
	pastEnd    bool
	gap        bool
	userCtx    uintptr
}

func (e *Engine) cursor(h capi.CursorHandle) (*cursor, int) {
	c, ok := e.cursors[h]
	if !ok {
		return nil, capi.EBadSign
	}
	return c, capi.Success
}

func (e *Engine) boundCursor(h capi.CursorHandle) (*cursor, *table, int) {
	c, rc := e.cursor(h)
	if rc != capi.Success {
		return nil, nil, rc
	}
	if c.txn == nil {
		return nil, nil, capi.EInval
	}
	if rc, ok := c.txn.usable(); !ok {
		return nil, nil, rc
	}
	tbl, rc := c.txn.tableFor(c.dbi)
	if rc != capi.Success {
		return nil, nil, rc
	}
	return c, tbl, capi.Success
}

func (e *Engine) CursorOpen(th capi.TxnHandle, dbi capi.DBI) (capi.CursorHandle, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, false)
	if rc != capi.Success {
		return 0, rc
	}
	if _, rc := t.dbiDef(dbi); rc != capi.Success {
		return 0, rc
	}
	h := capi.CursorHandle(e.handle())
	e.cursors[h] = &cursor{h: h, txn: t, dbi: dbi}
	return h, capi.Success
}

func (e *Engine) CursorCreate(ctx uintptr) capi.CursorHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := capi.CursorHandle(e.handle())
	e.cursors[h] = &cursor{h: h, userCtx: ctx}
	return h
}

func (e *Engine) CursorBind(th capi.TxnHandle, h capi.CursorHandle, dbi capi.DBI) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, false)
	if rc != capi.Success {
		return rc
	}
	if _, rc := t.dbiDef(dbi); rc != capi.Success {
		return rc
	}
	c, rc := e.cursor(h)
	if rc != capi.Success {
		return rc
	}
	*c = cursor{h: c.h, txn: t, dbi: dbi, userCtx: c.userCtx}
	return capi.Success
}

func (e *Engine) CursorClose(h capi.CursorHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cursors, h)
}

func (e *Engine) CursorCopy(src, dest capi.CursorHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, rc := e.cursor(src)
	if rc != capi.Success {
		return rc
	}
	d, rc := e.cursor(dest)
	if rc != capi.Success {
		return rc
	}
	*d = cursor{
		h: d.h, txn: s.txn, dbi: s.dbi,
		ki: s.ki, vi: s.vi,
		positioned: s.positioned, pastEnd: s.pastEnd, gap: s.gap,
		userCtx: d.userCtx,
	}
	return capi.Success
}

func (e *Engine) CursorGet(h capi.CursorHandle, key []byte, op uint32) ([]byte, []byte, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, tbl, rc := e.boundCursor(h)
	if rc != capi.Success {
		return nil, nil, rc
	}
	if rc := c.move(tbl, key, op); rc != capi.Success {
		return nil, nil, rc
	}
	k, v := c.current(tbl)
	return k, v, capi.Success
}

// move repositions the cursor. On NotFound the position is consumed: the
// cursor parks past the end (or stays unpositioned) exactly like the
// engine's B-tree cursor does.
func (c *cursor) move(tbl *table, key []byte, op uint32) int {
	switch op {
	case capi.OpFirst:
		return c.park(tbl, 0, 0)

	case capi.OpLast:
		if len(tbl.keys) == 0 {
			return c.exhaust()
		}
		ki := len(tbl.keys) - 1
		return c.park(tbl, ki, len(tbl.vals[ki])-1)

	case capi.OpGetCurrent:
		if !c.valid(tbl) {
			return capi.ENoData
		}
		return capi.Success

	case capi.OpNext:
		if c.gap {
			c.gap = false
			if c.ki < len(tbl.keys) && c.vi < len(tbl.vals[c.ki]) {
				return c.park(tbl, c.ki, c.vi)
			}
			if c.ki+1 <= len(tbl.keys)-1 && c.vi >= len(tbl.vals[c.ki]) {
				return c.park(tbl, c.ki+1, 0)
			}
			return c.exhaust()
		}
		if c.pastEnd {
			return capi.NotFound
		}
		if !c.positioned {
			return c.park(tbl, 0, 0)
		}
		if c.vi+1 < len(tbl.vals[c.ki]) {
			return c.park(tbl, c.ki, c.vi+1)
		}
		return c.park(tbl, c.ki+1, 0)

	case capi.OpPrev:
		if !c.positioned || c.pastEnd {
			return c.move(tbl, nil, capi.OpLast)
		}
		if c.vi > 0 {
			return c.park(tbl, c.ki, c.vi-1)
		}
		if c.ki == 0 {
			c.positioned = false
			return capi.NotFound
		}
		return c.park(tbl, c.ki-1, len(tbl.vals[c.ki-1])-1)

	case capi.OpNextDup:
		if !c.valid(tbl) {
			return capi.NotFound
		}
		if c.vi+1 >= len(tbl.vals[c.ki]) {
			return capi.NotFound
		}
		return c.park(tbl, c.ki, c.vi+1)

	case capi.OpPrevDup:
		if !c.valid(tbl) || c.vi == 0 {
			return capi.NotFound
		}
		return c.park(tbl, c.ki, c.vi-1)

	case capi.OpNextNoDup:
		if c.pastEnd {
			return capi.NotFound
		}
		if !c.positioned && !c.gap {
			return c.park(tbl, 0, 0)
		}
		c.gap = false
		return c.park(tbl, c.ki+1, 0)

	case capi.OpPrevNoDup:
		if !c.positioned || c.pastEnd {
			return c.move(tbl, nil, capi.OpLast)
		}
		if c.ki == 0 {
			c.positioned = false
			return capi.NotFound
		}
		return c.park(tbl, c.ki-1, 0)

	case capi.OpFirstDup:
		if !c.valid(tbl) {
			return capi.ENoData
		}
		return c.park(tbl, c.ki, 0)

	case capi.OpLastDup:
		if !c.valid(tbl) {
			return capi.ENoData
		}
		return c.park(tbl, c.ki, len(tbl.vals[c.ki])-1)

	case capi.OpSet, capi.OpSetKey:
		i, found := tbl.search(key)
		if !found {
			return c.exhaust()
		}
		return c.park(tbl, i, 0)

	case capi.OpSetRange, capi.OpSetLowerBound:
		i, _ := tbl.search(key)
		return c.park(tbl, i, 0)

	case capi.OpSetUpperBound:
		i, found := tbl.search(key)
		if found {
			i++
		}
		return c.park(tbl, i, 0)
	}
	return capi.EInval
}

func (c *cursor) park(tbl *table, ki, vi int) int {
	if ki >= len(tbl.keys) {
		return c.exhaust()
	}
	c.ki, c.vi = ki, vi
	c.positioned, c.pastEnd, c.gap = true, false, false
	return capi.Success
}

func (c *cursor) exhaust() int {
	c.positioned, c.pastEnd, c.gap = false, true, false
	return capi.NotFound
}

// valid reports whether the cursor's indices still name a live pair.
func (c *cursor) valid(tbl *table) bool {
	return c.positioned && c.ki < len(tbl.keys) && c.vi < len(tbl.vals[c.ki])
}

func (c *cursor) current(tbl *table) ([]byte, []byte) {
	return clip(tbl.keys[c.ki]), clip(tbl.vals[c.ki][c.vi])
}

func (e *Engine) CursorPut(h capi.CursorHandle, key, value []byte, flags uint32) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, tbl, rc := e.boundCursor(h)
	if rc != capi.Success {
		return rc
	}
	if c.txn.readOnly() {
		return capi.EAccess
	}
	ki, vi, rc := tbl.put(key, value, flags)
	if rc != capi.Success {
		return rc
	}
	return c.park(tbl, ki, vi)
}

func (e *Engine) CursorDel(h capi.CursorHandle, flags uint32) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, tbl, rc := e.boundCursor(h)
	if rc != capi.Success {
		return rc
	}
	if c.txn.readOnly() {
		return capi.EAccess
	}
	if !c.valid(tbl) {
		return capi.ENoData
	}
	if flags&capi.PutAllDups != 0 || !tbl.dup {
		tbl.removeKey(c.ki)
		c.vi = 0
	} else {
		hadDups := len(tbl.vals[c.ki]) > 1
		tbl.removeDup(c.ki, c.vi)
		if !hadDups {
			c.vi = 0
		}
	}
	c.positioned = false
	c.gap = true
	return capi.Success
}

func (e *Engine) CursorCount(h capi.CursorHandle) (uint64, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, tbl, rc := e.boundCursor(h)
	if rc != capi.Success {
		return 0, rc
	}
	if !c.valid(tbl) {
		return 0, capi.EInval
	}
	return uint64(len(tbl.vals[c.ki])), capi.Success
}

func (e *Engine) CursorEOF(h capi.CursorHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, tbl, rc := e.boundCursor(h)
	if rc != capi.Success {
		return rc
	}
	if !c.valid(tbl) {
		return capi.ResultTrue
	}
	return capi.Success
}

func (e *Engine) CursorOnFirst(h capi.CursorHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, tbl, rc := e.boundCursor(h)
	if rc != capi.Success {
		return rc
	}
	if c.valid(tbl) && c.ki == 0 && c.vi == 0 {
		return capi.ResultTrue
	}
	return capi.Success
}

func (e *Engine) CursorOnLast(h capi.CursorHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, tbl, rc := e.boundCursor(h)
	if rc != capi.Success {
		return rc
	}
	if c.valid(tbl) && c.ki == len(tbl.keys)-1 && c.vi == len(tbl.vals[c.ki])-1 {
		return capi.ResultTrue
	}
	return capi.Success
}

func (e *Engine) CursorRenew(th capi.TxnHandle, h capi.CursorHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.liveTxn(th, false)
	if rc != capi.Success {
		return rc
	}
	c, rc := e.cursor(h)
	if rc != capi.Success {
		return rc
	}
	if c.dbi == 0 {
		return capi.EInval
	}
	*c = cursor{h: c.h, txn: t, dbi: c.dbi, userCtx: c.userCtx}
	return capi.Success
}

func (e *Engine) CursorTxn(h capi.CursorHandle) capi.TxnHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, rc := e.cursor(h)
	if rc != capi.Success || c.txn == nil {
		return 0
	}
	return c.txn.h
}

func (e *Engine) CursorDBI(h capi.CursorHandle) capi.DBI {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, rc := e.cursor(h)
	if rc != capi.Success {
		return 0
	}
	return c.dbi
}

func (e *Engine) CursorSetUserCtx(h capi.CursorHandle, ctx uintptr) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, rc := e.cursor(h)
	if rc != capi.Success {
		return rc
	}
	c.userCtx = ctx
	return capi.Success
}

func (e *Engine) CursorGetUserCtx(h capi.CursorHandle) uintptr {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, rc := e.cursor(h)
	if rc != capi.Success {
		return 0
	}
	return c.userCtx
}
