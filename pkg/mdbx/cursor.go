package mdbx

import (
	"sync"

	"github.com/keeldb/mdbx/internal/capi"
)

// Cursor is a position within one map, owned by one transaction. When the
// transaction finishes, its cursors are force-closed; any later use reports
// ErrCursorClosed.
type Cursor struct {
	txn *Txn
	m   *Map
	api capi.API

	mu       sync.Mutex
	h        capi.CursorHandle
	regID    uint64
	closed   bool
	userData any
}

// SetUserData attaches an arbitrary host-side value to the cursor. It never
// crosses the engine boundary; see SetRawUserCtx for the engine's own
// pointer slot.
func (c *Cursor) SetUserData(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userData = v
}

func (c *Cursor) UserData() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userData
}

// SetRawUserCtx stores an opaque pointer in the engine's per-cursor context
// slot. Only useful for interop with native code.
func (c *Cursor) SetRawUserCtx(ctx uintptr) error {
	h, err := c.guard()
	if err != nil {
		return err
	}
	return apiErr(c.api, c.api.CursorSetUserCtx(h, ctx))
}

func (c *Cursor) RawUserCtx() (uintptr, error) {
	h, err := c.guard()
	if err != nil {
		return 0, err
	}
	return c.api.CursorGetUserCtx(h), nil
}

// Map returns the map the cursor runs over.
func (c *Cursor) Map() *Map {
	return c.m
}

func (c *Cursor) guard() (capi.CursorHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrCursorClosed
	}
	return c.h, nil
}

// Close releases the cursor. Closing twice is a no-op.
func (c *Cursor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.api.CursorClose(c.h)
	c.closed = true
	c.h = 0
	if c.txn != nil {
		c.txn.cursors.remove(c.regID)
	}
	return nil
}

// Bind attaches an unbound cursor to a transaction and map, or rebinds a
// bound one. The transaction takes ownership.
//
// Lock order: Bind and Renew take c.mu then t.mu, while a finishing
// transaction takes t.mu then c.mu. The engine contract that a cursor is
// used from one goroutine at a time keeps the two paths from interleaving
// on the same cursor.
func (c *Cursor) Bind(t *Txn, m *Map) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCursorClosed
	}
	th, err := t.guard()
	if err != nil {
		return err
	}
	if rc := c.api.CursorBind(th, c.h, m.dbi); rc != capi.Success {
		return apiErr(c.api, rc)
	}
	if c.txn != nil {
		c.txn.cursors.remove(c.regID)
	}
	c.txn = t
	c.m = m
	c.regID = t.cursors.add(c)
	return nil
}

// forceClose is the owner-driven variant: the transaction has already
// drained its registry, so no unregistration happens here.
func (c *Cursor) forceClose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.api.CursorClose(c.h)
	c.closed = true
	c.h = 0
}

// Get positions the cursor with op and returns the pair it lands on. Ops
// that need no key take nil. Running past the data is an empty result: both
// returns are nil and the error is nil.
func (c *Cursor) Get(key []byte, op CursorOp) ([]byte, []byte, error) {
	h, err := c.guard()
	if err != nil {
		return nil, nil, err
	}
	k, v, rc := c.api.CursorGet(h, key, uint32(op))
	if absent(rc) {
		return nil, nil, nil
	}
	if rc != capi.Success {
		return nil, nil, apiErr(c.api, rc)
	}
	return k, v, nil
}

// First moves to the first pair of the map.
func (c *Cursor) First() ([]byte, []byte, error) {
	return c.Get(nil, OpFirst)
}

// Last moves to the last pair of the map.
func (c *Cursor) Last() ([]byte, []byte, error) {
	return c.Get(nil, OpLast)
}

// Next moves to the following pair, descending into duplicate runs.
func (c *Cursor) Next() ([]byte, []byte, error) {
	return c.Get(nil, OpNext)
}

// Prev moves to the preceding pair.
func (c *Cursor) Prev() ([]byte, []byte, error) {
	return c.Get(nil, OpPrev)
}

// FirstDup moves to the first duplicate of the current key and returns its
// value.
func (c *Cursor) FirstDup() ([]byte, error) {
	_, v, err := c.Get(nil, OpFirstDup)
	return v, err
}

// LastDup moves to the last duplicate of the current key and returns its
// value.
func (c *Cursor) LastDup() ([]byte, error) {
	_, v, err := c.Get(nil, OpLastDup)
	return v, err
}

// Put stores a pair through the cursor and leaves the cursor on it.
func (c *Cursor) Put(key, value []byte, flags PutFlags) error {
	h, err := c.guard()
	if err != nil {
		return err
	}
	return apiErr(c.api, c.api.CursorPut(h, key, value, uint32(flags)))
}

// Delete removes the pair the cursor is on. PutAllDups removes the whole
// duplicate run.
func (c *Cursor) Delete(flags PutFlags) error {
	h, err := c.guard()
	if err != nil {
		return err
	}
	return apiErr(c.api, c.api.CursorDel(h, uint32(flags)))
}

// Count returns how many values the current key holds.
func (c *Cursor) Count() (uint64, error) {
	h, err := c.guard()
	if err != nil {
		return 0, err
	}
	n, rc := c.api.CursorCount(h)
	if rc != capi.Success {
		return 0, apiErr(c.api, rc)
	}
	return n, nil
}

// EOF reports whether the cursor points past the data.
func (c *Cursor) EOF() (bool, error) {
	h, err := c.guard()
	if err != nil {
		return false, err
	}
	return c.boolCall(c.api.CursorEOF(h))
}

// OnFirst reports whether the cursor sits on the first pair.
func (c *Cursor) OnFirst() (bool, error) {
	h, err := c.guard()
	if err != nil {
		return false, err
	}
	return c.boolCall(c.api.CursorOnFirst(h))
}

// OnLast reports whether the cursor sits on the last pair.
func (c *Cursor) OnLast() (bool, error) {
	h, err := c.guard()
	if err != nil {
		return false, err
	}
	return c.boolCall(c.api.CursorOnLast(h))
}

// boolCall decodes the engine's tri-state boundary checks: ResultTrue is
// true, Success is false, and the absence codes also mean "condition is
// false" rather than an error.
func (c *Cursor) boolCall(rc int) (bool, error) {
	switch {
	case rc == capi.ResultTrue:
		return true, nil
	case rc == capi.Success, absent(rc):
		return false, nil
	}
	return false, apiErr(c.api, rc)
}

// Dup opens a second cursor on the same map and transaction, positioned
// where this one is.
func (c *Cursor) Dup() (*Cursor, error) {
	h, err := c.guard()
	if err != nil {
		return nil, err
	}
	d, err := c.txn.Cursor(c.m)
	if err != nil {
		return nil, err
	}
	if rc := c.api.CursorCopy(h, d.h); rc != capi.Success {
		_ = d.Close()
		return nil, apiErr(c.api, rc)
	}
	return d, nil
}

// Renew rebinds the cursor to another transaction over the same map,
// unpositioned. Ownership moves with it: the new transaction force-closes
// the cursor when it finishes.
func (c *Cursor) Renew(t *Txn) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCursorClosed
	}
	if c.txn == nil {
		// Never bound; there is no owner to move it from.
		return apiErr(c.api, capi.EInval)
	}
	th, err := t.guard()
	if err != nil {
		return err
	}
	if rc := c.api.CursorRenew(th, c.h); rc != capi.Success {
		return apiErr(c.api, rc)
	}
	c.txn.cursors.remove(c.regID)
	c.txn = t
	c.regID = t.cursors.add(c)
	return nil
}
