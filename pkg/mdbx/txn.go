package mdbx

import (
	"sync"

	"github.com/keeldb/mdbx/internal/capi"
)

// Txn is one transaction. A finished transaction keeps answering calls, but
// every call reports ErrTxnDone; finishing also force-closes the cursors
// and nested transactions opened under it.
type Txn struct {
	env *Env
	api capi.API

	mu     sync.Mutex
	h      capi.TxnHandle
	regID  uint64
	flags  TxnFlags
	parent *Txn
	done   bool

	cursors  *registry[Cursor]
	children *registry[Txn]

	userData any
}

// SetUserData attaches an arbitrary host-side value to the transaction.
func (t *Txn) SetUserData(v any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userData = v
}

func (t *Txn) UserData() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userData
}

// SetRawUserCtx stores an opaque pointer in the engine's per-transaction
// context slot.
func (t *Txn) SetRawUserCtx(ctx uintptr) error {
	h, err := t.guard()
	if err != nil {
		return err
	}
	return apiErr(t.api, t.api.TxnSetUserCtx(h, ctx))
}

func (t *Txn) RawUserCtx() (uintptr, error) {
	h, err := t.guard()
	if err != nil {
		return 0, err
	}
	return t.api.TxnGetUserCtx(h), nil
}

// ReadOnly reports whether the transaction was begun read-only.
func (t *Txn) ReadOnly() bool {
	return t.flags&TxnReadOnly != 0
}

func (t *Txn) guard() (capi.TxnHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return 0, ErrTxnDone
	}
	return t.h, nil
}

// end finishes the transaction exactly once. Children end before cursors,
// cursors before the transaction itself, matching the engine's ownership
// order.
func (t *Txn) end(commit, withLatency bool) (capi.CommitLatency, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return capi.CommitLatency{}, ErrTxnDone
	}
	for _, child := range t.children.drain() {
		_ = child.Abort()
	}
	for _, c := range t.cursors.drain() {
		c.forceClose()
	}

	var latency capi.CommitLatency
	var rc int
	switch {
	case commit && withLatency:
		latency, rc = t.api.TxnCommitEx(t.h)
	case commit:
		rc = t.api.TxnCommit(t.h)
	default:
		rc = t.api.TxnAbort(t.h)
	}
	t.done = true
	t.h = 0
	if t.parent != nil {
		t.parent.children.remove(t.regID)
	} else {
		t.env.txns.remove(t.regID)
	}
	return latency, apiErr(t.api, rc)
}

// Commit makes the transaction's writes durable.
func (t *Txn) Commit() error {
	_, err := t.end(true, false)
	return err
}

// CommitLatency commits and returns the engine's per-stage timing of the
// commit.
func (t *Txn) CommitLatency() (CommitLatency, error) {
	latency, err := t.end(true, true)
	return latencyFrom(latency), err
}

// Abort discards the transaction.
func (t *Txn) Abort() error {
	_, err := t.end(false, false)
	return err
}

// Reset suspends a read-only transaction so its reader slot can be reused
// cheaply by Renew.
func (t *Txn) Reset() error {
	h, err := t.guard()
	if err != nil {
		return err
	}
	return apiErr(t.api, t.api.TxnReset(h))
}

// Renew resumes a reset read-only transaction on the current snapshot.
func (t *Txn) Renew() error {
	h, err := t.guard()
	if err != nil {
		return err
	}
	return apiErr(t.api, t.api.TxnRenew(h))
}

// Break marks the transaction so all further data operations fail; it must
// still be committed or aborted.
func (t *Txn) Break() error {
	h, err := t.guard()
	if err != nil {
		return err
	}
	return apiErr(t.api, t.api.TxnBreak(h))
}

// ID returns the engine's serial number for the transaction, 0 once it is
// finished.
func (t *Txn) ID() uint64 {
	h, err := t.guard()
	if err != nil {
		return 0
	}
	return t.api.TxnID(h)
}

// Info returns the engine's view of the transaction's footprint.
func (t *Txn) Info(scanReaderLag bool) (TxnInfo, error) {
	h, err := t.guard()
	if err != nil {
		return TxnInfo{}, err
	}
	info, rc := t.api.TxnInfo(h, scanReaderLag)
	if rc != capi.Success {
		return TxnInfo{}, apiErr(t.api, rc)
	}
	return txnInfoFrom(info), nil
}

// Begin starts a nested transaction. The parent must be a write
// transaction and must not be used until the child finishes.
func (t *Txn) Begin(flags TxnFlags) (*Txn, error) {
	if _, err := t.guard(); err != nil {
		return nil, err
	}
	return t.env.begin(t, flags)
}

func (t *Txn) openMap(name string, flags MapFlags) (*Map, error) {
	h, err := t.guard()
	if err != nil {
		return nil, err
	}
	var nameBytes []byte
	if name != "" {
		nameBytes = []byte(name)
	}
	dbi, rc := t.api.DBIOpen(h, nameBytes, uint32(flags))
	if rc != capi.Success {
		return nil, apiErr(t.api, rc)
	}
	return &Map{env: t.env, api: t.api, dbi: dbi, name: name, flags: flags &^ MapCreate}, nil
}

// OpenMap opens an existing named map; the empty name is the default map.
func (t *Txn) OpenMap(name string, flags MapFlags) (*Map, error) {
	return t.openMap(name, flags&^MapCreate)
}

// CreateMap opens a named map, creating it if needed. Creation requires a
// write transaction.
func (t *Txn) CreateMap(name string, flags MapFlags) (*Map, error) {
	return t.openMap(name, flags|MapCreate)
}

// CursorNamed opens a cursor over the map called name, opening the map
// first. A write transaction creates the map if it is absent; a read-only
// transaction cannot create, so there the open is non-creating.
func (t *Txn) CursorNamed(name string) (*Cursor, error) {
	var m *Map
	var err error
	if t.ReadOnly() {
		m, err = t.OpenMap(name, MapDefaults)
	} else {
		m, err = t.CreateMap(name, MapDefaults)
	}
	if err != nil {
		return nil, err
	}
	return t.Cursor(m)
}

// Cursor opens a cursor over m, owned by this transaction.
func (t *Txn) Cursor(m *Map) (*Cursor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil, ErrTxnDone
	}
	h, rc := t.api.CursorOpen(t.h, m.dbi)
	if rc != capi.Success {
		return nil, apiErr(t.api, rc)
	}
	c := &Cursor{txn: t, m: m, api: t.api, h: h}
	c.regID = t.cursors.add(c)
	return c, nil
}
