// Package memengine is an in-process implementation of the capi.API engine
// boundary. It keeps every environment in memory: sorted tables with
// duplicate-value support, a snapshot per transaction, and a single-writer
// lock per environment. The test suite runs the whole access layer against
// it, so no native library is needed to exercise the layer's semantics.
//
// Handles are indices into arenas rather than pointers; a released handle is
// never reused for the lifetime of the engine, which makes use-after-close
// show up as a clean error instead of memory corruption.
package memengine

import (
	"sync"

	"github.com/keeldb/mdbx/internal/capi"
)

// Engine implements capi.API.
type Engine struct {
	mu      sync.Mutex
	next    uintptr
	envs    map[capi.EnvHandle]*env
	txns    map[capi.TxnHandle]*txn
	cursors map[capi.CursorHandle]*cursor
}

var _ capi.API = (*Engine)(nil)

// New returns an empty engine.
func New() *Engine {
	return &Engine{
		next:    1,
		envs:    make(map[capi.EnvHandle]*env),
		txns:    make(map[capi.TxnHandle]*txn),
		cursors: make(map[capi.CursorHandle]*cursor),
	}
}

type env struct {
	opened     bool
	path       string
	flags      uint32
	geometry   capi.Geometry
	maxDBs     uint64
	maxReaders uint64
	opts       map[uint32]uint64
	userCtx    uintptr

	// dbis[0] is the unnamed map; DBI values are index+1 so the zero DBI
	// stays invalid.
	dbis []dbiDef

	committed   *state
	recentTxnID uint64
	liveTxns    int
	writerLock  sync.Mutex
}

type dbiDef struct {
	name  string
	flags uint32
}

type txn struct {
	h       capi.TxnHandle
	env     *env
	parent  *txn
	flags   uint32
	state   *state
	id      uint64
	broken  bool
	reset   bool
	userCtx uintptr
}

func (t *txn) readOnly() bool {
	return t.flags&capi.TxnReadOnly != 0
}

func (t *txn) usable() (int, bool) {
	switch {
	case t.broken:
		return capi.BadTxn, false
	case t.reset:
		return capi.BadRSlot, false
	}
	return capi.Success, true
}

func (e *Engine) handle() uintptr {
	h := e.next
	e.next++
	return h
}

func (e *Engine) EnvCreate() (capi.EnvHandle, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := capi.EnvHandle(e.handle())
	e.envs[h] = &env{
		geometry:   capi.DefaultGeometry(),
		maxDBs:     1,
		maxReaders: 126,
		opts:       make(map[uint32]uint64),
		dbis:       []dbiDef{{name: "", flags: capi.DBDefaults}},
		committed:  newState(),
	}
	return h, capi.Success
}

func (e *Engine) env(h capi.EnvHandle) (*env, int) {
	v, ok := e.envs[h]
	if !ok {
		return nil, capi.EBadSign
	}
	return v, capi.Success
}

func (e *Engine) EnvOpen(h capi.EnvHandle, path string, flags uint32, mode uint32) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return rc
	}
	if v.opened {
		return capi.EInval
	}
	v.opened = true
	v.path = path
	v.flags = flags
	return capi.Success
}

// EnvClose refuses to close while transactions are outstanding; the caller
// keeps a valid handle and may retry. This mirrors the engine's busy
// semantics on close.
func (e *Engine) EnvClose(h capi.EnvHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return rc
	}
	if v.liveTxns > 0 {
		return capi.Busy
	}
	delete(e.envs, h)
	return capi.Success
}

func (e *Engine) EnvSetGeometry(h capi.EnvHandle, g capi.Geometry) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return rc
	}
	v.geometry = g
	return capi.Success
}

func (e *Engine) EnvSetMaxReaders(h capi.EnvHandle, n uint64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return rc
	}
	if v.opened {
		return capi.EPerm
	}
	v.maxReaders = n
	return capi.Success
}

func (e *Engine) EnvSetMaxDBs(h capi.EnvHandle, n uint64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return rc
	}
	if v.opened {
		return capi.EPerm
	}
	v.maxDBs = n
	return capi.Success
}

func (e *Engine) EnvGetMaxDBs(h capi.EnvHandle) (uint64, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return 0, rc
	}
	return v.maxDBs, capi.Success
}

func (e *Engine) EnvSetOption(h capi.EnvHandle, option uint32, value uint64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return rc
	}
	switch option {
	case capi.OptMaxDB:
		v.maxDBs = value
	case capi.OptMaxReaders:
		v.maxReaders = value
	default:
		v.opts[option] = value
	}
	return capi.Success
}

func (e *Engine) EnvGetOption(h capi.EnvHandle, option uint32) (uint64, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return 0, rc
	}
	switch option {
	case capi.OptMaxDB:
		return v.maxDBs, capi.Success
	case capi.OptMaxReaders:
		return v.maxReaders, capi.Success
	}
	return v.opts[option], capi.Success
}

func (e *Engine) EnvSync(h capi.EnvHandle, force, nonblock bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, rc := e.env(h); rc != capi.Success {
		return rc
	}
	// Nothing to flush; report the "already synced" special success.
	return capi.ResultTrue
}

func (e *Engine) EnvCopy(h capi.EnvHandle, dest string, flags uint32) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, rc := e.env(h); rc != capi.Success {
		return rc
	}
	return capi.Success
}

func (e *Engine) EnvGetPath(h capi.EnvHandle) (string, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return "", rc
	}
	return v.path, capi.Success
}

func (e *Engine) EnvDelete(path string, mode uint32) int {
	return capi.Success
}

func (e *Engine) EnvSetUserCtx(h capi.EnvHandle, ctx uintptr) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return rc
	}
	v.userCtx = ctx
	return capi.Success
}

func (e *Engine) EnvGetUserCtx(h capi.EnvHandle) uintptr {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return 0
	}
	return v.userCtx
}

func (e *Engine) EnvStat(h capi.EnvHandle, _ capi.TxnHandle) (capi.Stat, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return capi.Stat{}, rc
	}
	st := capi.Stat{PSize: 4096, Depth: 1, ModTxnID: v.recentTxnID}
	if t := v.committed.tables[1]; t != nil {
		st.Entries = uint64(t.pairCount())
	}
	return st, capi.Success
}

func (e *Engine) EnvInfo(h capi.EnvHandle, _ capi.TxnHandle) (capi.EnvInfo, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, rc := e.env(h)
	if rc != capi.Success {
		return capi.EnvInfo{}, rc
	}
	info := capi.EnvInfo{
		RecentTxnID: v.recentTxnID,
		MaxReaders:  uint32(v.maxReaders),
		DXBPageSize: 4096,
		SysPageSize: 4096,
		Mode:        v.flags,
	}
	if v.geometry.SizeNow > 0 {
		info.Geo.Current = uint64(v.geometry.SizeNow)
	}
	return info, capi.Success
}

func (e *Engine) TxnBegin(eh capi.EnvHandle, parent capi.TxnHandle, flags uint32, ctx uintptr) (capi.TxnHandle, int) {
	e.mu.Lock()
	v, rc := e.env(eh)
	if rc != capi.Success {
		e.mu.Unlock()
		return 0, rc
	}
	if !v.opened {
		e.mu.Unlock()
		return 0, capi.EPerm
	}

	if flags&capi.TxnReadOnly != 0 {
		defer e.mu.Unlock()
		if parent != 0 {
			return 0, capi.BadTxn
		}
		t := &txn{env: v, flags: flags, state: v.committed, id: v.recentTxnID, userCtx: ctx}
		return e.registerTxn(t), capi.Success
	}

	if parent != 0 {
		defer e.mu.Unlock()
		p, ok := e.txns[parent]
		if !ok || p.env != v || p.readOnly() {
			return 0, capi.BadTxn
		}
		t := &txn{env: v, parent: p, flags: flags, state: p.state.clone(), id: p.id, userCtx: ctx}
		return e.registerTxn(t), capi.Success
	}

	// Top-level writer: take the single-writer lock without holding the
	// engine lock, since the wait may be long.
	e.mu.Unlock()
	if flags&capi.TxnTry != 0 {
		if !v.writerLock.TryLock() {
			return 0, capi.Busy
		}
	} else {
		v.writerLock.Lock()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t := &txn{env: v, flags: flags, state: v.committed.clone(), id: v.recentTxnID + 1, userCtx: ctx}
	return e.registerTxn(t), capi.Success
}

func (e *Engine) registerTxn(t *txn) capi.TxnHandle {
	h := capi.TxnHandle(e.handle())
	t.h = h
	e.txns[h] = t
	t.env.liveTxns++
	return h
}

func (e *Engine) txn(h capi.TxnHandle) (*txn, int) {
	t, ok := e.txns[h]
	if !ok {
		return nil, capi.EBadSign
	}
	return t, capi.Success
}

func (e *Engine) finishTxn(t *txn, commit bool) int {
	if commit {
		if rc, ok := t.usable(); !ok {
			e.releaseTxn(t)
			return rc
		}
	}
	if commit && !t.readOnly() {
		if t.parent != nil {
			t.parent.state = t.state
		} else {
			t.env.committed = t.state
			t.env.recentTxnID = t.id
		}
	}
	e.releaseTxn(t)
	return capi.Success
}

func (e *Engine) releaseTxn(t *txn) {
	delete(e.txns, t.h)
	t.env.liveTxns--
	if !t.readOnly() && t.parent == nil {
		t.env.writerLock.Unlock()
	}
	// Cursors of a finished transaction turn into dangling handles; any
	// further use reports a bad signature instead of touching freed state.
	for h, c := range e.cursors {
		if c.txn == t {
			delete(e.cursors, h)
		}
	}
}

func (e *Engine) TxnCommit(h capi.TxnHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.txn(h)
	if rc != capi.Success {
		return rc
	}
	return e.finishTxn(t, true)
}

func (e *Engine) TxnCommitEx(h capi.TxnHandle) (capi.CommitLatency, int) {
	return capi.CommitLatency{}, e.TxnCommit(h)
}

func (e *Engine) TxnAbort(h capi.TxnHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.txn(h)
	if rc != capi.Success {
		return rc
	}
	return e.finishTxn(t, false)
}

func (e *Engine) TxnReset(h capi.TxnHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.txn(h)
	if rc != capi.Success {
		return rc
	}
	if !t.readOnly() {
		return capi.EInval
	}
	t.reset = true
	t.state = nil
	return capi.Success
}

func (e *Engine) TxnRenew(h capi.TxnHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.txn(h)
	if rc != capi.Success {
		return rc
	}
	if !t.readOnly() {
		return capi.EInval
	}
	t.reset = false
	t.broken = false
	t.state = t.env.committed
	t.id = t.env.recentTxnID
	return capi.Success
}

func (e *Engine) TxnBreak(h capi.TxnHandle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.txn(h)
	if rc != capi.Success {
		return rc
	}
	t.broken = true
	return capi.Success
}

func (e *Engine) TxnID(h capi.TxnHandle) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.txn(h)
	if rc != capi.Success {
		return 0
	}
	return t.id
}

func (e *Engine) TxnInfo(h capi.TxnHandle, _ bool) (capi.TxnInfo, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.txn(h)
	if rc != capi.Success {
		return capi.TxnInfo{}, rc
	}
	return capi.TxnInfo{ID: t.id}, capi.Success
}

func (e *Engine) TxnSetUserCtx(h capi.TxnHandle, ctx uintptr) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.txn(h)
	if rc != capi.Success {
		return rc
	}
	t.userCtx = ctx
	return capi.Success
}

func (e *Engine) TxnGetUserCtx(h capi.TxnHandle) uintptr {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, rc := e.txn(h)
	if rc != capi.Success {
		return 0
	}
	return t.userCtx
}

func (e *Engine) StrError(code int) string {
	return capi.Describe(code)
}
