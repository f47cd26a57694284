// Package mdbx is an access layer over the MDBX embedded transactional
// key-value engine. An Env owns transactions, transactions own cursors, and
// closing a resource force-closes everything below it, so a dropped handle
// never dangles into freed engine state.
package mdbx

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/keeldb/mdbx/internal/capi"
	"github.com/keeldb/mdbx/internal/capi/native"
)

// Env is one open environment: a single datafile plus its lock file. All
// methods are safe for concurrent use.
type Env struct {
	api capi.API
	log zerolog.Logger

	mu         sync.Mutex
	h          capi.EnvHandle
	closed     bool
	path       string
	defaultMap string
	userData   any

	txns *registry[Txn]
}

// Open creates and opens an environment at path.
func Open(path string, opts ...OpenOption) (*Env, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	api := cfg.api
	if api == nil {
		loaded, err := native.Load()
		if err != nil {
			return nil, err
		}
		api = loaded
	}

	h, rc := api.EnvCreate()
	if rc != capi.Success {
		return nil, apiErr(api, rc)
	}
	fail := func(rc int) (*Env, error) {
		api.EnvClose(h)
		return nil, apiErr(api, rc)
	}
	if cfg.geometry != nil {
		if rc := api.EnvSetGeometry(h, *cfg.geometry); rc != capi.Success {
			return fail(rc)
		}
	}
	if cfg.maxMaps > 0 {
		if rc := api.EnvSetMaxDBs(h, cfg.maxMaps); rc != capi.Success {
			return fail(rc)
		}
	}
	if cfg.maxReaders > 0 {
		if rc := api.EnvSetMaxReaders(h, cfg.maxReaders); rc != capi.Success {
			return fail(rc)
		}
	}
	for opt, value := range cfg.options {
		if rc := api.EnvSetOption(h, uint32(opt), value); rc != capi.Success {
			return fail(rc)
		}
	}
	if rc := api.EnvOpen(h, path, uint32(cfg.flags), uint32(cfg.mode)); rc != capi.Success {
		return fail(rc)
	}

	e := &Env{api: api, log: cfg.log, h: h, path: path, txns: newRegistry[Txn]()}
	e.log.Debug().Str("path", path).Msg("environment opened")
	return e, nil
}

// Remove deletes the files of a closed environment at path.
func Remove(path string, mode DeleteMode, opts ...OpenOption) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	api := cfg.api
	if api == nil {
		loaded, err := native.Load()
		if err != nil {
			return err
		}
		api = loaded
	}
	return apiErr(api, api.EnvDelete(path, uint32(mode)))
}

func (e *Env) handle() (capi.EnvHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrEnvClosed
	}
	return e.h, nil
}

// Close aborts every live transaction of the environment, then closes it.
// If the engine reports busy the handle stays valid and Close may be
// retried; every other outcome, success or failure, retires the handle.
func (e *Env) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	for _, t := range e.txns.drain() {
		_ = t.Abort()
	}
	if rc := e.api.EnvClose(e.h); rc != capi.Success {
		if rc == capi.Busy {
			e.log.Warn().Str("path", e.path).Msg("close refused, environment busy")
			return apiErr(e.api, rc)
		}
		e.closed = true
		e.h = 0
		return apiErr(e.api, rc)
	}
	e.closed = true
	e.h = 0
	e.log.Debug().Str("path", e.path).Msg("environment closed")
	return nil
}

// Begin starts a transaction. A write begin blocks until the single-writer
// lock is free unless flags include TxnTry.
func (e *Env) Begin(flags TxnFlags) (*Txn, error) {
	return e.begin(nil, flags)
}

func (e *Env) begin(parent *Txn, flags TxnFlags) (*Txn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEnvClosed
	}
	var ph capi.TxnHandle
	if parent != nil {
		ph = parent.h
	}
	h, rc := e.api.TxnBegin(e.h, ph, uint32(flags), 0)
	if rc != capi.Success {
		return nil, apiErr(e.api, rc)
	}
	t := &Txn{
		env:      e,
		api:      e.api,
		h:        h,
		flags:    flags,
		parent:   parent,
		cursors:  newRegistry[Cursor](),
		children: newRegistry[Txn](),
	}
	if parent != nil {
		t.regID = parent.children.add(t)
	} else {
		t.regID = e.txns.add(t)
	}
	return t, nil
}

// View runs fn inside a read-only transaction and always aborts it.
func (e *Env) View(fn func(*Txn) error) error {
	t, err := e.Begin(TxnReadOnly)
	if err != nil {
		return err
	}
	defer func() { _ = t.Abort() }()
	return fn(t)
}

// Update runs fn inside a write transaction, committing on a nil return and
// aborting otherwise.
func (e *Env) Update(fn func(*Txn) error) error {
	t, err := e.Begin(TxnReadWrite)
	if err != nil {
		return err
	}
	if err := fn(t); err != nil {
		_ = t.Abort()
		return err
	}
	return t.Commit()
}

// SetDefaultMap redirects the dictionary-style accessors (Get, Put,
// Delete, Len, Items) to the named map instead of the unnamed default map.
func (e *Env) SetDefaultMap(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultMap = name
}

// facadeMap opens the facade's target map within t. A write transaction
// creates the map on first use; a read-only transaction cannot create and
// opens non-creating.
func (e *Env) facadeMap(t *Txn) (*Map, error) {
	e.mu.Lock()
	name := e.defaultMap
	e.mu.Unlock()
	if t.ReadOnly() {
		return t.OpenMap(name, MapDefaults)
	}
	return t.CreateMap(name, MapDefaults)
}

// Get reads key from the default map in an ephemeral read transaction. A
// missing key is an empty result, not an error.
func (e *Env) Get(key []byte) ([]byte, error) {
	var out []byte
	err := e.View(func(t *Txn) error {
		m, err := e.facadeMap(t)
		if err != nil {
			return err
		}
		v, err := m.Get(t, key)
		out = v
		return err
	})
	if err != nil {
		// A facade read over a map nobody created yet is an empty result.
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// Put stores key in the default map in an ephemeral write transaction.
func (e *Env) Put(key, value []byte) error {
	return e.Update(func(t *Txn) error {
		m, err := e.facadeMap(t)
		if err != nil {
			return err
		}
		return m.Put(t, key, value, PutUpsert)
	})
}

// Delete removes key from the default map. Deleting an absent key is a
// no-op.
func (e *Env) Delete(key []byte) error {
	return e.Update(func(t *Txn) error {
		m, err := e.facadeMap(t)
		if err != nil {
			return err
		}
		return m.Delete(t, key, nil)
	})
}

// Len counts the entries of the default map.
func (e *Env) Len() (uint64, error) {
	var n uint64
	err := e.View(func(t *Txn) error {
		m, err := e.facadeMap(t)
		if err != nil {
			return err
		}
		st, err := m.Stat(t)
		if err != nil {
			return err
		}
		n = st.Entries
		return nil
	})
	return n, err
}

// Items iterates the default map in key order. The iterator owns a read
// transaction that ends when the iterator is closed.
func (e *Env) Items() (*Iterator, error) {
	t, err := e.Begin(TxnReadOnly)
	if err != nil {
		return nil, err
	}
	m, err := e.facadeMap(t)
	if err != nil {
		_ = t.Abort()
		return nil, err
	}
	c, err := t.Cursor(m)
	if err != nil {
		_ = t.Abort()
		return nil, err
	}
	it, err := c.Iter(nil, false, false)
	if err != nil {
		_ = t.Abort()
		return nil, err
	}
	it.ownCursor = true
	it.ownTxn = t
	return it, nil
}

// Stat returns statistics for the environment as a whole.
func (e *Env) Stat() (Stat, error) {
	h, err := e.handle()
	if err != nil {
		return Stat{}, err
	}
	st, rc := e.api.EnvStat(h, 0)
	if rc != capi.Success {
		return Stat{}, apiErr(e.api, rc)
	}
	return statFrom(st), nil
}

// Info returns runtime information about the environment.
func (e *Env) Info() (EnvInfo, error) {
	h, err := e.handle()
	if err != nil {
		return EnvInfo{}, err
	}
	info, rc := e.api.EnvInfo(h, 0)
	if rc != capi.Success {
		return EnvInfo{}, apiErr(e.api, rc)
	}
	return envInfoFrom(info), nil
}

// Sync flushes buffered data to the datafile.
func (e *Env) Sync(force, nonblock bool) error {
	h, err := e.handle()
	if err != nil {
		return err
	}
	return apiErr(e.api, e.api.EnvSync(h, force, nonblock))
}

// CopyTo writes a consistent copy of the environment to dest.
func (e *Env) CopyTo(dest string, flags CopyFlags) error {
	h, err := e.handle()
	if err != nil {
		return err
	}
	return apiErr(e.api, e.api.EnvCopy(h, dest, uint32(flags)))
}

// Path returns the path the environment was opened at, as the engine
// records it.
func (e *Env) Path() (string, error) {
	h, err := e.handle()
	if err != nil {
		return "", err
	}
	path, rc := e.api.EnvGetPath(h)
	if rc != capi.Success {
		return "", apiErr(e.api, rc)
	}
	return path, nil
}

// SetGeometry adjusts the datafile size bounds of an open environment.
func (e *Env) SetGeometry(g Geometry) error {
	h, err := e.handle()
	if err != nil {
		return err
	}
	return apiErr(e.api, e.api.EnvSetGeometry(h, g.internal()))
}

// SetOption adjusts a runtime engine option.
func (e *Env) SetOption(opt Option, value uint64) error {
	h, err := e.handle()
	if err != nil {
		return err
	}
	return apiErr(e.api, e.api.EnvSetOption(h, uint32(opt), value))
}

// GetOption reads a runtime engine option.
func (e *Env) GetOption(opt Option) (uint64, error) {
	h, err := e.handle()
	if err != nil {
		return 0, err
	}
	value, rc := e.api.EnvGetOption(h, uint32(opt))
	if rc != capi.Success {
		return 0, apiErr(e.api, rc)
	}
	return value, nil
}

// NewCursor creates an unbound cursor. It becomes usable after Bind
// attaches it to a transaction and map.
func (e *Env) NewCursor() *Cursor {
	h := e.api.CursorCreate(0)
	return &Cursor{api: e.api, h: h}
}

// SetUserData attaches an arbitrary host-side value to the environment.
// It never crosses the engine boundary; see SetRawUserCtx for the engine's
// own pointer slot.
func (e *Env) SetUserData(v any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userData = v
}

func (e *Env) UserData() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userData
}

// SetRawUserCtx stores an opaque pointer in the engine's per-environment
// context slot. Only useful for interop with native code.
func (e *Env) SetRawUserCtx(ctx uintptr) error {
	h, err := e.handle()
	if err != nil {
		return err
	}
	return apiErr(e.api, e.api.EnvSetUserCtx(h, ctx))
}

func (e *Env) RawUserCtx() (uintptr, error) {
	h, err := e.handle()
	if err != nil {
		return 0, err
	}
	return e.api.EnvGetUserCtx(h), nil
}

// MapNames lists the keys of the unnamed map, which is where the engine
// records every named map. Plain pairs stored in the unnamed map show up
// alongside the map records, as they do in the engine itself.
func (e *Env) MapNames() ([]string, error) {
	var names []string
	err := e.View(func(t *Txn) error {
		c, err := t.CursorNamed("")
		if err != nil {
			return err
		}
		it, err := c.Iter(nil, false, false)
		if err != nil {
			return err
		}
		for it.Next() {
			names = append(names, string(it.Key()))
		}
		return it.Err()
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// MaxMaps returns the named-map limit of the environment.
func (e *Env) MaxMaps() (uint64, error) {
	h, err := e.handle()
	if err != nil {
		return 0, err
	}
	n, rc := e.api.EnvGetMaxDBs(h)
	if rc != capi.Success {
		return 0, apiErr(e.api, rc)
	}
	return n, nil
}
