// Package native implements the capi.API boundary by loading libmdbx at
// runtime with purego and registering one Go function per C symbol.
package native

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/keeldb/mdbx/internal/capi"
)

// Note: all pointer parameters are declared uintptr because purego on ARM64
// doesn't support slices.
var (
	envCreate        func(out uintptr) int32
	envOpen          func(env uintptr, path string, flags uint32, mode uint32) int32
	envClose         func(env uintptr) int32
	envSetGeometry   func(env uintptr, sizeLower, sizeNow, sizeUpper, growthStep, shrinkThreshold, pageSize int64) int32
	envSetMaxReaders func(env uintptr, readers uint32) int32
	envSetMaxDBs     func(env uintptr, dbs uint32) int32
	envGetMaxDBs     func(env uintptr, out uintptr) int32
	envSetOption     func(env uintptr, option uint32, value uint64) int32
	envGetOption     func(env uintptr, option uint32, out uintptr) int32
	envStatEx        func(env, txn, out uintptr, size uintptr) int32
	envInfoEx        func(env, txn, out uintptr, size uintptr) int32
	envSyncEx        func(env uintptr, force, nonblock bool) int32
	envCopy          func(env uintptr, dest string, flags uint32) int32
	envGetPath       func(env uintptr, out uintptr) int32
	envDelete        func(path string, mode uint32) int32
	envSetUserCtx    func(env uintptr, ctx uintptr) int32
	envGetUserCtx    func(env uintptr) uintptr

	txnBegin      func(env, parent uintptr, flags uint32, out uintptr, ctx uintptr) int32
	txnCommit     func(txn uintptr) int32
	txnCommitEx   func(txn, latency uintptr) int32
	txnAbort      func(txn uintptr) int32
	txnReset      func(txn uintptr) int32
	txnRenew      func(txn uintptr) int32
	txnBreak      func(txn uintptr) int32
	txnID         func(txn uintptr) uint64
	txnInfo       func(txn, out uintptr, scanReaderLag bool) int32
	txnSetUserCtx func(txn uintptr, ctx uintptr) int32
	txnGetUserCtx func(txn uintptr) uintptr

	dbiOpen     func(txn uintptr, name uintptr, flags uint32, out uintptr) int32
	dbiStat     func(txn uintptr, dbi uint32, out uintptr, size uintptr) int32
	dbiSequence func(txn uintptr, dbi uint32, out uintptr, increment uint64) int32

	mdbxGet     func(txn uintptr, dbi uint32, key, val uintptr) int32
	mdbxPut     func(txn uintptr, dbi uint32, key, val uintptr, flags uint32) int32
	mdbxDel     func(txn uintptr, dbi uint32, key, val uintptr) int32
	mdbxReplace func(txn uintptr, dbi uint32, key, newVal, oldVal uintptr, flags uint32) int32
	mdbxDrop    func(txn uintptr, dbi uint32, del bool) int32

	cursorOpen       func(txn uintptr, dbi uint32, out uintptr) int32
	cursorCreate     func(ctx uintptr) uintptr
	cursorBind       func(txn, cur uintptr, dbi uint32) int32
	cursorClose      func(cur uintptr)
	cursorCopy       func(src, dest uintptr) int32
	cursorGet        func(cur, key, val uintptr, op uint32) int32
	cursorPut        func(cur, key, val uintptr, flags uint32) int32
	cursorDel        func(cur uintptr, flags uint32) int32
	cursorCount      func(cur, out uintptr) int32
	cursorEOF        func(cur uintptr) int32
	cursorOnFirst    func(cur uintptr) int32
	cursorOnLast     func(cur uintptr) int32
	cursorRenew      func(txn, cur uintptr) int32
	cursorTxn        func(cur uintptr) uintptr
	cursorDBI        func(cur uintptr) uint32
	cursorSetUserCtx func(cur uintptr, ctx uintptr) int32
	cursorGetUserCtx func(cur uintptr) uintptr

	liberr2str func(code int32) uintptr
)

var (
	loadOnce sync.Once
	loadErr  error
)

// Load opens the engine's shared library and returns the call surface. The
// MDBX_LIBRARY environment variable overrides the platform default name, so
// the library may live anywhere the dynamic loader can't see on its own.
func Load() (capi.API, error) {
	loadOnce.Do(func() {
		path := os.Getenv("MDBX_LIBRARY")
		if path == "" {
			path = libraryName()
		}
		lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			loadErr = fmt.Errorf("load mdbx library %q: %w", path, err)
			return
		}
		register(lib)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return engine{}, nil
}

func libraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libmdbx.dylib"
	case "windows":
		return "mdbx.dll"
	default:
		return "libmdbx.so"
	}
}

func register(lib uintptr) {
	purego.RegisterLibFunc(&envCreate, lib, "mdbx_env_create")
	purego.RegisterLibFunc(&envOpen, lib, "mdbx_env_open")
	purego.RegisterLibFunc(&envClose, lib, "mdbx_env_close")
	purego.RegisterLibFunc(&envSetGeometry, lib, "mdbx_env_set_geometry")
	purego.RegisterLibFunc(&envSetMaxReaders, lib, "mdbx_env_set_maxreaders")
	purego.RegisterLibFunc(&envSetMaxDBs, lib, "mdbx_env_set_maxdbs")
	purego.RegisterLibFunc(&envGetMaxDBs, lib, "mdbx_env_get_maxdbs")
	purego.RegisterLibFunc(&envSetOption, lib, "mdbx_env_set_option")
	purego.RegisterLibFunc(&envGetOption, lib, "mdbx_env_get_option")
	purego.RegisterLibFunc(&envStatEx, lib, "mdbx_env_stat_ex")
	purego.RegisterLibFunc(&envInfoEx, lib, "mdbx_env_info_ex")
	purego.RegisterLibFunc(&envSyncEx, lib, "mdbx_env_sync_ex")
	purego.RegisterLibFunc(&envCopy, lib, "mdbx_env_copy")
	purego.RegisterLibFunc(&envGetPath, lib, "mdbx_env_get_path")
	purego.RegisterLibFunc(&envDelete, lib, "mdbx_env_delete")
	purego.RegisterLibFunc(&envSetUserCtx, lib, "mdbx_env_set_userctx")
	purego.RegisterLibFunc(&envGetUserCtx, lib, "mdbx_env_get_userctx")

	purego.RegisterLibFunc(&txnBegin, lib, "mdbx_txn_begin_ex")
	purego.RegisterLibFunc(&txnCommit, lib, "mdbx_txn_commit")
	purego.RegisterLibFunc(&txnCommitEx, lib, "mdbx_txn_commit_ex")
	purego.RegisterLibFunc(&txnAbort, lib, "mdbx_txn_abort")
	purego.RegisterLibFunc(&txnReset, lib, "mdbx_txn_reset")
	purego.RegisterLibFunc(&txnRenew, lib, "mdbx_txn_renew")
	purego.RegisterLibFunc(&txnBreak, lib, "mdbx_txn_break")
	purego.RegisterLibFunc(&txnID, lib, "mdbx_txn_id")
	purego.RegisterLibFunc(&txnInfo, lib, "mdbx_txn_info")
	purego.RegisterLibFunc(&txnSetUserCtx, lib, "mdbx_txn_set_userctx")
	purego.RegisterLibFunc(&txnGetUserCtx, lib, "mdbx_txn_get_userctx")

	purego.RegisterLibFunc(&dbiOpen, lib, "mdbx_dbi_open2")
	purego.RegisterLibFunc(&dbiStat, lib, "mdbx_dbi_stat")
	purego.RegisterLibFunc(&dbiSequence, lib, "mdbx_dbi_sequence")

	purego.RegisterLibFunc(&mdbxGet, lib, "mdbx_get")
	purego.RegisterLibFunc(&mdbxPut, lib, "mdbx_put")
	purego.RegisterLibFunc(&mdbxDel, lib, "mdbx_del")
	purego.RegisterLibFunc(&mdbxReplace, lib, "mdbx_replace")
	purego.RegisterLibFunc(&mdbxDrop, lib, "mdbx_drop")

	purego.RegisterLibFunc(&cursorOpen, lib, "mdbx_cursor_open")
	purego.RegisterLibFunc(&cursorCreate, lib, "mdbx_cursor_create")
	purego.RegisterLibFunc(&cursorBind, lib, "mdbx_cursor_bind")
	purego.RegisterLibFunc(&cursorClose, lib, "mdbx_cursor_close")
	purego.RegisterLibFunc(&cursorCopy, lib, "mdbx_cursor_copy")
	purego.RegisterLibFunc(&cursorGet, lib, "mdbx_cursor_get")
	purego.RegisterLibFunc(&cursorPut, lib, "mdbx_cursor_put")
	purego.RegisterLibFunc(&cursorDel, lib, "mdbx_cursor_del")
	purego.RegisterLibFunc(&cursorCount, lib, "mdbx_cursor_count")
	purego.RegisterLibFunc(&cursorEOF, lib, "mdbx_cursor_eof")
	purego.RegisterLibFunc(&cursorOnFirst, lib, "mdbx_cursor_on_first")
	purego.RegisterLibFunc(&cursorOnLast, lib, "mdbx_cursor_on_last")
	purego.RegisterLibFunc(&cursorRenew, lib, "mdbx_cursor_renew")
	purego.RegisterLibFunc(&cursorTxn, lib, "mdbx_cursor_txn")
	purego.RegisterLibFunc(&cursorDBI, lib, "mdbx_cursor_dbi")
	purego.RegisterLibFunc(&cursorSetUserCtx, lib, "mdbx_cursor_set_userctx")
	purego.RegisterLibFunc(&cursorGetUserCtx, lib, "mdbx_cursor_get_userctx")

	purego.RegisterLibFunc(&liberr2str, lib, "mdbx_liberr2str")
}
