// Package capi is the boundary with the MDBX storage engine. It mirrors the
// engine's C handle API one function per method: every call is a thin, typed
// pass-through that reports the engine's numeric result code unchanged.
//
// Two implementations exist: native (libmdbx loaded at runtime via purego)
// and memengine (an in-process engine used by the test suite). Everything
// above this package speaks only in terms of API, handles and result codes.
package capi

// Opaque engine handles. The engine owns the memory behind them; this side
// only stores and passes them back.
type (
	EnvHandle    uintptr
	TxnHandle    uintptr
	CursorHandle uintptr
)

// DBI is an integer handle to a named map. It is only meaningful for the
// environment that produced it. The engine aliases DBI values across
// concurrent opens, so they are never closed individually.
type DBI uint32

// API is the full engine call surface used by the access layer. All methods
// are synchronous and blocking. Result codes are returned verbatim; Success
// and ResultTrue are the only non-error codes.
type API interface {
	// Environment lifecycle and configuration.
	EnvCreate() (EnvHandle, int)
	EnvOpen(env EnvHandle, path string, flags uint32, mode uint32) int
	EnvClose(env EnvHandle) int
	EnvSetGeometry(env EnvHandle, g Geometry) int
	EnvSetMaxReaders(env EnvHandle, n uint64) int
	EnvSetMaxDBs(env EnvHandle, n uint64) int
	EnvGetMaxDBs(env EnvHandle) (uint64, int)
	EnvSetOption(env EnvHandle, option uint32, value uint64) int
	EnvGetOption(env EnvHandle, option uint32) (uint64, int)
	EnvStat(env EnvHandle, txn TxnHandle) (Stat, int)
	EnvInfo(env EnvHandle, txn TxnHandle) (EnvInfo, int)
	EnvSync(env EnvHandle, force, nonblock bool) int
	EnvCopy(env EnvHandle, dest string, flags uint32) int
	EnvGetPath(env EnvHandle) (string, int)
	EnvDelete(path string, mode uint32) int
	EnvSetUserCtx(env EnvHandle, ctx uintptr) int
	EnvGetUserCtx(env EnvHandle) uintptr

	// Transactions. TxnBegin blocks on the single-writer lock for write
	// transactions unless the try flag is set.
	TxnBegin(env EnvHandle, parent TxnHandle, flags uint32, ctx uintptr) (TxnHandle, int)
	TxnCommit(txn TxnHandle) int
	TxnCommitEx(txn TxnHandle) (CommitLatency, int)
	TxnAbort(txn TxnHandle) int
	TxnReset(txn TxnHandle) int
	TxnRenew(txn TxnHandle) int
	TxnBreak(txn TxnHandle) int
	TxnID(txn TxnHandle) uint64
	TxnInfo(txn TxnHandle, scanReaderLag bool) (TxnInfo, int)
	TxnSetUserCtx(txn TxnHandle, ctx uintptr) int
	TxnGetUserCtx(txn TxnHandle) uintptr

	// Named maps.
	DBIOpen(txn TxnHandle, name []byte, flags uint32) (DBI, int)
	DBIStat(txn TxnHandle, dbi DBI) (Stat, int)
	DBISequence(txn TxnHandle, dbi DBI, increment uint64) (uint64, int)

	// Data operations. Returned byte slices are owned copies, valid after
	// the call; a nil value for Del means "any value under the key".
	Get(txn TxnHandle, dbi DBI, key []byte) ([]byte, int)
	Put(txn TxnHandle, dbi DBI, key, value []byte, flags uint32) int
	Del(txn TxnHandle, dbi DBI, key, value []byte) int
	Replace(txn TxnHandle, dbi DBI, key, newValue []byte, flags uint32) ([]byte, int)
	Drop(txn TxnHandle, dbi DBI, del bool) int

	// Cursors.
	CursorOpen(txn TxnHandle, dbi DBI) (CursorHandle, int)
	CursorCreate(ctx uintptr) CursorHandle
	CursorBind(txn TxnHandle, cur CursorHandle, dbi DBI) int
	CursorClose(cur CursorHandle)
	CursorCopy(src, dest CursorHandle) int
	CursorGet(cur CursorHandle, key []byte, op uint32) (k, v []byte, rc int)
	CursorPut(cur CursorHandle, key, value []byte, flags uint32) int
	CursorDel(cur CursorHandle, flags uint32) int
	CursorCount(cur CursorHandle) (uint64, int)
	CursorEOF(cur CursorHandle) int
	CursorOnFirst(cur CursorHandle) int
	CursorOnLast(cur CursorHandle) int
	CursorRenew(txn TxnHandle, cur CursorHandle) int
	CursorTxn(cur CursorHandle) TxnHandle
	CursorDBI(cur CursorHandle) DBI
	CursorSetUserCtx(cur CursorHandle, ctx uintptr) int
	CursorGetUserCtx(cur CursorHandle) uintptr

	// StrError returns the engine's stable description for a result code,
	// or "" when the code is not an engine code (OS-inherited errno).
	StrError(code int) string
}
