package native

import (
	"runtime"
	"unsafe"

	"github.com/keeldb/mdbx/internal/capi"
)

// engine is the libmdbx-backed implementation of capi.API. Byte spans the
// engine hands back live in call-scoped or mapped memory, so every returned
// slice is copied into Go-owned buffers before the method returns.
type engine struct{}

// iovec mirrors MDBX_val.
type iovec struct {
	base uintptr
	len  uintptr
}

func mkIovec(b []byte) iovec {
	if len(b) == 0 {
		return iovec{}
	}
	return iovec{base: uintptr(unsafe.Pointer(&b[0])), len: uintptr(len(b))}
}

// bytes copies the span out of engine memory.
func (io *iovec) bytes() []byte {
	if io.base == 0 || io.len == 0 {
		return nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(io.base)), io.len)
	out := make([]byte, io.len)
	copy(out, src)
	return out
}

func ptr[T any](v *T) uintptr {
	return uintptr(unsafe.Pointer(v))
}

func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Pointer(p + uintptr(n))) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}

func (engine) EnvCreate() (capi.EnvHandle, int) {
	var h uintptr
	rc := envCreate(ptr(&h))
	return capi.EnvHandle(h), int(rc)
}

func (engine) EnvOpen(env capi.EnvHandle, path string, flags uint32, mode uint32) int {
	return int(envOpen(uintptr(env), path, flags, mode))
}

func (engine) EnvClose(env capi.EnvHandle) int {
	return int(envClose(uintptr(env)))
}

func (engine) EnvSetGeometry(env capi.EnvHandle, g capi.Geometry) int {
	return int(envSetGeometry(uintptr(env),
		g.SizeLower, g.SizeNow, g.SizeUpper,
		g.GrowthStep, g.ShrinkThreshold, g.PageSize))
}

func (engine) EnvSetMaxReaders(env capi.EnvHandle, n uint64) int {
	return int(envSetMaxReaders(uintptr(env), uint32(n)))
}

func (engine) EnvSetMaxDBs(env capi.EnvHandle, n uint64) int {
	return int(envSetMaxDBs(uintptr(env), uint32(n)))
}

func (engine) EnvGetMaxDBs(env capi.EnvHandle) (uint64, int) {
	var n uint64
	rc := envGetMaxDBs(uintptr(env), ptr(&n))
	return n, int(rc)
}

func (engine) EnvSetOption(env capi.EnvHandle, option uint32, value uint64) int {
	return int(envSetOption(uintptr(env), option, value))
}

func (engine) EnvGetOption(env capi.EnvHandle, option uint32) (uint64, int) {
	var v uint64
	rc := envGetOption(uintptr(env), option, ptr(&v))
	return v, int(rc)
}

func (engine) EnvStat(env capi.EnvHandle, txn capi.TxnHandle) (capi.Stat, int) {
	var st capi.Stat
	rc := envStatEx(uintptr(env), uintptr(txn), ptr(&st), unsafe.Sizeof(st))
	runtime.KeepAlive(&st)
	return st, int(rc)
}

func (engine) EnvInfo(env capi.EnvHandle, txn capi.TxnHandle) (capi.EnvInfo, int) {
	var info capi.EnvInfo
	rc := envInfoEx(uintptr(env), uintptr(txn), ptr(&info), unsafe.Sizeof(info))
	runtime.KeepAlive(&info)
	return info, int(rc)
}

func (engine) EnvSync(env capi.EnvHandle, force, nonblock bool) int {
	return int(envSyncEx(uintptr(env), force, nonblock))
}

func (engine) EnvCopy(env capi.EnvHandle, dest string, flags uint32) int {
	return int(envCopy(uintptr(env), dest, flags))
}

func (engine) EnvGetPath(env capi.EnvHandle) (string, int) {
	var p uintptr
	rc := envGetPath(uintptr(env), ptr(&p))
	return goString(p), int(rc)
}

func (engine) EnvDelete(path string, mode uint32) int {
	return int(envDelete(path, mode))
}

func (engine) EnvSetUserCtx(env capi.EnvHandle, ctx uintptr) int {
	return int(envSetUserCtx(uintptr(env), ctx))
}

func (engine) EnvGetUserCtx(env capi.EnvHandle) uintptr {
	return envGetUserCtx(uintptr(env))
}

func (engine) TxnBegin(env capi.EnvHandle, parent capi.TxnHandle, flags uint32, ctx uintptr) (capi.TxnHandle, int) {
	var h uintptr
	rc := txnBegin(uintptr(env), uintptr(parent), flags, ptr(&h), ctx)
	return capi.TxnHandle(h), int(rc)
}

func (engine) TxnCommit(txn capi.TxnHandle) int {
	return int(txnCommit(uintptr(txn)))
}

func (engine) TxnCommitEx(txn capi.TxnHandle) (capi.CommitLatency, int) {
	var lat capi.CommitLatency
	rc := txnCommitEx(uintptr(txn), ptr(&lat))
	runtime.KeepAlive(&lat)
	return lat, int(rc)
}

func (engine) TxnAbort(txn capi.TxnHandle) int {
	return int(txnAbort(uintptr(txn)))
}

func (engine) TxnReset(txn capi.TxnHandle) int {
	return int(txnReset(uintptr(txn)))
}

func (engine) TxnRenew(txn capi.TxnHandle) int {
	return int(txnRenew(uintptr(txn)))
}

func (engine) TxnBreak(txn capi.TxnHandle) int {
	return int(txnBreak(uintptr(txn)))
}

func (engine) TxnID(txn capi.TxnHandle) uint64 {
	return txnID(uintptr(txn))
}

func (engine) TxnInfo(txn capi.TxnHandle, scanReaderLag bool) (capi.TxnInfo, int) {
	var info capi.TxnInfo
	rc := txnInfo(uintptr(txn), ptr(&info), scanReaderLag)
	runtime.KeepAlive(&info)
	return info, int(rc)
}

func (engine) TxnSetUserCtx(txn capi.TxnHandle, ctx uintptr) int {
	return int(txnSetUserCtx(uintptr(txn), ctx))
}

func (engine) TxnGetUserCtx(txn capi.TxnHandle) uintptr {
	return txnGetUserCtx(uintptr(txn))
}

func (engine) DBIOpen(txn capi.TxnHandle, name []byte, flags uint32) (capi.DBI, int) {
	// A zero-based iovec selects the unnamed (default) map.
	var dbi uint32
	nameIov := mkIovec(name)
	rc := dbiOpen(uintptr(txn), ptr(&nameIov), flags, ptr(&dbi))
	runtime.KeepAlive(name)
	return capi.DBI(dbi), int(rc)
}

func (engine) DBIStat(txn capi.TxnHandle, dbi capi.DBI) (capi.Stat, int) {
	var st capi.Stat
	rc := dbiStat(uintptr(txn), uint32(dbi), ptr(&st), unsafe.Sizeof(st))
	runtime.KeepAlive(&st)
	return st, int(rc)
}

func (engine) DBISequence(txn capi.TxnHandle, dbi capi.DBI, increment uint64) (uint64, int) {
	var prev uint64
	rc := dbiSequence(uintptr(txn), uint32(dbi), ptr(&prev), increment)
	return prev, int(rc)
}

func (engine) Get(txn capi.TxnHandle, dbi capi.DBI, key []byte) ([]byte, int) {
	keyIov := mkIovec(key)
	var valIov iovec
	rc := mdbxGet(uintptr(txn), uint32(dbi), ptr(&keyIov), ptr(&valIov))
	out := valIov.bytes()
	runtime.KeepAlive(key)
	return out, int(rc)
}

func (engine) Put(txn capi.TxnHandle, dbi capi.DBI, key, value []byte, flags uint32) int {
	keyIov := mkIovec(key)
	valIov := mkIovec(value)
	rc := mdbxPut(uintptr(txn), uint32(dbi), ptr(&keyIov), ptr(&valIov), flags)
	runtime.KeepAlive(key)
	runtime.KeepAlive(value)
	return int(rc)
}

func (engine) Del(txn capi.TxnHandle, dbi capi.DBI, key, value []byte) int {
	keyIov := mkIovec(key)
	var valPtr uintptr
	valIov := mkIovec(value)
	if value != nil {
		valPtr = ptr(&valIov)
	}
	rc := mdbxDel(uintptr(txn), uint32(dbi), ptr(&keyIov), valPtr)
	runtime.KeepAlive(key)
	runtime.KeepAlive(value)
	return int(rc)
}

func (engine) Replace(txn capi.TxnHandle, dbi capi.DBI, key, newValue []byte, flags uint32) ([]byte, int) {
	keyIov := mkIovec(key)
	newIov := mkIovec(newValue)
	var oldIov iovec
	rc := mdbxReplace(uintptr(txn), uint32(dbi), ptr(&keyIov), ptr(&newIov), ptr(&oldIov), flags)
	out := oldIov.bytes()
	runtime.KeepAlive(key)
	runtime.KeepAlive(newValue)
	return out, int(rc)
}

func (engine) Drop(txn capi.TxnHandle, dbi capi.DBI, del bool) int {
	return int(mdbxDrop(uintptr(txn), uint32(dbi), del))
}

func (engine) CursorOpen(txn capi.TxnHandle, dbi capi.DBI) (capi.CursorHandle, int) {
	var h uintptr
	rc := cursorOpen(uintptr(txn), uint32(dbi), ptr(&h))
	return capi.CursorHandle(h), int(rc)
}

func (engine) CursorCreate(ctx uintptr) capi.CursorHandle {
	return capi.CursorHandle(cursorCreate(ctx))
}

func (engine) CursorBind(txn capi.TxnHandle, cur capi.CursorHandle, dbi capi.DBI) int {
	return int(cursorBind(uintptr(txn), uintptr(cur), uint32(dbi)))
}

func (engine) CursorClose(cur capi.CursorHandle) {
	cursorClose(uintptr(cur))
}

func (engine) CursorCopy(src, dest capi.CursorHandle) int {
	return int(cursorCopy(uintptr(src), uintptr(dest)))
}

func (engine) CursorGet(cur capi.CursorHandle, key []byte, op uint32) ([]byte, []byte, int) {
	keyIov := mkIovec(key)
	var valIov iovec
	rc := cursorGet(uintptr(cur), ptr(&keyIov), ptr(&valIov), op)
	outKey := keyIov.bytes()
	outVal := valIov.bytes()
	runtime.KeepAlive(key)
	return outKey, outVal, int(rc)
}

func (engine) CursorPut(cur capi.CursorHandle, key, value []byte, flags uint32) int {
	keyIov := mkIovec(key)
	valIov := mkIovec(value)
	rc := cursorPut(uintptr(cur), ptr(&keyIov), ptr(&valIov), flags)
	runtime.KeepAlive(key)
	runtime.KeepAlive(value)
	return int(rc)
}

func (engine) CursorDel(cur capi.CursorHandle, flags uint32) int {
	return int(cursorDel(uintptr(cur), flags))
}

func (engine) CursorCount(cur capi.CursorHandle) (uint64, int) {
	var n uintptr
	rc := cursorCount(uintptr(cur), ptr(&n))
	return uint64(n), int(rc)
}

func (engine) CursorEOF(cur capi.CursorHandle) int {
	return int(cursorEOF(uintptr(cur)))
}

func (engine) CursorOnFirst(cur capi.CursorHandle) int {
	return int(cursorOnFirst(uintptr(cur)))
}

func (engine) CursorOnLast(cur capi.CursorHandle) int {
	return int(cursorOnLast(uintptr(cur)))
}

func (engine) CursorRenew(txn capi.TxnHandle, cur capi.CursorHandle) int {
	return int(cursorRenew(uintptr(txn), uintptr(cur)))
}

func (engine) CursorTxn(cur capi.CursorHandle) capi.TxnHandle {
	return capi.TxnHandle(cursorTxn(uintptr(cur)))
}

func (engine) CursorDBI(cur capi.CursorHandle) capi.DBI {
	return capi.DBI(cursorDBI(uintptr(cur)))
}

func (engine) CursorSetUserCtx(cur capi.CursorHandle, ctx uintptr) int {
	return int(cursorSetUserCtx(uintptr(cur), ctx))
}

func (engine) CursorGetUserCtx(cur capi.CursorHandle) uintptr {
	return cursorGetUserCtx(uintptr(cur))
}

func (engine) StrError(code int) string {
	return goString(liberr2str(int32(code)))
}
