package capi

import "golang.org/x/sys/unix"

// Engine result codes, values exactly as mdbx.h.
const (
	Success    = 0
	ResultTrue = -1

	KeyExist            = -30799
	NotFound            = -30798
	PageNotFound        = -30797
	Corrupted           = -30796
	Panic               = -30795
	VersionMismatch     = -30794
	Invalid             = -30793
	MapFull             = -30792
	DBsFull             = -30791
	ReadersFull         = -30790
	TxnFull             = -30788
	CursorFull          = -30787
	PageFull            = -30786
	UnableExtendMapsize = -30785
	Incompatible        = -30784
	BadRSlot            = -30783
	BadTxn              = -30782
	BadValSize          = -30781
	BadDBI              = -30780
	Problem             = -30779
	Busy                = -30778
	EMultival           = -30421
	EBadSign            = -30420
	WannaRecovery       = -30419
	EKeyMismatch        = -30418
	TooLarge            = -30417
	ThreadMismatch      = -30416
	TxnOverlapping      = -30415
)

// OS-inherited codes the engine reports through the same channel.
const (
	ENoData = int(unix.ENODATA)
	EInval  = int(unix.EINVAL)
	EAccess = int(unix.EACCES)
	ENoMem  = int(unix.ENOMEM)
	EROFS   = int(unix.EROFS)
	ENoSys  = int(unix.ENOSYS)
	EIO     = int(unix.EIO)
	EPerm   = int(unix.EPERM)
	EIntr   = int(unix.EINTR)
	ENoFile = int(unix.ENOENT)
)

// Describe returns the stable description for an engine-defined code, or ""
// for codes the engine inherits from the OS. memengine's StrError answers
// from here; the native engine answers from mdbx_liberr2str.
func Describe(code int) string {
	return errText[code]
}

var errText = map[int]string{
	Success:             "MDBX_SUCCESS: Successful",
	ResultTrue:          "MDBX_RESULT_TRUE: Successful with special meaning",
	KeyExist:            "MDBX_KEYEXIST: Key/data pair already exists",
	NotFound:            "MDBX_NOTFOUND: No matching key/data pair found",
	PageNotFound:        "MDBX_PAGE_NOTFOUND: Requested page not found",
	Corrupted:           "MDBX_CORRUPTED: Database is corrupted",
	Panic:               "MDBX_PANIC: Environment had fatal error",
	VersionMismatch:     "MDBX_VERSION_MISMATCH: DB version mismatch libmdbx",
	Invalid:             "MDBX_INVALID: File is not an MDBX file",
	MapFull:             "MDBX_MAP_FULL: Environment mapsize limit reached",
	DBsFull:             "MDBX_DBS_FULL: Too many DBI-handles (maxdbs reached)",
	ReadersFull:         "MDBX_READERS_FULL: Too many readers (maxreaders reached)",
	TxnFull:             "MDBX_TXN_FULL: Transaction has too many dirty pages",
	CursorFull:          "MDBX_CURSOR_FULL: Cursor stack limit reached",
	PageFull:            "MDBX_PAGE_FULL: Internal error - page has no more space",
	UnableExtendMapsize: "MDBX_UNABLE_EXTEND_MAPSIZE: Unable to extend mapping",
	Incompatible:        "MDBX_INCOMPATIBLE: Operation and DB incompatible",
	BadRSlot:            "MDBX_BAD_RSLOT: Invalid reuse of reader locktable slot",
	BadTxn:              "MDBX_BAD_TXN: Transaction is not valid for requested operation",
	BadValSize:          "MDBX_BAD_VALSIZE: Invalid size or alignment of key or data",
	BadDBI:              "MDBX_BAD_DBI: The specified DBI-handle is invalid",
	Problem:             "MDBX_PROBLEM: Unexpected internal error",
	Busy:                "MDBX_BUSY: Another write transaction is running",
	EMultival:           "MDBX_EMULTIVAL: The specified key has more than one associated value",
	EBadSign:            "MDBX_EBADSIGN: Bad signature of a runtime object",
	WannaRecovery:       "MDBX_WANNA_RECOVERY: Database should be recovered",
	EKeyMismatch:        "MDBX_EKEYMISMATCH: The given key value is mismatched to the current cursor position",
	TooLarge:            "MDBX_TOO_LARGE: Database is too large for current system",
	ThreadMismatch:      "MDBX_THREAD_MISMATCH: A thread has attempted to use a not owned object",
	TxnOverlapping:      "MDBX_TXN_OVERLAPPING: Overlapping read and write transactions",
}
