package mdbx

import "github.com/keeldb/mdbx/internal/capi"

// EnvFlags select the durability and mapping mode of an environment.
type EnvFlags uint32

const (
	EnvDefaults      = EnvFlags(capi.EnvDefaults)
	EnvNoSubdir      = EnvFlags(capi.EnvNoSubdir)
	EnvReadOnly      = EnvFlags(capi.EnvReadOnly)
	EnvExclusive     = EnvFlags(capi.EnvExclusive)
	EnvAccede        = EnvFlags(capi.EnvAccede)
	EnvWriteMap      = EnvFlags(capi.EnvWriteMap)
	EnvNoTLS         = EnvFlags(capi.EnvNoTLS)
	EnvNoReadAhead   = EnvFlags(capi.EnvNoReadAhead)
	EnvNoMemInit     = EnvFlags(capi.EnvNoMemInit)
	EnvCoalesce      = EnvFlags(capi.EnvCoalesce)
	EnvLIFOReclaim   = EnvFlags(capi.EnvLIFOReclaim)
	EnvSyncDurable   = EnvFlags(capi.EnvSyncDurable)
	EnvNoMetaSync    = EnvFlags(capi.EnvNoMetaSync)
	EnvSafeNoSync    = EnvFlags(capi.EnvSafeNoSync)
	EnvUtterlyNoSync = EnvFlags(capi.EnvUtterlyNoSync)
)

// TxnFlags select the kind of transaction to begin.
type TxnFlags uint32

const (
	TxnReadWrite = TxnFlags(capi.TxnReadWrite)
	TxnReadOnly  = TxnFlags(capi.TxnReadOnly)
	// TxnTry makes a write begin fail with a busy error instead of blocking
	// on the single-writer lock.
	TxnTry        = TxnFlags(capi.TxnTry)
	TxnNoMetaSync = TxnFlags(capi.TxnNoMetaSync)
	TxnNoSync     = TxnFlags(capi.TxnNoSync)
)

// MapFlags configure a named map when it is opened or created.
type MapFlags uint32

const (
	MapDefaults   = MapFlags(capi.DBDefaults)
	MapReverseKey = MapFlags(capi.DBReverseKey)
	// MapDupSort allows multiple sorted values under one key.
	MapDupSort    = MapFlags(capi.DBDupSort)
	MapIntegerKey = MapFlags(capi.DBIntegerKey)
	MapDupFixed   = MapFlags(capi.DBDupFixed)
	MapIntegerDup = MapFlags(capi.DBIntegerDup)
	MapReverseDup = MapFlags(capi.DBReverseDup)
	MapCreate     = MapFlags(capi.DBCreate)
	MapAccede     = MapFlags(capi.DBAccede)
)

// PutFlags tune the behavior of put operations.
type PutFlags uint32

const (
	PutUpsert      = PutFlags(capi.PutUpsert)
	PutNoOverwrite = PutFlags(capi.PutNoOverwrite)
	PutNoDupData   = PutFlags(capi.PutNoDupData)
	PutCurrent     = PutFlags(capi.PutCurrent)
	PutAllDups     = PutFlags(capi.PutAllDups)
	PutAppend      = PutFlags(capi.PutAppend)
	PutAppendDup   = PutFlags(capi.PutAppendDup)
)

// CursorOp is a cursor positioning operation.
type CursorOp uint32

const (
	OpFirst         = CursorOp(capi.OpFirst)
	OpFirstDup      = CursorOp(capi.OpFirstDup)
	OpGetBoth       = CursorOp(capi.OpGetBoth)
	OpGetBothRange  = CursorOp(capi.OpGetBothRange)
	OpGetCurrent    = CursorOp(capi.OpGetCurrent)
	OpLast          = CursorOp(capi.OpLast)
	OpLastDup       = CursorOp(capi.OpLastDup)
	OpNext          = CursorOp(capi.OpNext)
	OpNextDup       = CursorOp(capi.OpNextDup)
	OpNextNoDup     = CursorOp(capi.OpNextNoDup)
	OpPrev          = CursorOp(capi.OpPrev)
	OpPrevDup       = CursorOp(capi.OpPrevDup)
	OpPrevNoDup     = CursorOp(capi.OpPrevNoDup)
	OpSet           = CursorOp(capi.OpSet)
	OpSetKey        = CursorOp(capi.OpSetKey)
	OpSetRange      = CursorOp(capi.OpSetRange)
	OpSetLowerBound = CursorOp(capi.OpSetLowerBound)
	OpSetUpperBound = CursorOp(capi.OpSetUpperBound)
)

// CopyFlags tune environment-to-file copies.
type CopyFlags uint32

const (
	CopyDefaults = CopyFlags(capi.CopyDefaults)
	CopyCompact  = CopyFlags(capi.CopyCompact)
)

// DeleteMode selects how Remove treats an environment that may be in use.
type DeleteMode uint32

const (
	DeleteJust          = DeleteMode(capi.DeleteJust)
	DeleteEnsureUnused  = DeleteMode(capi.DeleteEnsureUnused)
	DeleteWaitForUnused = DeleteMode(capi.DeleteWaitForUnused)
)

// Option is a runtime-tunable environment option.
type Option uint32

const (
	OptMaxMaps    = Option(capi.OptMaxDB)
	OptMaxReaders = Option(capi.OptMaxReaders)
	OptSyncBytes  = Option(capi.OptSyncBytes)
	OptSyncPeriod = Option(capi.OptSyncPeriod)
)
