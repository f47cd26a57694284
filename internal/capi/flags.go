package capi

// Environment flags.
const (
	EnvDefaults      uint32 = 0
	EnvNoSubdir      uint32 = 0x4000
	EnvReadOnly      uint32 = 0x20000
	EnvExclusive     uint32 = 0x400000
	EnvAccede        uint32 = 0x40000000
	EnvWriteMap      uint32 = 0x80000
	EnvNoTLS         uint32 = 0x200000
	EnvNoReadAhead   uint32 = 0x800000
	EnvNoMemInit     uint32 = 0x1000000
	EnvCoalesce      uint32 = 0x2000000
	EnvLIFOReclaim   uint32 = 0x4000000
	EnvPagePerturb   uint32 = 0x8000000
	EnvSyncDurable   uint32 = 0
	EnvNoMetaSync    uint32 = 0x40000
	EnvSafeNoSync    uint32 = 0x10000
	EnvUtterlyNoSync uint32 = EnvSafeNoSync | 0x100000
)

// Transaction flags.
const (
	TxnReadWrite  uint32 = 0
	TxnReadOnly   uint32 = EnvReadOnly
	TxnRDOPrepare uint32 = EnvReadOnly | EnvNoMemInit
	TxnTry        uint32 = 0x10000000
	TxnNoMetaSync uint32 = EnvNoMetaSync
	TxnNoSync     uint32 = EnvSafeNoSync
)

// Named-map (DBI) flags.
const (
	DBDefaults   uint32 = 0
	DBReverseKey uint32 = 0x02
	DBDupSort    uint32 = 0x04
	DBIntegerKey uint32 = 0x08
	DBDupFixed   uint32 = 0x10
	DBIntegerDup uint32 = 0x20
	DBReverseDup uint32 = 0x40
	DBCreate     uint32 = 0x40000
	DBAccede     uint32 = EnvAccede
)

// Put flags.
const (
	PutUpsert      uint32 = 0
	PutNoOverwrite uint32 = 0x10
	PutNoDupData   uint32 = 0x20
	PutCurrent     uint32 = 0x40
	PutAllDups     uint32 = 0x80
	PutReserve     uint32 = 0x10000
	PutAppend      uint32 = 0x20000
	PutAppendDup   uint32 = 0x40000
	PutMultiple    uint32 = 0x80000
)

// Environment copy modes.
const (
	CopyDefaults     uint32 = 0
	CopyCompact      uint32 = 1
	CopyForceDynamic uint32 = 2
)

// Environment delete modes.
const (
	DeleteJust          uint32 = 0
	DeleteEnsureUnused  uint32 = 1
	DeleteWaitForUnused uint32 = 2
)

// Runtime options for EnvSetOption/EnvGetOption.
const (
	OptMaxDB                        uint32 = 0
	OptMaxReaders                   uint32 = 1
	OptSyncBytes                    uint32 = 2
	OptSyncPeriod                   uint32 = 3
	OptRPAugmentLimit               uint32 = 4
	OptLooseLimit                   uint32 = 5
	OptDPReserveLimit               uint32 = 6
	OptTxnDPLimit                   uint32 = 7
	OptTxnDPInitial                 uint32 = 8
	OptSpillMaxDenominator          uint32 = 9
	OptSpillMinDenominator          uint32 = 10
	OptSpillParent4ChildDenominator uint32 = 11
)
