package capi

// Geometry carries the six datafile size parameters of mdbx_env_set_geometry.
// A value of -1 keeps the engine's current setting.
type Geometry struct {
	SizeLower       int64
	SizeNow         int64
	SizeUpper       int64
	GrowthStep      int64
	ShrinkThreshold int64
	PageSize        int64
}

// DefaultGeometry returns a Geometry that leaves every parameter unchanged.
func DefaultGeometry() Geometry {
	return Geometry{-1, -1, -1, -1, -1, -1}
}

// Stat mirrors MDBX_stat: statistics for the whole environment or one map.
type Stat struct {
	PSize         uint32
	Depth         uint32
	BranchPages   uint64
	LeafPages     uint64
	OverflowPages uint64
	Entries       uint64
	ModTxnID      uint64
}

// BootID is the x/y pair MDBX uses to identify one machine boot.
type BootID struct {
	X, Y uint64
}

// GeoInfo mirrors the mi_geo block of MDBX_envinfo.
type GeoInfo struct {
	Lower   uint64
	Upper   uint64
	Current uint64
	Shrink  uint64
	Grow    uint64
}

// EnvInfo mirrors MDBX_envinfo. Field order and widths match the C layout so
// the native engine can fill it in place.
type EnvInfo struct {
	Geo                     GeoInfo
	MapSize                 uint64
	LastPgNo                uint64
	RecentTxnID             uint64
	LatterReaderTxnID       uint64
	SelfLatterReaderTxnID   uint64
	Meta0TxnID, Meta0Sign   uint64
	Meta1TxnID, Meta1Sign   uint64
	Meta2TxnID, Meta2Sign   uint64
	MaxReaders              uint32
	NumReaders              uint32
	DXBPageSize             uint32
	SysPageSize             uint32
	BootIDCurrent           BootID
	BootIDMeta0             BootID
	BootIDMeta1             BootID
	BootIDMeta2             BootID
	UnsyncVolume            uint64
	AutosyncThreshold       uint64
	SinceSync16dot16        uint32
	AutosyncPeriod16dot16   uint32
	SinceReaderCheck16dot16 uint32
	Mode                    uint32
}

// CommitLatency mirrors MDBX_commit_latency: per-stage commit durations in
// 1/65536 second units.
type CommitLatency struct {
	Preparation uint32
	GC          uint32
	Audit       uint32
	Write       uint32
	Sync        uint32
	Ending      uint32
	Whole       uint32
}

// TxnInfo mirrors MDBX_txn_info.
type TxnInfo struct {
	ID             uint64
	ReaderLag      uint64
	SpaceUsed      uint64
	SpaceLimitSoft uint64
	SpaceLimitHard uint64
	SpaceRetired   uint64
	SpaceLeftover  uint64
	SpaceDirty     uint64
}
