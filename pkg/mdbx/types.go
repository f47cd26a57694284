package mdbx

import "github.com/keeldb/mdbx/internal/capi"

// Geometry bounds the datafile size. A field left at -1 keeps the engine's
// current setting; NewGeometry returns a value with every field at -1.
type Geometry struct {
	SizeLower       int64
	SizeNow         int64
	SizeUpper       int64
	GrowthStep      int64
	ShrinkThreshold int64
	PageSize        int64
}

func NewGeometry() Geometry {
	return Geometry{-1, -1, -1, -1, -1, -1}
}

func (g Geometry) internal() capi.Geometry {
	return capi.Geometry{
		SizeLower:       g.SizeLower,
		SizeNow:         g.SizeNow,
		SizeUpper:       g.SizeUpper,
		GrowthStep:      g.GrowthStep,
		ShrinkThreshold: g.ShrinkThreshold,
		PageSize:        g.PageSize,
	}
}

// Stat describes the B-tree behind the whole environment or one map.
type Stat struct {
	PageSize      uint32
	Depth         uint32
	BranchPages   uint64
	LeafPages     uint64
	OverflowPages uint64
	Entries       uint64
	ModTxnID      uint64
}

func statFrom(s capi.Stat) Stat {
	return Stat{
		PageSize:      s.PSize,
		Depth:         s.Depth,
		BranchPages:   s.BranchPages,
		LeafPages:     s.LeafPages,
		OverflowPages: s.OverflowPages,
		Entries:       s.Entries,
		ModTxnID:      s.ModTxnID,
	}
}

// EnvInfo is a condensed view of the engine's environment information.
type EnvInfo struct {
	MapSize      uint64
	GeoLower     uint64
	GeoUpper     uint64
	GeoCurrent   uint64
	LastPageNo   uint64
	RecentTxnID  uint64
	MaxReaders   uint32
	NumReaders   uint32
	PageSize     uint32
	SysPageSize  uint32
	UnsyncVolume uint64
	Mode         uint32
}

func envInfoFrom(i capi.EnvInfo) EnvInfo {
	return EnvInfo{
		MapSize:      i.MapSize,
		GeoLower:     i.Geo.Lower,
		GeoUpper:     i.Geo.Upper,
		GeoCurrent:   i.Geo.Current,
		LastPageNo:   i.LastPgNo,
		RecentTxnID:  i.RecentTxnID,
		MaxReaders:   i.MaxReaders,
		NumReaders:   i.NumReaders,
		PageSize:     i.DXBPageSize,
		SysPageSize:  i.SysPageSize,
		UnsyncVolume: i.UnsyncVolume,
		Mode:         i.Mode,
	}
}

// TxnInfo describes one transaction's footprint.
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

func txnInfoFrom(i capi.TxnInfo) TxnInfo {
	return TxnInfo{
		ID:             i.ID,
		ReaderLag:      i.ReaderLag,
		SpaceUsed:      i.SpaceUsed,
		SpaceLimitSoft: i.SpaceLimitSoft,
		SpaceLimitHard: i.SpaceLimitHard,
		SpaceRetired:   i.SpaceRetired,
		SpaceLeftover:  i.SpaceLeftover,
		SpaceDirty:     i.SpaceDirty,
	}
}

// CommitLatency breaks one commit into per-stage durations, in units of
// 1/65536 of a second.
type CommitLatency struct {
	Preparation uint32
	GC          uint32
	Audit       uint32
	Write       uint32
	Sync        uint32
	Ending      uint32
	Whole       uint32
}

func latencyFrom(l capi.CommitLatency) CommitLatency {
	return CommitLatency{
		Preparation: l.Preparation,
		GC:          l.GC,
		Audit:       l.Audit,
		Write:       l.Write,
		Sync:        l.Sync,
		Ending:      l.Ending,
		Whole:       l.Whole,
	}
}
