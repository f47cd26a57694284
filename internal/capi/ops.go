package capi

// Cursor positioning operations, values exactly as mdbx.h. The *Dup ops are
// only meaningful on maps opened with the dupsort flag.
const (
	OpFirst         uint32 = 0
	OpFirstDup      uint32 = 1
	OpGetBoth       uint32 = 2
	OpGetBothRange  uint32 = 3
	OpGetCurrent    uint32 = 4
	OpGetMultiple   uint32 = 5
	OpLast          uint32 = 6
	OpLastDup       uint32 = 7
	OpNext          uint32 = 8
	OpNextDup       uint32 = 9
	OpNextMultiple  uint32 = 10
	OpNextNoDup     uint32 = 11
	OpPrev          uint32 = 12
	OpPrevDup       uint32 = 13
	OpPrevNoDup     uint32 = 14
	OpSet           uint32 = 15
	OpSetKey        uint32 = 16
	OpSetRange      uint32 = 17
	OpPrevMultiple  uint32 = 18
	OpSetLowerBound uint32 = 19
	OpSetUpperBound uint32 = 20
)
