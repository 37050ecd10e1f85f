package runtime

import (
	goruntime "runtime"
	"unsafe"
)

// ABIVersion identifies the ABIInfo layout. Code generators compare it
// against the version they were built for.
const ABIVersion = 1

// ABIInfo is the record generated code reads to find linear memory and the
// globals. Its address is stable for the lifetime of a Runtime while its
// fields are rewritten on every memory growth, so generated code may cache
// the block's address but must reload MemBase after anything that can grow
// memory.
type ABIInfo struct {
	MemBase    uintptr
	MemLen     uintptr
	GlobalBase uintptr // 0 when the module has no globals
}

// Field offsets within ABIInfo.
const (
	OffsetMemBase    = unsafe.Offsetof(ABIInfo{}.MemBase)
	OffsetMemLen     = unsafe.Offsetof(ABIInfo{}.MemLen)
	OffsetGlobalBase = unsafe.Offsetof(ABIInfo{}.GlobalBase)
)

// pins keeps every address published through ABIInfo from being moved or
// collected. Memory is pinned separately so growth can release the old
// buffer alone.
type pins struct {
	fixed  goruntime.Pinner // ABIInfo and globals
	memory goruntime.Pinner
}

func (p *pins) release() {
	p.memory.Unpin()
	p.fixed.Unpin()
}

// publish rewrites the info block from the current memory and globals.
func (r *Runtime) publish() {
	r.abi.MemBase = uintptr(unsafe.Pointer(unsafe.SliceData(r.memory)))
	r.abi.MemLen = uintptr(len(r.memory))
	if len(r.globals) > 0 {
		r.abi.GlobalBase = uintptr(unsafe.Pointer(&r.globals[0]))
	} else {
		r.abi.GlobalBase = 0
	}
}

// ABIInfo returns the info block. The pointer stays valid until Close.
func (r *Runtime) ABIInfo() *ABIInfo {
	return r.abi
}

// ABIInfoAddr returns the address of the info block for generated code.
func (r *Runtime) ABIInfoAddr() uintptr {
	return uintptr(unsafe.Pointer(r.abi))
}
