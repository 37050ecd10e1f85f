package runtime

import (
	"encoding/binary"

	jitruntime "github.com/wippyai/wasm-jit-runtime"
	"github.com/wippyai/wasm-jit-runtime/errors"
)

var _ jitruntime.Memory = (*InvokeContext)(nil)

// InvokeContext is what a native import sees while it runs: linear memory
// and the runtime's resolver. Globals and the call stack are not reachable
// from it.
//
// The context is only valid for the duration of the call.
type InvokeContext struct {
	rt *Runtime
}

// Memory returns the whole linear memory.
func (c *InvokeContext) Memory() []byte {
	return c.rt.memory
}

// Resolve looks up another native through the runtime's resolver.
func (c *InvokeContext) Resolve(module, field string) (NativeFunc, bool) {
	res, ok := c.rt.resolver.Get()
	if !ok {
		return nil, false
	}
	return res.Resolve(module, field)
}

func (c *InvokeContext) span(offset, length uint32, op string) ([]byte, error) {
	mem := c.rt.memory
	end := uint64(offset) + uint64(length)
	if end > uint64(len(mem)) {
		return nil, errors.New(errors.PhaseHost, errors.KindOutOfBounds).
			Detail("memory %s out of bounds: offset=%d, length=%d", op, offset, length).
			Build()
	}
	return mem[offset:end], nil
}

// Read returns a copy of length bytes at offset.
func (c *InvokeContext) Read(offset uint32, length uint32) ([]byte, error) {
	b, err := c.span(offset, length, "read")
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Write copies data into memory at offset.
func (c *InvokeContext) Write(offset uint32, data []byte) error {
	b, err := c.span(offset, uint32(len(data)), "write")
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

func (c *InvokeContext) ReadU8(offset uint32) (uint8, error) {
	b, err := c.span(offset, 1, "read")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (c *InvokeContext) ReadU16(offset uint32) (uint16, error) {
	b, err := c.span(offset, 2, "read")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (c *InvokeContext) ReadU32(offset uint32) (uint32, error) {
	b, err := c.span(offset, 4, "read")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (c *InvokeContext) ReadU64(offset uint32) (uint64, error) {
	b, err := c.span(offset, 8, "read")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *InvokeContext) WriteU8(offset uint32, value uint8) error {
	b, err := c.span(offset, 1, "write")
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (c *InvokeContext) WriteU16(offset uint32, value uint16) error {
	b, err := c.span(offset, 2, "write")
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, value)
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (c *InvokeContext) WriteU32(offset uint32, value uint32) error {
	b, err := c.span(offset, 4, "write")
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, value)
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (c *InvokeContext) WriteU64(offset uint32, value uint64) error {
	b, err := c.span(offset, 8, "write")
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, value)
	return nil
}
