package wasm

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-jit-runtime/errors"
)

// The module encoding is private to this package: canonical CBOR with every
// struct laid out as an array. It carries no version header; producers and
// consumers are expected to be built from the same package.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wasm: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	dm, err := cbor.DecOptions{
		MaxArrayElements: math.MaxInt32,
		IndefLength:      cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wasm: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// Encode serializes the module.
func (m *Module) Encode() ([]byte, error) {
	data, err := encMode.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "marshal module")
	}
	return data, nil
}

// DecodeModule parses bytes produced by Encode.
func DecodeModule(data []byte) (*Module, error) {
	if len(data) == 0 {
		return nil, errors.Decode("empty input", nil)
	}
	var m Module
	if err := decMode.Unmarshal(data, &m); err != nil {
		return nil, errors.Decode("unmarshal module", err)
	}
	return &m, nil
}

// Serialize is Encode with the error collapsed into ok == false.
func (m *Module) Serialize() ([]byte, bool) {
	data, err := m.Encode()
	if err != nil {
		Logger().Debug("module serialization failed", zap.Error(err))
		return nil, false
	}
	return data, true
}

// Deserialize is DecodeModule with the error collapsed into ok == false.
// Callers are responsible for reporting a useful message.
func Deserialize(data []byte) (*Module, bool) {
	m, err := DecodeModule(data)
	if err != nil {
		Logger().Debug("module deserialization failed", zap.Error(err))
		return nil, false
	}
	return m, true
}
