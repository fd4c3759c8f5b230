package layout

import (
	"strings"

	"github.com/wippyai/tagcodec/errors"
)

// Endian is the byte order of a target.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// Target describes the target triple and its pointer properties.
type Target struct {
	Triple     string
	DataLayout string
	PtrSize    uint32 // bytes
	Endian     Endian
}

// AArch64LinuxOHOS is aarch64-unknown-linux-ohos.
func AArch64LinuxOHOS() Target {
	return newTarget("aarch64-unknown-linux-ohos", "e-m:e-i8:8:32-i16:16:32-i64:64-i128:128-n32:64-S128-Fn32", 8)
}

// X86_64LinuxGNU is x86_64-unknown-linux-gnu.
func X86_64LinuxGNU() Target {
	return newTarget("x86_64-unknown-linux-gnu", "e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-i128:128-f80:128-n8:16:32:64-S128", 8)
}

// Wasm32 is wasm32-unknown-unknown.
func Wasm32() Target {
	return newTarget("wasm32-unknown-unknown", "e-m:e-p:32:32-p10:8:8-p20:8:8-i64:64-n32:64-S128-ni:1:10:20", 4)
}

// DefaultTarget is used when no triple is given.
func DefaultTarget() Target {
	return AArch64LinuxOHOS()
}

func newTarget(triple, dataLayout string, ptrSize uint32) Target {
	return Target{
		Triple:     triple,
		DataLayout: dataLayout,
		PtrSize:    ptrSize,
		Endian:     EndianOf(dataLayout),
	}
}

// EndianOf reads the byte order from the leading specification of an LLVM
// data layout string. Little endian is the default.
func EndianOf(dataLayout string) Endian {
	for _, spec := range strings.Split(dataLayout, "-") {
		switch spec {
		case "E":
			return BigEndian
		case "e":
			return LittleEndian
		}
	}
	return LittleEndian
}

// LookupTarget returns a built-in target by triple.
func LookupTarget(triple string) (Target, error) {
	for _, t := range []Target{AArch64LinuxOHOS(), X86_64LinuxGNU(), Wasm32()} {
		if t.Triple == triple {
			return t, nil
		}
	}
	return Target{}, errors.NotFound(errors.PhaseLayout, "target", triple)
}
