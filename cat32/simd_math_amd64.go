//go:build amd64

package cat32

import "golang.org/x/sys/cpu"

// hardwareLanes is the number of float32 lanes in the widest vector unit.
func hardwareLanes() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 16
	case cpu.X86.HasAVX2:
		return 8
	default:
		// SSE2 is baseline for amd64
		return 4
	}
}
