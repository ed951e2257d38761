//go:build arm64

package cat32

import "golang.org/x/sys/cpu"

// hardwareLanes is the number of float32 lanes in a NEON register.
func hardwareLanes() int {
	if cpu.ARM64.HasASIMD {
		return 4
	}
	return 1
}
