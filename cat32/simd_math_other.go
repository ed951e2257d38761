//go:build !amd64 && !arm64

package cat32

// Other architectures run the kernels one element per lane.
func hardwareLanes() int {
	return 1
}
