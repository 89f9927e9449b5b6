//go:build !darwin && !windows && !linux

package clip

// New returns a no-op backend; there is no clipboard integration for this
// platform.
func New() Backend {
	return newHeadless()
}
