//go:build disable_assertions || disable_x_assertions

package invariant

func XAlways(fn func() bool, msg string) {
}
