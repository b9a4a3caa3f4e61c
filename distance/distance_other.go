//go:build !amd64

package distance

func hasASMSupport() bool {
	return false
}
