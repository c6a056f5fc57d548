//go:build !linux

package neigh

func Table() ([]Entry, error) {
	return nil, ErrUnsupported
}
