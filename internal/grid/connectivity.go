package grid

import "fmt"

// Connectivity selects neighbor connectivity: orthogonal (Conn4) or including
// diagonals (Conn8).
type Connectivity int

const (
	// Conn4 uses 4-directional connectivity: N, E, S, W.
	Conn4 Connectivity = iota
	// Conn8 uses 8-directional connectivity: N, NE, E, SE, S, SW, W, NW.
	Conn8
)

var (
	offsets4 = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	offsets8 = [][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
)

// Offsets returns the neighbor offsets in a fixed order. The slice is shared
// and must not be modified.
func (c Connectivity) Offsets() [][2]int {
	if c == Conn8 {
		return offsets8
	}
	return offsets4
}

// String returns "4" or "8".
func (c Connectivity) String() string {
	if c == Conn8 {
		return "8"
	}
	return "4"
}

// ParseConnectivity accepts "4" or "8".
func ParseConnectivity(s string) (Connectivity, error) {
	switch s {
	case "4", "":
		return Conn4, nil
	case "8":
		return Conn8, nil
	default:
		return Conn4, fmt.Errorf("%w: connectivity %q must be 4 or 8", ErrInvalidParameter, s)
	}
}

// Validate returns ErrInvalidParameter for values other than Conn4 and Conn8.
func (c Connectivity) Validate() error {
	if c != Conn4 && c != Conn8 {
		return fmt.Errorf("%w: unknown connectivity %d", ErrInvalidParameter, int(c))
	}
	return nil
}
