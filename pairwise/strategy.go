package pairwise

import "fmt"

// Strategy selects how the pairwise squared distances are computed. Both
// strategies agree up to floating point rounding.
type Strategy int

const (
	// Direct forms the difference vector for every pair and sums its squares.
	// It is exact up to summation order but touches N1*N2*m elements.
	Direct Strategy = iota
	// Expansion uses |x|^2 + |y|^2 - 2 x.y with a single matrix product. It
	// loses precision to cancellation when rows are nearly equal.
	Expansion
)

const (
	StrategyDirect    = "direct"
	StrategyExpansion = "expansion"
)

func (s Strategy) String() string {
	switch s {
	case Direct:
		return StrategyDirect
	case Expansion:
		return StrategyExpansion
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy returns the strategy by name.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case StrategyDirect:
		return Direct, nil
	case StrategyExpansion:
		return Expansion, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

func (s Strategy) valid() bool {
	return s == Direct || s == Expansion
}
