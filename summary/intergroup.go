package summary

import (
	"math"

	"github.com/YuminosukeSato/gshap/core/model"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DistanceKind enumerates the intergroup distances.
type DistanceKind int

const (
	// Relative is mean(ingroup)/mean(outgroup) - 1. It is the zero value.
	Relative DistanceKind = iota
	// Absolute is mean(ingroup) - mean(outgroup).
	Absolute
	// Custom delegates to a caller-supplied DistanceFunc.
	Custom
)

func (k DistanceKind) String() string {
	switch k {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// DistanceFunc measures the gap between outgroup and ingroup values. Each
// slice holds the per-row positive-class quantity of one group.
type DistanceFunc func(outgroup, ingroup []float64) (float64, error)

// Distance is a closed set of intergroup distances plus a custom variant.
type Distance struct {
	Kind DistanceKind
	fn   DistanceFunc
}

var (
	// AbsoluteMeanDistance is the difference of group means.
	AbsoluteMeanDistance = Distance{Kind: Absolute}
	// RelativeMeanDistance is the ratio of group means minus one.
	RelativeMeanDistance = Distance{Kind: Relative}
)

// CustomDistance wraps fn as a Distance.
func CustomDistance(fn DistanceFunc) Distance {
	return Distance{Kind: Custom, fn: fn}
}

// ParseDistance maps a configuration key to a built-in Distance.
func ParseDistance(name string) (Distance, error) {
	switch name {
	case "absolute", "absolute_mean":
		return AbsoluteMeanDistance, nil
	case "relative", "relative_mean", "":
		return RelativeMeanDistance, nil
	default:
		return Distance{}, errors.NewInvalidArgumentError("distance", "must be absolute or relative", name)
	}
}

// Apply computes the distance between the two groups.
func (d Distance) Apply(outgroup, ingroup []float64) (float64, error) {
	switch d.Kind {
	case Absolute:
		return stat.Mean(ingroup, nil) - stat.Mean(outgroup, nil), nil
	case Relative:
		ratio := stat.Mean(ingroup, nil) / stat.Mean(outgroup, nil)
		if !errors.IsFinite(ratio) {
			errors.Warn(errors.NewUndefinedMetricWarning("RelativeMeanDistance", "zero outgroup mean", math.NaN()))
			return math.NaN(), nil
		}
		return ratio - 1, nil
	case Custom:
		if d.fn == nil {
			return 0, errors.NewInvalidArgumentError("distance", "custom distance without a function", nil)
		}
		return d.fn(outgroup, ingroup)
	default:
		return 0, errors.NewInvalidArgumentError("distance", "unknown distance kind", d.Kind.String())
	}
}

// IntergroupDifference measures the gap between the predicted outcomes of
// an ingroup (Group[i] true) and an outgroup. For two-column probability
// output, column 1 is taken as the positive-class probability.
//
// When Mask is set only rows with Mask[i] true are compared; EqualOpportunity
// uses this to restrict the comparison to truly positive observations.
type IntergroupDifference struct {
	Group    []bool
	Mask     []bool
	Distance Distance
}

// NewIntergroupDifference validates that both groups are non-empty.
func NewIntergroupDifference(group []bool, distance Distance) (*IntergroupDifference, error) {
	if err := checkGroups(group, nil); err != nil {
		return nil, err
	}
	return &IntergroupDifference{Group: copyBools(group), Distance: distance}, nil
}

// NewEqualOpportunity compares groups only among rows whose true outcome
// y[i] is positive.
func NewEqualOpportunity(group, y []bool, distance Distance) (*IntergroupDifference, error) {
	if len(y) != len(group) {
		return nil, errors.NewShapeMismatchError("NewEqualOpportunity", len(group), len(y), 0)
	}
	if err := checkGroups(group, y); err != nil {
		return nil, err
	}
	return &IntergroupDifference{Group: copyBools(group), Mask: copyBools(y), Distance: distance}, nil
}

// Summarize implements Summary.
func (d *IntergroupDifference) Summarize(output mat.Matrix) (float64, error) {
	r, _ := output.Dims()
	if r != len(d.Group) {
		return 0, errors.NewShapeMismatchError("IntergroupDifference", len(d.Group), r, 0)
	}

	values := model.PositiveColumn(output)
	var out0, out1 []float64
	for i, v := range values {
		if d.Mask != nil && !d.Mask[i] {
			continue
		}
		if d.Group[i] {
			out1 = append(out1, v)
		} else {
			out0 = append(out0, v)
		}
	}
	return d.Distance.Apply(out0, out1)
}

func checkGroups(group, mask []bool) error {
	var in, out int
	for i, g := range group {
		if mask != nil && !mask[i] {
			continue
		}
		if g {
			in++
		} else {
			out++
		}
	}
	if in == 0 || out == 0 {
		return errors.NewInvalidArgumentError("group", "ingroup and outgroup must both be non-empty", map[string]int{"ingroup": in, "outgroup": out})
	}
	return nil
}

func copyBools(b []bool) []bool {
	if b == nil {
		return nil
	}
	out := make([]bool, len(b))
	copy(out, b)
	return out
}
