// Package hand holds the Linker Hand L20 joint-command model.
package hand

import "time"

// JointCount is the fixed number of joints in an L20 command.
const JointCount = 20

// Documented safe range for a joint position, in device units.
// Values outside the range are not rejected; see OutOfRange.
const (
	PositionMin = 0.0
	PositionMax = 255.0
)

// JointNames maps command indices to L20 joint names. The order is fixed:
// five base joints, five abduction joints, thumb opposition plus four
// reserved slots, five tip joints.
var JointNames = [JointCount]string{
	"thumb_base", "index_base", "middle_base", "ring_base", "little_base",
	"thumb_abduction", "index_abduction", "middle_abduction", "ring_abduction", "little_abduction",
	"thumb_opposition", "reserved_1", "reserved_2", "reserved_3", "reserved_4",
	"thumb_tip", "index_tip", "middle_tip", "ring_tip", "little_tip",
}

// Index boundaries of the joint groups within a command vector.
const (
	BaseStart       = 0
	AbductionStart  = 5
	OppositionStart = 10
	TipStart        = 15
)

// JointCommand is a single position command for the hand. Positions always
// has exactly JointCount entries; Efforts is present in the schema but this
// producer never fills it.
type JointCommand struct {
	TimestampNs int64     `json:"timestamp_ns"`
	Positions   []float64 `json:"positions"`
	Velocities  []float64 `json:"velocities"`
	Efforts     []float64 `json:"efforts"`
}

// NewCommand builds a command stamped at ts. Both input slices are copied so
// the caller's backing arrays can never be mutated through the command, and
// a command handed downstream can never corrupt the caller's constants.
func NewCommand(ts time.Time, positions []float64, velocities []float64) JointCommand {
	cmd := JointCommand{
		TimestampNs: ts.UnixNano(),
		Positions:   make([]float64, len(positions)),
		Velocities:  make([]float64, len(velocities)),
		Efforts:     []float64{},
	}
	copy(cmd.Positions, positions)
	copy(cmd.Velocities, velocities)
	return cmd
}

// OutOfRange returns the indices of positions outside [PositionMin, PositionMax].
// The publisher logs these at startup but still sends the values as-is.
func OutOfRange(positions []float64) []int {
	var bad []int
	for i, p := range positions {
		if p < PositionMin || p > PositionMax {
			bad = append(bad, i)
		}
	}
	return bad
}
