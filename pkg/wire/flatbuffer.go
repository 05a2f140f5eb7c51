package wire

import (
	flatbuffers "github.com/google/flatbuffers/go"

	fbcommand "github.com/linkerbot/hand-publisher/pkg/flatbuffers/linkerhand/command"
	"github.com/linkerbot/hand-publisher/pkg/hand"
)

type flatbufferEncoder struct{}

// Encode serializes the command into a JointCommand flatbuffer.
func (flatbufferEncoder) Encode(cmd hand.JointCommand) ([]byte, error) {
	builder := flatbuffers.NewBuilder(512)

	positions := doubleVector(builder, fbcommand.JointCommandStartPositionsVector, cmd.Positions)
	velocities := doubleVector(builder, fbcommand.JointCommandStartVelocitiesVector, cmd.Velocities)
	efforts := doubleVector(builder, fbcommand.JointCommandStartEffortsVector, cmd.Efforts)

	fbcommand.JointCommandStart(builder)
	fbcommand.JointCommandAddTimestampNs(builder, cmd.TimestampNs)
	fbcommand.JointCommandAddPositions(builder, positions)
	fbcommand.JointCommandAddVelocities(builder, velocities)
	fbcommand.JointCommandAddEfforts(builder, efforts)
	builder.Finish(fbcommand.JointCommandEnd(builder))

	return builder.FinishedBytes(), nil
}

// doubleVector writes values as a [double] vector. FlatBuffers vectors are
// built back to front.
func doubleVector(builder *flatbuffers.Builder, start func(*flatbuffers.Builder, int) flatbuffers.UOffsetT, values []float64) flatbuffers.UOffsetT {
	start(builder, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		builder.PrependFloat64(values[i])
	}
	return builder.EndVector(len(values))
}
