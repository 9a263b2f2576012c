package replay

import (
	"context"

	"github.com/pdok/spatialid/camerasync"
)

// Source produces a recorded camera track.
// ReadCameraStates sends the states in order and returns when done; it must not close the channel.
type Source interface {
	ReadCameraStates(ctx context.Context, states chan<- camerasync.CameraState) error
}
