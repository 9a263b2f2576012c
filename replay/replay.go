// Package replay takes care of the logistics around playing a recorded camera track
// through a camerasync.Sync without a browser. Not the syncing itself.
package replay

import (
	"context"
	"sync"

	"github.com/pdok/spatialid/camerasync"
)

// Replay plays the states of source on a headless map and lets s follow it.
// It returns once the track is exhausted, or on the first error.
func Replay(parent context.Context, source Source, m *HeadlessMap, s *camerasync.Sync) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	states := make(chan camerasync.CameraState)
	var readErr error
	wg := sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer close(states)
		readErr = source.ReadCameraStates(ctx, states)
		if readErr != nil {
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		m.Play(ctx, states)
	}()

	runErr := s.Run(ctx, m.Ready(), m.Moves())
	cancel()
	wg.Wait()

	if readErr != nil {
		// the sync only saw the cancellation caused by it
		return readErr
	}
	if runErr == nil {
		// the map may have run dry because of the cancellation
		runErr = parent.Err()
	}
	return runErr
}
