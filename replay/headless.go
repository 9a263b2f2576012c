package replay

import (
	"context"
	"math"
	"sync"

	"github.com/pdok/spatialid/camerasync"
	"github.com/pdok/spatialid/config"
)

// HeadlessMap stands in for the browser map: it has a camera, becomes ready at once
// and turns every played camera state into a movement notification.
type HeadlessMap struct {
	mu     sync.RWMutex
	camera camerasync.CameraState
	ready  chan struct{}
	moves  chan camerasync.CameraState
}

// NewHeadlessMap starts at the configured center. There is no terrain, so the elevation is unknown.
func NewHeadlessMap(cfg config.MapConfig) *HeadlessMap {
	return &HeadlessMap{
		camera: camerasync.CameraState{
			Longitude: cfg.Center.Lng,
			Latitude:  cfg.Center.Lat,
			Elevation: math.NaN(),
			Zoom:      cfg.Zoom,
		},
		ready: make(chan struct{}),
		moves: make(chan camerasync.CameraState),
	}
}

func (m *HeadlessMap) Camera() camerasync.CameraState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.camera
}

func (m *HeadlessMap) Ready() <-chan struct{} {
	return m.ready
}

func (m *HeadlessMap) Moves() <-chan camerasync.CameraState {
	return m.moves
}

// Play reports ready and then moves the camera to every state received, until states is closed.
// A HeadlessMap can be played once.
func (m *HeadlessMap) Play(ctx context.Context, states <-chan camerasync.CameraState) {
	defer close(m.moves)
	close(m.ready)
	for {
		var cam camerasync.CameraState
		var ok bool
		select {
		case <-ctx.Done():
			return
		case cam, ok = <-states:
			if !ok {
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case m.moves <- cam:
		}
		// moves is unbuffered: the camera only changes after the sync has taken its initial snapshot
		m.mu.Lock()
		m.camera = cam
		m.mu.Unlock()
	}
}
