package camerasync

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdok/spatialid/config"
	"github.com/pdok/spatialid/spatialid"
)

type fakeMap struct {
	camera CameraState
}

func (m *fakeMap) Camera() CameraState {
	return m.camera
}

type setLabelCall struct {
	text string
	pos  Position
}

type recordingOverlay struct {
	calls []setLabelCall
}

func (o *recordingOverlay) SetLabel(text string, pos Position) {
	o.calls = append(o.calls, setLabelCall{text, pos})
}

func (o *recordingOverlay) last(t *testing.T) setLabelCall {
	t.Helper()
	require.NotEmpty(t, o.calls)
	return o.calls[len(o.calls)-1]
}

var (
	nagatoro    = CameraState{Longitude: 139.114998, Latitude: 36.08429, Elevation: 100, Zoom: 18}
	defaultSync = config.SyncConfig{ModelHeight: 30, LabelOffset: 10}
)

func newTestSync(t *testing.T, view MapView) (*Sync, *recordingOverlay, *ViewState, *prometheus.Registry) {
	t.Helper()
	overlay := &recordingOverlay{}
	state := NewViewState(config.OverlayConfig{ModelURL: "data/dji_tello_1.glb"}, defaultSync)
	reg := prometheus.NewRegistry()
	sync := New(defaultSync, view, overlay, state, nil, NewMetrics(reg), NewTrail())
	return sync, overlay, state, reg
}

func TestSync_OnCameraChange(t *testing.T) {
	sync, overlay, state, _ := newTestSync(t, &fakeMap{})

	sync.OnCameraChange(nagatoro)

	want := spatialid.Compute(139.114998, 36.08429, 130, 18)
	call := overlay.last(t)
	assert.Equal(t, "18/1/232372/102864", call.text)
	assert.Equal(t, want.String(), call.text)
	assert.Equal(t, Position{Lng: 139.114998, Lat: 36.08429, Alt: 140}, call.pos)

	snap := state.Snapshot()
	assert.True(t, snap.Evaluated)
	assert.Equal(t, want, snap.ID)
	assert.Equal(t, "18/1/232372/102864", snap.Label)
	assert.Equal(t, "elevation+30m: 130.0m\nspatialID: 18/1/232372/102864", snap.Caption)
	assert.Equal(t, Position{Lng: 139.114998, Lat: 36.08429, Alt: 130}, snap.Model)
	assert.Equal(t, "data/dji_tello_1.glb", snap.ModelURL)
}

func TestSync_Evaluate(t *testing.T) {
	tests := []struct {
		name        string
		cam         CameraState
		wantID      spatialid.ID
		wantAlt     float64
		wantMissing bool
	}{
		{name: "fractional zoom is floored",
			cam:     CameraState{Longitude: 139.114998, Latitude: 36.08429, Elevation: 100, Zoom: 18.31},
			wantID:  spatialid.Compute(139.114998, 36.08429, 130, 18),
			wantAlt: 130},
		{name: "missing elevation falls back to 0",
			cam:         CameraState{Longitude: 139.114998, Latitude: 36.08429, Elevation: math.NaN(), Zoom: 18},
			wantID:      spatialid.Compute(139.114998, 36.08429, 30, 18),
			wantAlt:     30,
			wantMissing: true},
		{name: "infinite elevation falls back to 0",
			cam:         CameraState{Longitude: 139.114998, Latitude: 36.08429, Elevation: math.Inf(1), Zoom: 18},
			wantID:      spatialid.Compute(139.114998, 36.08429, 30, 18),
			wantAlt:     30,
			wantMissing: true},
		{name: "negative zoom becomes 0",
			cam:     CameraState{Longitude: 0, Latitude: 0, Elevation: 0, Zoom: -1.5},
			wantID:  spatialid.ID{},
			wantAlt: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sync, overlay, _, _ := newTestSync(t, &fakeMap{})
			got, err := sync.Evaluate(tt.cam)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.wantID.String(), got.Label)
			assert.Equal(t, tt.wantAlt, got.EffectiveAltitude)
			assert.Equal(t, tt.wantAlt+10, got.LabelPosition.Alt)
			assert.Equal(t, tt.wantMissing, got.ElevationMissing)
			assert.Empty(t, overlay.calls, "Evaluate should not draw")
		})
	}
}

func TestSync_OnCameraChange_invalidLatitude(t *testing.T) {
	sync, overlay, state, reg := newTestSync(t, &fakeMap{})

	sync.OnCameraChange(nagatoro)
	sync.OnCameraChange(CameraState{Longitude: 0, Latitude: 90, Elevation: 0, Zoom: 3})

	require.Len(t, overlay.calls, 1)
	assert.Equal(t, "18/1/232372/102864", state.Snapshot().Label, "previous label stays")
	assert.Equal(t, 2.0, testutil.ToFloat64(sync.metrics.cameraChanges))
	assert.Equal(t, 1.0, testutil.ToFloat64(sync.metrics.invalidLatitude))
	assert.Equal(t, 3.0, testutil.ToFloat64(sync.metrics.zoomLevel))

	count, err := testutil.GatherAndCount(reg, "spatialid_invalid_latitude_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSync_OnCameraChange_labelOverwritten(t *testing.T) {
	sync, overlay, state, reg := newTestSync(t, &fakeMap{})

	sync.OnCameraChange(nagatoro)
	moved := nagatoro
	moved.Elevation = math.NaN()
	moved.Zoom = 25.9
	sync.OnCameraChange(moved)

	require.Len(t, overlay.calls, 2)
	want := spatialid.Compute(139.114998, 36.08429, 30, 25)
	assert.Equal(t, want.String(), state.Snapshot().Label)
	assert.Equal(t, 1.0, testutil.ToFloat64(sync.metrics.missingElevation))
	assert.Equal(t, 2, sync.trail.Len())

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSync_withoutOptionals(t *testing.T) {
	overlay := &recordingOverlay{}
	sync := New(defaultSync, &fakeMap{}, overlay, nil, nil, nil, nil)
	require.NotPanics(t, func() { sync.OnCameraChange(nagatoro) })
	require.NotPanics(t, func() { sync.OnCameraChange(CameraState{Latitude: -90}) })
	assert.Len(t, overlay.calls, 1)
}

func TestSync_Run(t *testing.T) {
	view := &fakeMap{camera: nagatoro}
	sync, overlay, _, _ := newTestSync(t, view)

	ready := make(chan struct{})
	moves := make(chan CameraState, 3)
	done := make(chan error, 1)
	go func() {
		done <- sync.Run(context.Background(), ready, moves)
	}()

	moves <- CameraState{Longitude: 139.2, Latitude: 36.1, Elevation: 200, Zoom: 17.5}
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, overlay.calls, "nothing may be drawn before the map is ready")

	close(ready)
	moves <- CameraState{Longitude: 139.3, Latitude: 36.2, Elevation: math.NaN(), Zoom: 16}
	close(moves)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after moves was closed")
	}

	require.Len(t, overlay.calls, 3)
	assert.Equal(t, "18/1/232372/102864", overlay.calls[0].text, "first evaluation uses the current camera")
	assert.Equal(t, spatialid.Compute(139.2, 36.1, 230, 17).String(), overlay.calls[1].text)
	assert.Equal(t, spatialid.Compute(139.3, 36.2, 30, 16).String(), overlay.calls[2].text)
}

func TestSync_Run_settleDelay(t *testing.T) {
	overlay := &recordingOverlay{}
	cfg := defaultSync
	cfg.SettleDelay = 20 * time.Millisecond
	sync := New(cfg, &fakeMap{camera: nagatoro}, overlay, nil, nil, nil, nil)

	ready := make(chan struct{})
	close(ready)
	moves := make(chan CameraState)
	close(moves)

	start := time.Now()
	require.NoError(t, sync.Run(context.Background(), ready, moves))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Len(t, overlay.calls, 1)
}

func TestSync_Run_canceled(t *testing.T) {
	sync, overlay, _, _ := newTestSync(t, &fakeMap{camera: nagatoro})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sync.Run(ctx, make(chan struct{}), make(chan CameraState))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, overlay.calls)

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ready := make(chan struct{})
	close(ready)
	err = sync.Run(ctx, ready, make(chan CameraState))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, overlay.calls, 1)
}

func TestFloorZoom(t *testing.T) {
	assert.Equal(t, uint(18), floorZoom(18.31))
	assert.Equal(t, uint(18), floorZoom(18))
	assert.Equal(t, uint(0), floorZoom(0.99))
	assert.Equal(t, uint(0), floorZoom(-3))
	assert.Equal(t, uint(0), floorZoom(math.NaN()))
	assert.Equal(t, spatialid.MaxZoom, floorZoom(float64(spatialid.MaxZoom)+0.5))
	assert.Equal(t, spatialid.MaxZoom, floorZoom(1e300))
	assert.Equal(t, spatialid.MaxZoom, floorZoom(math.Inf(1)))
}

func TestOnCameraChange_deepZoom(t *testing.T) {
	sync, overlay, state, _ := newTestSync(t, &fakeMap{})

	sync.OnCameraChange(CameraState{Longitude: 139.114998, Latitude: 36.08429, Elevation: 100, Zoom: 1e300})

	require.Len(t, overlay.calls, 1)
	want := spatialid.Compute(139.114998, 36.08429, 130, spatialid.MaxZoom)
	assert.Equal(t, want, state.Snapshot().ID)
	assert.True(t, want.InGrid())
}
