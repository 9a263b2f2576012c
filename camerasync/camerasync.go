// Package camerasync keeps the spatial ID label of the drone model in step with the map camera.
//
// The map and the overlay renderer are collaborators outside this package:
// the map reports camera states and readiness, the overlay draws the label.
// Every camera change is evaluated synchronously, on the goroutine delivering it.
package camerasync

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/pdok/spatialid/config"
	"github.com/pdok/spatialid/mathhelp"
	"github.com/pdok/spatialid/spatialid"
)

// CameraState is a snapshot of the map camera.
type CameraState struct {
	Longitude float64 // degrees
	Latitude  float64 // degrees
	Elevation float64 // terrain elevation at the center in meters, NaN if unknown
	Zoom      float64 // fractional map zoom
}

// Position is where something is drawn: degrees and meters above the datum.
type Position struct {
	Lng float64
	Lat float64
	Alt float64
}

// MapView is the part of the map the sync reads from.
type MapView interface {
	Camera() CameraState
}

// Overlay draws the spatial ID label.
type Overlay interface {
	SetLabel(text string, pos Position)
}

// Evaluation is the outcome of a single camera state.
type Evaluation struct {
	ID                spatialid.ID
	Label             string
	EffectiveAltitude float64
	ElevationMissing  bool
	Model             Position // where the drone is
	LabelPosition     Position // where its label is
}

type Sync struct {
	view        MapView
	overlay     Overlay
	state       *ViewState
	modelHeight float64
	labelOffset float64
	settleDelay time.Duration

	log     *zap.Logger
	metrics *Metrics
	trail   *Trail
}

// New creates a Sync. metrics and trail are optional.
func New(cfg config.SyncConfig, view MapView, overlay Overlay, state *ViewState, log *zap.Logger, metrics *Metrics, trail *Trail) *Sync {
	if log == nil {
		log = zap.NewNop()
	}
	if state == nil {
		state = &ViewState{modelHeight: cfg.ModelHeight}
	}
	return &Sync{
		view:        view,
		overlay:     overlay,
		state:       state,
		modelHeight: cfg.ModelHeight,
		labelOffset: cfg.LabelOffset,
		settleDelay: cfg.SettleDelay,
		log:         log,
		metrics:     metrics,
		trail:       trail,
	}
}

// Evaluate computes what a camera state should display, without displaying it.
func (s *Sync) Evaluate(cam CameraState) (Evaluation, error) {
	elevation := cam.Elevation
	missing := !mathhelp.IsFinite(elevation)
	if missing {
		elevation = 0
	}
	altitude := elevation + s.modelHeight
	zoom := floorZoom(cam.Zoom)

	id, err := spatialid.Locate(cam.Longitude, cam.Latitude, altitude, zoom)
	if err != nil {
		return Evaluation{ElevationMissing: missing}, err
	}
	return Evaluation{
		ID:                id,
		Label:             id.String(),
		EffectiveAltitude: altitude,
		ElevationMissing:  missing,
		Model:             Position{Lng: cam.Longitude, Lat: cam.Latitude, Alt: altitude},
		LabelPosition:     Position{Lng: cam.Longitude, Lat: cam.Latitude, Alt: altitude + s.labelOffset},
	}, nil
}

// OnCameraChange recomputes the spatial ID and pushes the new label to the overlay.
// A camera at or beyond a pole leaves the previous label in place.
func (s *Sync) OnCameraChange(cam CameraState) {
	eval, err := s.Evaluate(cam)
	s.metrics.observeCameraChange(cam, eval.ElevationMissing, err)
	if eval.ElevationMissing {
		s.log.Debug("terrain elevation unavailable, using 0",
			zap.Float64("lng", cam.Longitude), zap.Float64("lat", cam.Latitude))
	}
	if err != nil {
		if errors.Is(err, spatialid.ErrInvalidLatitude) {
			s.log.Warn("skipping camera change", zap.Error(err))
			return
		}
		s.log.Error("could not evaluate camera change", zap.Error(err))
		return
	}

	s.overlay.SetLabel(eval.Label, eval.LabelPosition)
	s.state.update(eval)
	if s.trail != nil {
		s.trail.Add(eval.ID)
	}
	s.log.Debug("spatial id updated",
		zap.String("label", eval.Label),
		zap.Float64("altitude", eval.EffectiveAltitude),
		zap.Float64("zoom", cam.Zoom))
}

// Run waits until the map is ready, evaluates the current camera once
// and then every camera state received on moves.
// It returns nil when moves is closed, or the context error when ctx ends first.
func (s *Sync) Run(ctx context.Context, ready <-chan struct{}, moves <-chan CameraState) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for map to be ready: %w", ctx.Err())
	case <-ready:
	}
	if s.settleDelay > 0 {
		timer := time.NewTimer(s.settleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	s.log.Info("map ready, attaching overlay")
	s.OnCameraChange(s.view.Camera())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cam, ok := <-moves:
			if !ok {
				return nil
			}
			s.OnCameraChange(cam)
		}
	}
}

// floorZoom floors a map zoom into [0, spatialid.MaxZoom], NaN becomes 0.
func floorZoom(zoom float64) uint {
	if !(zoom > 0) {
		return 0
	}
	if zoom >= float64(spatialid.MaxZoom) {
		return spatialid.MaxZoom
	}
	return uint(math.Floor(zoom))
}
