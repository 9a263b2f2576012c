package camerasync

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pdok/spatialid/spatialid"
)

type Metrics struct {
	cameraChanges    prometheus.Counter
	invalidLatitude  prometheus.Counter
	missingElevation prometheus.Counter
	zoomLevel        prometheus.Gauge
}

// NewMetrics registers the sync metrics with reg. A nil reg creates them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cameraChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "spatialid_camera_changes_total",
			Help: "The total number of camera changes evaluated.",
		}),
		invalidLatitude: factory.NewCounter(prometheus.CounterOpts{
			Name: "spatialid_invalid_latitude_total",
			Help: "The total number of camera changes skipped because of a latitude at or beyond a pole.",
		}),
		missingElevation: factory.NewCounter(prometheus.CounterOpts{
			Name: "spatialid_missing_elevation_total",
			Help: "The total number of camera changes without a terrain elevation.",
		}),
		zoomLevel: factory.NewGauge(prometheus.GaugeOpts{
			Name: "spatialid_zoom_level",
			Help: "The fractional map zoom of the last camera change.",
		}),
	}
}

func (m *Metrics) observeCameraChange(cam CameraState, elevationMissing bool, err error) {
	if m == nil {
		return
	}
	m.cameraChanges.Inc()
	m.zoomLevel.Set(cam.Zoom)
	if elevationMissing {
		m.missingElevation.Inc()
	}
	if errors.Is(err, spatialid.ErrInvalidLatitude) {
		m.invalidLatitude.Inc()
	}
}
