package replay

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/perimeterx/marshmallow"
	"go.uber.org/zap"

	"github.com/pdok/spatialid/camerasync"
)

// JSONLinesSource reads a camera track with one JSON object per line:
//
//	{"lng": 139.114998, "lat": 36.08429, "elevation": 100, "zoom": 18.31}
//
// A missing or null elevation means the terrain elevation is unknown.
// Empty lines and lines starting with # are skipped.
type JSONLinesSource struct {
	r   io.Reader
	log *zap.Logger
}

type cameraRecord struct {
	Lng       float64 `json:"lng"`
	Lat       float64 `json:"lat"`
	Elevation float64 `json:"elevation"`
	Zoom      float64 `json:"zoom"`
}

var requiredKeys = [...]string{"lng", "lat", "zoom"}

func NewJSONLinesSource(r io.Reader, log *zap.Logger) *JSONLinesSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONLinesSource{r: r, log: log}
}

func (source *JSONLinesSource) ReadCameraStates(ctx context.Context, states chan<- camerasync.CameraState) error {
	scanner := bufio.NewScanner(source.r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		cam, err := source.decode(line, lineNo)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case states <- cam:
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading camera track after line %d: %w", lineNo, err)
	}
	return nil
}

func (source *JSONLinesSource) decode(line []byte, lineNo int) (camerasync.CameraState, error) {
	var rec cameraRecord
	fields, err := marshmallow.Unmarshal(line, &rec)
	if err != nil {
		return camerasync.CameraState{}, fmt.Errorf("camera track line %d: %w", lineNo, err)
	}
	for _, key := range requiredKeys {
		if v, ok := fields[key]; !ok || v == nil {
			return camerasync.CameraState{}, fmt.Errorf("camera track line %d: missing %q", lineNo, key)
		}
	}
	if v, ok := fields["elevation"]; !ok || v == nil {
		rec.Elevation = math.NaN()
	}
	for key := range fields {
		switch key {
		case "lng", "lat", "elevation", "zoom":
		default:
			source.log.Debug("ignoring camera track field", zap.Int("line", lineNo), zap.String("field", key))
		}
	}
	return camerasync.CameraState{
		Longitude: rec.Lng,
		Latitude:  rec.Lat,
		Elevation: rec.Elevation,
		Zoom:      rec.Zoom,
	}, nil
}
