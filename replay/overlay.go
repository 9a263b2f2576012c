package replay

import (
	"fmt"
	"io"

	"github.com/pdok/spatialid/camerasync"
)

// WriterOverlay "draws" labels by writing them as tab separated lines: label, lng, lat, alt.
type WriterOverlay struct {
	w   io.Writer
	err error
}

func NewWriterOverlay(w io.Writer) *WriterOverlay {
	return &WriterOverlay{w: w}
}

func (o *WriterOverlay) SetLabel(text string, pos camerasync.Position) {
	if o.err != nil {
		return
	}
	_, o.err = fmt.Fprintf(o.w, "%s\t%.6f\t%.6f\t%.1f\n", text, pos.Lng, pos.Lat, pos.Alt)
}

// Err returns the first write error, labels after it are dropped.
func (o *WriterOverlay) Err() error {
	return o.err
}
