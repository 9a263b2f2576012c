package camerasync

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pdok/spatialid/config"
	"github.com/pdok/spatialid/spatialid"
)

const captionFormat = "elevation+%gm: %.1fm\nspatialID: %s"

// ViewState is what the overlay shows: the static 3D tiles layers, the drone model and its label.
// The composition root owns it, the Sync overwrites the dynamic part on every camera change.
type ViewState struct {
	mu          sync.RWMutex
	tilesets    []config.Tileset
	modelURL    string
	modelHeight float64

	evaluated bool
	id        spatialid.ID
	label     string
	caption   string
	model     Position
	labelPos  Position
}

// Snapshot is a consistent copy of a ViewState.
type Snapshot struct {
	Tilesets      []config.Tileset
	ModelURL      string
	Evaluated     bool // false until the first camera change
	ID            spatialid.ID
	Label         string
	Caption       string
	Model         Position
	LabelPosition Position
}

func NewViewState(overlay config.OverlayConfig, syncCfg config.SyncConfig) *ViewState {
	return &ViewState{
		tilesets:    slices.Clone(overlay.Tilesets),
		modelURL:    overlay.ModelURL,
		modelHeight: syncCfg.ModelHeight,
	}
}

func (v *ViewState) update(eval Evaluation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.evaluated = true
	v.id = eval.ID
	v.label = eval.Label
	v.caption = fmt.Sprintf(captionFormat, v.modelHeight, eval.EffectiveAltitude, eval.Label)
	v.model = eval.Model
	v.labelPos = eval.LabelPosition
}

func (v *ViewState) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot{
		Tilesets:      slices.Clone(v.tilesets),
		ModelURL:      v.modelURL,
		Evaluated:     v.evaluated,
		ID:            v.id,
		Label:         v.label,
		Caption:       v.caption,
		Model:         v.model,
		LabelPosition: v.labelPos,
	}
}
