package editor

import (
	"errors"
	"fmt"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/collab"
	"github.com/gogpu/pairkit/scene"
	"github.com/gogpu/pairkit/template"
)

// ApplyRemoteEdit applies an edit from another participant. The edit is
// refused with collab.ErrRejected when its zone is held by someone other
// than its author or when it names a layer this document does not have.
func (e *Editor) ApplyRemoteEdit(ed collab.Edit) error {
	if e.isClosed() {
		return fmt.Errorf("%w: %w", collab.ErrRejected, ErrClosed)
	}
	zone := ed.Zone
	if zone == "" {
		zone = e.remoteZone(ed)
	}
	if zone != "" {
		if owner := e.session.ZoneOwner(zone); owner != "" && owner != ed.User {
			return fmt.Errorf("%w: zone %q is held by %s", collab.ErrRejected, zone, owner)
		}
	}

	switch ed.Kind {
	case collab.EditText:
		if _, ok := e.tpl.TextField(ed.LayerID); !ok {
			return fmt.Errorf("%w: text field %q", collab.ErrRejected, ed.LayerID)
		}
		applyText(e.doc, ed.LayerID, ed.Text)
	case collab.EditSlotImage:
		if _, ok := e.tpl.ImageSlot(ed.LayerID); !ok {
			return fmt.Errorf("%w: image slot %q", collab.ErrRejected, ed.LayerID)
		}
		e.doc.SetSlotContent(ed.LayerID, ed.ImageRef)
	case collab.EditSlotAdjustment:
		if _, ok := e.tpl.ImageSlot(ed.LayerID); !ok || ed.Adjustment == nil {
			return fmt.Errorf("%w: image slot %q", collab.ErrRejected, ed.LayerID)
		}
		e.doc.SetSlotAdjustment(ed.LayerID, ed.Adjustment.Clone())
	case collab.EditSticker:
		if ed.Sticker == nil {
			return fmt.Errorf("%w: sticker edit without sticker", collab.ErrRejected)
		}
		st := *ed.Sticker
		_, err := e.doc.UpdateSticker(st.ID, func(template.Sticker) template.Sticker { return st })
		if errors.Is(err, scene.ErrUnknownSticker) {
			e.doc.AddSticker(st)
		}
	case collab.EditRemoveSticker:
		if err := e.doc.RemoveSticker(ed.LayerID); err != nil {
			pairkit.Logger().Debug("editor: sticker already removed", "sticker", ed.LayerID)
		}
	default:
		return fmt.Errorf("%w: unknown edit kind %q", collab.ErrRejected, ed.Kind)
	}
	pairkit.Logger().Debug("editor: remote edit applied", "layer", ed.LayerID, "kind", ed.Kind, "user", ed.User)
	return nil
}

func (e *Editor) remoteZone(ed collab.Edit) string {
	if ed.Sticker != nil {
		return e.tpl.ZoneAt(ed.Sticker.Box.Bounds().Center())
	}
	if z := e.tpl.ZoneOf(ed.LayerID); z != "" {
		return z
	}
	return stickerZone(e.tpl, e.doc, ed.LayerID)
}
