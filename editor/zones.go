package editor

import (
	"github.com/gogpu/pairkit/collab"
	"github.com/gogpu/pairkit/scene"
	"github.com/gogpu/pairkit/template"
)

// Zones returns the zone map of a document: template layers by their
// configured zone, stickers by the zone containing their centre. Pass it
// to collab.NewSession so sticker edits take part in zone conflicts.
func Zones(tpl *template.Template, doc *scene.Document) collab.ZoneMap {
	return zoneMap{tpl: tpl, doc: doc}
}

type zoneMap struct {
	tpl *template.Template
	doc *scene.Document
}

func (z zoneMap) ZoneOf(layerID string) string {
	if zone := z.tpl.ZoneOf(layerID); zone != "" {
		return zone
	}
	return stickerZone(z.tpl, z.doc, layerID)
}

func (z zoneMap) ZoneIDs() []string { return z.tpl.ZoneIDs() }

func stickerZone(tpl *template.Template, doc *scene.Document, id string) string {
	if doc == nil {
		return ""
	}
	st, ok := doc.Sticker(id)
	if !ok {
		return ""
	}
	return tpl.ZoneAt(st.Box.Bounds().Center())
}
