package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/gogpu/pairkit/compositor"
	"github.com/gogpu/pairkit/template"
)

// SlotAdjustment is the user's edit of a slot's content.
type SlotAdjustment = compositor.Adjustment

// ErrUnknownSticker is returned when a sticker id does not exist.
var ErrUnknownSticker = errors.New("scene: unknown sticker")

// Document is the mutable per-document state. It is only changed through
// its methods; readers take a Snapshot. A Document is safe for concurrent
// use.
type Document struct {
	mu            sync.RWMutex
	formData      map[string]string
	slotContent   map[string]string
	slotTransform map[string]SlotAdjustment
	stickers      []template.Sticker
	selection     string
	version       uint64
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		formData:      make(map[string]string),
		slotContent:   make(map[string]string),
		slotTransform: make(map[string]SlotAdjustment),
	}
}

func (d *Document) update(fn func()) {
	d.mu.Lock()
	fn()
	d.version++
	d.mu.Unlock()
}

// SetText sets the value of a text field.
func (d *Document) SetText(fieldID, value string) {
	d.update(func() { d.formData[fieldID] = value })
}

// ClearText removes a text field value so the field shows its default or
// placeholder again.
func (d *Document) ClearText(fieldID string) {
	d.update(func() { delete(d.formData, fieldID) })
}

// SetSlotContent assigns an image reference to a slot. An empty ref
// clears the slot.
func (d *Document) SetSlotContent(slotID, ref string) {
	d.update(func() {
		if ref == "" {
			delete(d.slotContent, slotID)
			return
		}
		d.slotContent[slotID] = ref
	})
}

// SetSlotAdjustment replaces a slot's adjustment.
func (d *Document) SetSlotAdjustment(slotID string, adj SlotAdjustment) {
	d.update(func() { d.slotTransform[slotID] = adj.Clone() })
}

// UpdateSlotAdjustment applies fn to a slot's adjustment and returns the
// result. Slots without one start from compositor.DefaultAdjustment.
func (d *Document) UpdateSlotAdjustment(slotID string, fn func(SlotAdjustment) SlotAdjustment) SlotAdjustment {
	var out SlotAdjustment
	d.update(func() {
		adj, ok := d.slotTransform[slotID]
		if !ok {
			adj = compositor.DefaultAdjustment()
		}
		out = fn(adj.Clone()).Clone()
		d.slotTransform[slotID] = out
	})
	return out
}

// AddSticker appends a sticker; it paints above every earlier one.
func (d *Document) AddSticker(s template.Sticker) {
	d.update(func() { d.stickers = append(d.stickers, s) })
}

// UpdateSticker applies fn to the sticker with the given id.
func (d *Document) UpdateSticker(id string, fn func(template.Sticker) template.Sticker) (template.Sticker, error) {
	var (
		out template.Sticker
		err error
	)
	d.update(func() {
		i := d.stickerIndex(id)
		if i < 0 {
			err = fmt.Errorf("%w: %q", ErrUnknownSticker, id)
			return
		}
		out = fn(d.stickers[i])
		d.stickers[i] = out
	})
	return out, err
}

// RemoveSticker deletes the sticker with the given id.
func (d *Document) RemoveSticker(id string) error {
	var err error
	d.update(func() {
		i := d.stickerIndex(id)
		if i < 0 {
			err = fmt.Errorf("%w: %q", ErrUnknownSticker, id)
			return
		}
		d.stickers = slices.Delete(d.stickers, i, i+1)
	})
	return err
}

// Sticker returns a copy of the sticker with the given id.
func (d *Document) Sticker(id string) (template.Sticker, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := d.stickerIndex(id)
	if i < 0 {
		return template.Sticker{}, false
	}
	st := d.stickers[i]
	if st.Opacity != nil {
		o := *st.Opacity
		st.Opacity = &o
	}
	return st, true
}

func (d *Document) stickerIndex(id string) int {
	return slices.IndexFunc(d.stickers, func(s template.Sticker) bool { return s.ID == id })
}

// Select sets the locally selected layer. Selection is never shared.
func (d *Document) Select(layerID string) {
	d.mu.Lock()
	d.selection = layerID
	d.mu.Unlock()
}

// Selection returns the locally selected layer id.
func (d *Document) Selection() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selection
}

// Version increases with every content change. Selection changes do not
// count.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Snapshot returns a deep copy of the document content.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := Snapshot{
		FormData:      maps.Clone(d.formData),
		SlotContent:   maps.Clone(d.slotContent),
		SlotTransform: make(map[string]SlotAdjustment, len(d.slotTransform)),
		Stickers:      slices.Clone(d.stickers),
		Version:       d.version,
	}
	for k, v := range d.slotTransform {
		s.SlotTransform[k] = v.Clone()
	}
	return s
}

// Load replaces the document content with s.
func (d *Document) Load(s Snapshot) {
	d.update(func() {
		d.formData = maps.Clone(s.FormData)
		d.slotContent = maps.Clone(s.SlotContent)
		d.slotTransform = make(map[string]SlotAdjustment, len(s.SlotTransform))
		for k, v := range s.SlotTransform {
			d.slotTransform[k] = v.Clone()
		}
		d.stickers = slices.Clone(s.Stickers)
		if d.formData == nil {
			d.formData = make(map[string]string)
		}
		if d.slotContent == nil {
			d.slotContent = make(map[string]string)
		}
	})
}

// Snapshot is a read-only view of a document.
type Snapshot struct {
	FormData      map[string]string         `json:"formData,omitempty"`
	SlotContent   map[string]string         `json:"slotContent,omitempty"`
	SlotTransform map[string]SlotAdjustment `json:"slotTransform,omitempty"`
	Stickers      []template.Sticker        `json:"stickers,omitempty"`
	Version       uint64                    `json:"-"`
}

// Value returns the entered value of a text field, or nil.
func (s Snapshot) Value(fieldID string) *string {
	v, ok := s.FormData[fieldID]
	if !ok {
		return nil
	}
	return &v
}

// Content returns the image reference assigned to a slot, or "".
func (s Snapshot) Content(slotID string) string { return s.SlotContent[slotID] }

// Adjustment returns a slot's adjustment, or the default one.
func (s Snapshot) Adjustment(slotID string) SlotAdjustment {
	if adj, ok := s.SlotTransform[slotID]; ok {
		return adj
	}
	return compositor.DefaultAdjustment()
}

// Sticker returns the sticker with the given id.
func (s Snapshot) Sticker(id string) (template.Sticker, bool) {
	i := slices.IndexFunc(s.Stickers, func(st template.Sticker) bool { return st.ID == id })
	if i < 0 {
		return template.Sticker{}, false
	}
	return s.Stickers[i], true
}

// DecodeSnapshot reads a JSON document. Adjustment fields that are
// absent keep their defaults, so {"x": 0.2} still has scale and opacity 1.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var raw struct {
		FormData      map[string]string          `json:"formData"`
		SlotContent   map[string]string          `json:"slotContent"`
		SlotTransform map[string]json.RawMessage `json:"slotTransform"`
		Stickers      []template.Sticker         `json:"stickers"`
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("scene: decode document: %w", err)
	}
	s := Snapshot{
		FormData:      raw.FormData,
		SlotContent:   raw.SlotContent,
		SlotTransform: make(map[string]SlotAdjustment, len(raw.SlotTransform)),
		Stickers:      raw.Stickers,
	}
	for id, msg := range raw.SlotTransform {
		adj := compositor.DefaultAdjustment()
		if err := json.Unmarshal(msg, &adj); err != nil {
			return Snapshot{}, fmt.Errorf("scene: decode slotTransform %q: %w", id, err)
		}
		s.SlotTransform[id] = adj
	}
	return s, nil
}
