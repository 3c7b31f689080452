package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/collab"
	"github.com/gogpu/pairkit/compositor"
	"github.com/gogpu/pairkit/content"
	"github.com/gogpu/pairkit/interact"
	"github.com/gogpu/pairkit/resolve"
	"github.com/gogpu/pairkit/scene"
	"github.com/gogpu/pairkit/template"
)

var (
	// ErrUnknownLayer is returned for a layer id the template and the
	// document do not know.
	ErrUnknownLayer = errors.New("editor: unknown layer")

	// ErrClosed is returned by edits after Close.
	ErrClosed = errors.New("editor: closed")
)

// DefaultPublishTimeout bounds how long a local edit waits for the
// collaboration channel.
const DefaultPublishTimeout = 2 * time.Second

// Option configures an Editor.
type Option func(*options)

type options struct {
	loader         content.Loader
	publishTimeout time.Duration
	assembler      []scene.Option
}

func defaultOptions() options {
	return options{publishTimeout: DefaultPublishTimeout}
}

// WithLoader sets the content loader of the assembler New creates when it
// is given none.
func WithLoader(l content.Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithAssemblerOptions passes options to the assembler New creates when it
// is given none.
func WithAssemblerOptions(opts ...scene.Option) Option {
	return func(o *options) { o.assembler = append(o.assembler, opts...) }
}

// WithPublishTimeout bounds publishing a local edit. Zero or less disables
// the bound.
func WithPublishTimeout(d time.Duration) Option {
	return func(o *options) { o.publishTimeout = d }
}

// Editor is the document owner of one participant. It is safe for
// concurrent use.
type Editor struct {
	tpl     *template.Template
	asm     *scene.Assembler
	doc     *scene.Document
	session *collab.Session
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// New returns an editor for tpl. A nil assembler gets a new one with an
// empty document. A nil session edits solo. The editor becomes the
// session's edit sink.
func New(tpl *template.Template, asm *scene.Assembler, session *collab.Session, opts ...Option) *Editor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if asm == nil {
		asm = scene.NewAssembler(tpl, nil, o.loader, o.assembler...)
	}
	if tpl == nil {
		tpl = asm.Template()
	}
	e := &Editor{
		tpl:     tpl,
		asm:     asm,
		doc:     asm.Document(),
		session: session,
		timeout: o.publishTimeout,
	}
	session.SetEditSink(e)
	return e
}

// Template returns the template being edited.
func (e *Editor) Template() *template.Template { return e.tpl }

// Document returns the edited document.
func (e *Editor) Document() *scene.Document { return e.doc }

// Session returns the collaboration session, nil when editing solo.
func (e *Editor) Session() *collab.Session { return e.session }

// Assembler returns the scene assembler.
func (e *Editor) Assembler() *scene.Assembler { return e.asm }

func (e *Editor) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Select changes the local selection. A selection in a zone held by
// someone else raises a conflict on the session.
func (e *Editor) Select(ctx context.Context, layerID string) error {
	if e.isClosed() {
		return ErrClosed
	}
	if layerID != "" && !e.known(layerID) {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layerID)
	}
	e.doc.Select(layerID)
	ctx, cancel := e.publishContext(ctx)
	defer cancel()
	if err := e.session.Select(ctx, layerID); err != nil {
		pairkit.Logger().Warn("editor: selection not shared", "layer", layerID, "error", err)
	}
	return nil
}

// SetText sets a text field. A nil value clears it so the field shows its
// default.
func (e *Editor) SetText(ctx context.Context, fieldID string, value *string) error {
	if e.isClosed() {
		return ErrClosed
	}
	if _, ok := e.tpl.TextField(fieldID); !ok {
		return fmt.Errorf("%w: text field %q", ErrUnknownLayer, fieldID)
	}
	if err := e.session.Permit(fieldID, ""); err != nil {
		return err
	}
	applyText(e.doc, fieldID, value)
	e.propose(ctx, collab.Edit{Kind: collab.EditText, LayerID: fieldID, Text: value})
	return nil
}

// SetSlotImage assigns content to an image slot. An empty ref clears it.
func (e *Editor) SetSlotImage(ctx context.Context, slotID, ref string) error {
	if e.isClosed() {
		return ErrClosed
	}
	if _, ok := e.tpl.ImageSlot(slotID); !ok {
		return fmt.Errorf("%w: image slot %q", ErrUnknownLayer, slotID)
	}
	if err := e.session.Permit(slotID, ""); err != nil {
		return err
	}
	e.doc.SetSlotContent(slotID, ref)
	e.propose(ctx, collab.Edit{Kind: collab.EditSlotImage, LayerID: slotID, ImageRef: ref})
	return nil
}

// EndSlotGesture folds a finished gesture into the slot's adjustment and
// returns the new adjustment.
func (e *Editor) EndSlotGesture(ctx context.Context, slotID string, g interact.SlotGesture) (compositor.Adjustment, error) {
	if e.isClosed() {
		return compositor.Adjustment{}, ErrClosed
	}
	slot, ok := e.tpl.ImageSlot(slotID)
	if !ok {
		return compositor.Adjustment{}, fmt.Errorf("%w: image slot %q", ErrUnknownLayer, slotID)
	}
	if err := e.session.Permit(slotID, ""); err != nil {
		return compositor.Adjustment{}, err
	}
	w, h := slot.Transform.Size()
	adj := e.doc.UpdateSlotAdjustment(slotID, func(a scene.SlotAdjustment) scene.SlotAdjustment {
		return interact.EndSlotGesture(a, w, h, g)
	})
	shared := adj.Clone()
	e.propose(ctx, collab.Edit{Kind: collab.EditSlotAdjustment, LayerID: slotID, Adjustment: &shared})
	return adj, nil
}

// SetSlotAdjustment replaces the adjustment of an image slot.
func (e *Editor) SetSlotAdjustment(ctx context.Context, slotID string, adj compositor.Adjustment) error {
	if e.isClosed() {
		return ErrClosed
	}
	if _, ok := e.tpl.ImageSlot(slotID); !ok {
		return fmt.Errorf("%w: image slot %q", ErrUnknownLayer, slotID)
	}
	if err := e.session.Permit(slotID, ""); err != nil {
		return err
	}
	e.doc.SetSlotAdjustment(slotID, adj.Clone())
	shared := adj.Clone()
	e.propose(ctx, collab.Edit{Kind: collab.EditSlotAdjustment, LayerID: slotID, Adjustment: &shared})
	return nil
}

// AddSticker places a sticker showing ref in box and returns it. The box
// is raised to the minimum sticker size.
func (e *Editor) AddSticker(ctx context.Context, ref string, box resolve.Transform) (template.Sticker, error) {
	if e.isClosed() {
		return template.Sticker{}, ErrClosed
	}
	st := template.Sticker{
		ID:       "sticker-" + uuid.NewString(),
		ImageRef: ref,
		Box:      interact.EndStickerTransform(box, interact.StickerGesture{}),
	}
	if err := e.session.Permit(st.ID, e.tpl.ZoneAt(st.Box.Bounds().Center())); err != nil {
		return template.Sticker{}, err
	}
	e.doc.AddSticker(st)
	e.proposeSticker(ctx, st)
	return st, nil
}

// EndStickerGesture applies a finished gesture to a sticker's box.
func (e *Editor) EndStickerGesture(ctx context.Context, id string, g interact.StickerGesture) (template.Sticker, error) {
	if e.isClosed() {
		return template.Sticker{}, ErrClosed
	}
	cur, ok := e.doc.Sticker(id)
	if !ok {
		return template.Sticker{}, fmt.Errorf("%w: sticker %q", ErrUnknownLayer, id)
	}
	box := interact.EndStickerTransform(cur.Box, g)
	if err := e.session.Permit(id, e.tpl.ZoneAt(box.Bounds().Center())); err != nil {
		return template.Sticker{}, err
	}
	st, err := e.doc.UpdateSticker(id, func(st template.Sticker) template.Sticker {
		st.Box = box
		return st
	})
	if err != nil {
		return template.Sticker{}, fmt.Errorf("%w: %w", ErrUnknownLayer, err)
	}
	e.proposeSticker(ctx, st)
	return st, nil
}

// FlipSticker mirrors a sticker horizontally or vertically.
func (e *Editor) FlipSticker(ctx context.Context, id string, horizontal bool) (template.Sticker, error) {
	if e.isClosed() {
		return template.Sticker{}, ErrClosed
	}
	if err := e.session.Permit(id, ""); err != nil {
		return template.Sticker{}, err
	}
	st, err := e.doc.UpdateSticker(id, func(st template.Sticker) template.Sticker {
		if horizontal {
			st.FlipX = !st.FlipX
		} else {
			st.FlipY = !st.FlipY
		}
		return st
	})
	if err != nil {
		return template.Sticker{}, fmt.Errorf("%w: %w", ErrUnknownLayer, err)
	}
	e.proposeSticker(ctx, st)
	return st, nil
}

// RemoveSticker deletes a sticker.
func (e *Editor) RemoveSticker(ctx context.Context, id string) error {
	if e.isClosed() {
		return ErrClosed
	}
	if err := e.session.Permit(id, ""); err != nil {
		return err
	}
	zone := stickerZone(e.tpl, e.doc, id)
	if err := e.doc.RemoveSticker(id); err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownLayer, err)
	}
	e.propose(ctx, collab.Edit{Kind: collab.EditRemoveSticker, LayerID: id, Zone: zone})
	return nil
}

func (e *Editor) proposeSticker(ctx context.Context, st template.Sticker) {
	shared := st
	e.propose(ctx, collab.Edit{
		Kind:    collab.EditSticker,
		LayerID: st.ID,
		Zone:    e.tpl.ZoneAt(st.Box.Bounds().Center()),
		Sticker: &shared,
	})
}

// propose shares a local edit that is already applied. Sharing failures
// leave the document as it is.
func (e *Editor) propose(ctx context.Context, ed collab.Edit) {
	if e.session == nil {
		return
	}
	ctx, cancel := e.publishContext(ctx)
	defer cancel()
	if _, err := e.session.ProposeEdit(ctx, ed); err != nil {
		pairkit.Logger().Warn("editor: edit not shared", "layer", ed.LayerID, "kind", ed.Kind, "error", err)
	}
}

func (e *Editor) publishContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

// HitTest returns the topmost layer under the canvas point.
func (e *Editor) HitTest(x, y float64) string {
	return interact.HitTest(e.asm.Render(), x, y)
}

// Render returns the current scene without blocking on content.
func (e *Editor) Render() *scene.Tree {
	return e.asm.Render()
}

// Export resolves all content and sends the encoded canvas to sink.
func (e *Editor) Export(ctx context.Context, opts scene.ExportOptions, sink scene.Sink) error {
	if e.isClosed() {
		return ErrClosed
	}
	return e.asm.Export(ctx, opts, sink)
}

// Close stops compositing and loading, then leaves the session. It is
// safe to call more than once.
func (e *Editor) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.asm.Close()
	if err := e.session.Leave(ctx); err != nil {
		return fmt.Errorf("editor: leave: %w", err)
	}
	return nil
}

func (e *Editor) known(layerID string) bool {
	if _, ok := e.tpl.Layer(layerID); ok {
		return true
	}
	_, ok := e.doc.Sticker(layerID)
	return ok
}

func applyText(doc *scene.Document, fieldID string, value *string) {
	if value == nil {
		doc.ClearText(fieldID)
		return
	}
	doc.SetText(fieldID, *value)
}
