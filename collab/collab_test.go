package collab

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/pairkit/resolve"
	"github.com/gogpu/pairkit/template"
)

func ptr[T any](v T) *T { return &v }

// pairTemplate has zone A on the left and zone B on the right; "title"
// lies outside both.
func pairTemplate() *template.Template {
	return &template.Template{
		CanvasSize: template.Size{Width: 100, Height: 140},
		ImageSlots: []template.ImageSlot{
			{ID: "left-photo", Transform: resolve.Transform{X: 5, Y: 5, Width: 40, Height: 80}},
			{ID: "right-photo", Transform: resolve.Transform{X: 55, Y: 5, Width: 40, Height: 80}},
		},
		TextFields: []template.TextField{
			{ID: "title", Transform: resolve.Transform{X: 0, Y: 110, Width: 100, Height: 20}},
		},
		Zones: []template.Zone{
			{ID: "A", Rect: template.ZoneRect{Width: 50, Height: 100}},
			{ID: "B", Rect: template.ZoneRect{X: 50, Width: 50, Height: 100}},
		},
	}
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// fakeChannel records what a session does with its transport.
type fakeChannel struct {
	mu        sync.Mutex
	ops       []string
	published []Event
	events    chan Event
	closeOnce sync.Once
	joinErr   error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan Event, 16)}
}

func (c *fakeChannel) record(op string) {
	c.mu.Lock()
	c.ops = append(c.ops, op)
	c.mu.Unlock()
}

func (c *fakeChannel) Join(_ context.Context, sessionID string, _ User) error {
	c.record("join:" + sessionID)
	return c.joinErr
}

func (c *fakeChannel) Publish(_ context.Context, e Event) error {
	c.mu.Lock()
	c.ops = append(c.ops, "publish:"+string(e.Type))
	c.published = append(c.published, e)
	c.mu.Unlock()
	return nil
}

func (c *fakeChannel) Events() <-chan Event { return c.events }

func (c *fakeChannel) Close() error {
	c.record("close")
	c.closeOnce.Do(func() { close(c.events) })
	return nil
}

func (c *fakeChannel) Ops() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ops...)
}

func (c *fakeChannel) count(t EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.published {
		if e.Type == t {
			n++
		}
	}
	return n
}

type sinkLog struct {
	mu    sync.Mutex
	edits []Edit
	err   error
}

func (s *sinkLog) ApplyRemoteEdit(e Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, e)
	return s.err
}

func (s *sinkLog) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.edits {
		if e.Text != nil {
			out = append(out, *e.Text)
		}
	}
	return out
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func remoteEvent(typ EventType, id, user string, wall time.Time, clock uint64) Event {
	return Event{ID: id, Type: typ, User: User{ID: user, DisplayName: strings.ToUpper(user)}, Wall: wall, Clock: clock}
}

func textEdit(layer, value string) Edit {
	return Edit{Kind: EditText, LayerID: layer, Text: ptr(value)}
}

func TestTwoParticipantScenario(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	tpl := pairTemplate()
	alice := NewSession(tpl, User{ID: "alice", DisplayName: "Alice"}, hub.Channel())
	bob := NewSession(tpl, User{ID: "bob", DisplayName: "Bob"}, hub.Channel())
	for _, s := range []*Session{alice, bob} {
		go s.Run(ctx)
	}

	if err := alice.Join(ctx, "pair-1"); err != nil {
		t.Fatal(err)
	}
	if err := bob.Join(ctx, "pair-1"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "both connected", func() bool {
		return alice.State().Connected() && bob.State().Connected()
	})
	eventually(t, "mutual presence", func() bool {
		return len(alice.Remotes()) == 1 && len(bob.Remotes()) == 1
	})

	if err := alice.ClaimZone(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "bob sees alice's claim", func() bool { return bob.ZoneOwner("A") == "alice" })
	if got := alice.ZoneOwner("A"); got != "alice" {
		t.Errorf("alice's view of zone A = %q", got)
	}

	if err := bob.Select(ctx, "left-photo"); err != nil {
		t.Fatal(err)
	}
	want := Conflict{UserID: "alice", UserName: "Alice", LayerID: "left-photo"}
	if c := bob.Conflict(); c == nil || *c != want {
		t.Fatalf("bob's conflict = %+v, want %+v", c, want)
	}

	if err := alice.Select(ctx, "left-photo"); err != nil {
		t.Fatal(err)
	}
	if _, err := alice.ProposeEdit(ctx, Edit{Kind: EditSlotImage, LayerID: "left-photo", ImageRef: "cat"}); err != nil {
		t.Fatal(err)
	}
	if c := alice.Conflict(); c != nil {
		t.Errorf("alice's own zone raised %+v", c)
	}

	if err := bob.ClaimZone(ctx, "A"); !errors.Is(err, ErrZoneOwned) {
		t.Errorf("bob claiming A: %v, want ErrZoneOwned", err)
	}
	if err := bob.Select(ctx, "right-photo"); err != nil {
		t.Fatal(err)
	}
	if c := bob.Conflict(); c != nil {
		t.Errorf("selection change kept conflict %+v", c)
	}

	if err := alice.Leave(ctx); err != nil {
		t.Fatal(err)
	}
	eventually(t, "zone released after leave", func() bool {
		return bob.ZoneOwner("A") == "" && len(bob.Remotes()) == 0
	})
}

func TestLateJoinerLearnsClaims(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	tpl := pairTemplate()
	alice := NewSession(tpl, User{ID: "alice"}, hub.Channel())
	go alice.Run(ctx)
	if err := alice.Join(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "alice connected", func() bool { return alice.State().Connected() })
	if err := alice.ClaimZone(ctx, "B"); err != nil {
		t.Fatal(err)
	}

	bob := NewSession(tpl, User{ID: "bob"}, hub.Channel())
	go bob.Run(ctx)
	if err := bob.Join(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "bob learns the claim", func() bool { return bob.ZoneOwner("B") == "alice" })
}

func TestRemoteEditsAreDedupedAndLastWriteWins(t *testing.T) {
	sink := &sinkLog{}
	s := NewSession(pairTemplate(), User{ID: "me"}, nil, WithEditSink(sink))
	ctx := context.Background()
	t0 := newClock().now()

	newer := remoteEvent(EventEdit, "e1", "bob", t0.Add(2*time.Second), 4)
	newer.Edit = ptr(textEdit("title", "new"))
	older := remoteEvent(EventEdit, "e2", "bob", t0.Add(time.Second), 3)
	older.Edit = ptr(textEdit("title", "old"))

	s.Receive(ctx, newer)
	s.Receive(ctx, newer)
	s.Receive(ctx, older)

	if got := sink.texts(); len(got) != 1 || got[0] != "new" {
		t.Errorf("sink received %v, want [new]", got)
	}
	if edits := s.Edits(""); len(edits) != 1 || edits[0].User != "bob" {
		t.Errorf("zone log = %+v", edits)
	}

	// Edits of other layers are independent.
	other := remoteEvent(EventEdit, "e3", "carol", t0, 1)
	other.Edit = ptr(Edit{Kind: EditSlotImage, LayerID: "left-photo", ImageRef: "cat"})
	s.Receive(ctx, other)
	if len(sink.edits) != 2 || sink.edits[1].Zone != "A" {
		t.Errorf("independent edit not forwarded with its zone: %+v", sink.edits)
	}
}

func TestClaimsAreLastWriteWinsPerZone(t *testing.T) {
	t0 := newClock().now()
	tests := []struct {
		name  string
		first Event
		then  Event
		want  string
	}{
		{
			"later wall clock wins",
			remoteEvent(EventClaim, "c1", "carol", t0.Add(5*time.Second), 1),
			remoteEvent(EventClaim, "c2", "dave", t0.Add(3*time.Second), 9),
			"carol",
		},
		{
			"equal wall clock falls back to logical clock",
			remoteEvent(EventClaim, "c1", "carol", t0, 2),
			remoteEvent(EventClaim, "c2", "dave", t0, 3),
			"dave",
		},
		{
			"full tie falls back to user id",
			remoteEvent(EventClaim, "c1", "dave", t0, 2),
			remoteEvent(EventClaim, "c2", "carol", t0, 2),
			"dave",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(pairTemplate(), User{ID: "me"}, nil)
			tt.first.Zone, tt.then.Zone = "A", "A"
			s.Receive(context.Background(), tt.first)
			s.Receive(context.Background(), tt.then)
			if got := s.ZoneOwner("A"); got != tt.want {
				t.Errorf("owner = %q, want %q", got, tt.want)
			}
			// Arrival order does not matter.
			r := NewSession(pairTemplate(), User{ID: "me"}, nil)
			r.Receive(context.Background(), tt.then)
			r.Receive(context.Background(), tt.first)
			if got := r.ZoneOwner("A"); got != tt.want {
				t.Errorf("reversed owner = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClaimMovesBetweenZones(t *testing.T) {
	s := NewSession(pairTemplate(), User{ID: "me"}, nil)
	t0 := newClock().now()
	a := remoteEvent(EventClaim, "c1", "bob", t0, 1)
	a.Zone = "A"
	b := remoteEvent(EventClaim, "c2", "bob", t0.Add(time.Second), 2)
	b.Zone = "B"
	s.Receive(context.Background(), a)
	s.Receive(context.Background(), b)
	if s.ZoneOwner("A") != "" || s.ZoneOwner("B") != "bob" {
		t.Errorf("owners A=%q B=%q, want A released and B bob", s.ZoneOwner("A"), s.ZoneOwner("B"))
	}
	release := remoteEvent(EventClaim, "c3", "bob", t0.Add(2*time.Second), 3)
	s.Receive(context.Background(), release)
	if s.ZoneOwner("B") != "" {
		t.Error("empty claim did not release")
	}
	if r := s.Remotes(); len(r) != 1 || r[0].Zone != "" {
		t.Errorf("remote zone = %+v", r)
	}
}

func TestMalformedEventsAreDropped(t *testing.T) {
	sink := &sinkLog{}
	s := NewSession(pairTemplate(), User{ID: "me"}, nil, WithEditSink(sink))
	t0 := newClock().now()
	bad := []Event{
		{Type: EventPresence, User: User{ID: "bob"}},
		{ID: "x1", Type: EventPresence},
		{ID: "x2", Type: "teleport", User: User{ID: "bob"}},
		{ID: "x3", Type: EventEdit, User: User{ID: "bob"}},
		{ID: "x4", Type: EventEdit, User: User{ID: "bob"}, Edit: &Edit{Kind: "paint", LayerID: "title"}},
		{ID: "x5", Type: EventEdit, User: User{ID: "bob"}, Edit: &Edit{Kind: EditSlotAdjustment, LayerID: "left-photo"}},
	}
	for _, e := range bad {
		e.Wall = t0
		if err := e.Validate(); !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("Validate(%+v) = %v, want ErrMalformedEvent", e, err)
		}
		s.Receive(context.Background(), e)
	}
	if len(sink.edits) != 0 || len(s.Remotes()) != 0 {
		t.Errorf("malformed events had effects: edits=%v remotes=%v", sink.edits, s.Remotes())
	}

	// An unknown zone is ignored but the sender is still present.
	claim := remoteEvent(EventClaim, "c1", "bob", t0, 1)
	claim.Zone = "Z"
	s.Receive(context.Background(), claim)
	if s.ZoneOwner("Z") != "" || len(s.Remotes()) != 1 {
		t.Error("claim of an unknown zone was applied")
	}
}

func TestEventCodec(t *testing.T) {
	e := remoteEvent(EventEdit, "e1", "bob", newClock().now(), 7)
	e.Edit = ptr(textEdit("title", "hello"))
	data, err := EncodeEvent(e)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "e1" || got.Clock != 7 || !got.Wall.Equal(e.Wall) || *got.Edit.Text != "hello" {
		t.Errorf("decoded %+v", got)
	}
	for _, in := range []string{"{", `{"id":"x"}`, `{"id":"x","type":"edit","user":{"id":"u"}}`} {
		if _, err := DecodeEvent([]byte(in)); !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("DecodeEvent(%s) error = %v, want ErrMalformedEvent", in, err)
		}
	}
	if _, err := EncodeEvent(Event{}); !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("EncodeEvent of an empty event: %v", err)
	}
}

func TestConcurrentEditRaisesConflict(t *testing.T) {
	clock := newClock()
	sink := &sinkLog{}
	s := NewSession(pairTemplate(), User{ID: "me"}, nil, WithEditSink(sink), WithClock(clock.now))
	ctx := context.Background()

	local, err := s.ProposeEdit(ctx, textEdit("title", "mine"))
	if err != nil {
		t.Fatal(err)
	}
	if local.User != "me" || local.Clock == 0 || local.ID == "" {
		t.Errorf("local edit not stamped: %+v", local)
	}
	if s.Conflict() != nil {
		t.Fatal("editing an unzoned layer raised a conflict")
	}

	near := remoteEvent(EventEdit, "r1", "bob", clock.now().Add(500*time.Millisecond), 1)
	near.Edit = ptr(textEdit("title", "theirs"))
	s.Receive(ctx, near)
	c := s.Conflict()
	if c == nil || c.UserID != "bob" || c.UserName != "BOB" || c.LayerID != "title" {
		t.Fatalf("conflict = %+v", c)
	}
	// Conflicts never discard: the newer remote edit still reaches the document.
	if got := sink.texts(); len(got) != 1 || got[0] != "theirs" {
		t.Errorf("sink = %v", got)
	}

	s.DismissConflict()
	far := remoteEvent(EventEdit, "r2", "bob", clock.now().Add(10*time.Second), 2)
	far.Edit = ptr(textEdit("title", "later"))
	s.Receive(ctx, far)
	if c := s.Conflict(); c != nil {
		t.Errorf("edit outside the ambiguity window raised %+v", c)
	}
}

func TestEditInOwnedZoneRaisesConflict(t *testing.T) {
	s := NewSession(pairTemplate(), User{ID: "me"}, nil)
	claim := remoteEvent(EventClaim, "c1", "bob", newClock().now(), 1)
	claim.Zone = "B"
	s.Receive(context.Background(), claim)

	e, err := s.ProposeEdit(context.Background(), Edit{Kind: EditSlotImage, LayerID: "right-photo", ImageRef: "dog"})
	if err != nil {
		t.Fatal(err)
	}
	if e.Zone != "B" {
		t.Errorf("edit zone = %q, want B", e.Zone)
	}
	if c := s.Conflict(); c == nil || c.UserID != "bob" {
		t.Errorf("conflict = %+v, want bob", c)
	}
	if edits := s.Edits("B"); len(edits) != 1 {
		t.Errorf("zone B log = %+v", edits)
	}
}

func TestPresenceDecay(t *testing.T) {
	clock := newClock()
	s := NewSession(pairTemplate(), User{ID: "me"}, nil, WithClock(clock.now))
	ctx := context.Background()

	claim := remoteEvent(EventClaim, "c1", "bob", clock.now(), 1)
	claim.Zone = "A"
	s.Receive(ctx, claim)
	if err := s.Select(ctx, "left-photo"); err != nil {
		t.Fatal(err)
	}
	if s.Conflict() == nil {
		t.Fatal("no conflict in bob's zone")
	}

	if n := s.Prune(clock.now().Add(4 * time.Second)); n != 0 {
		t.Errorf("Prune before the window dropped %d", n)
	}
	if s.ZoneOwner("A") != "bob" {
		t.Error("zone released too early")
	}
	if n := s.Prune(clock.now().Add(6 * time.Second)); n != 1 {
		t.Errorf("Prune after the window dropped %d, want 1", n)
	}
	if s.ZoneOwner("A") != "" || len(s.Remotes()) != 0 {
		t.Error("inactive participant kept its zone")
	}
	if s.Conflict() != nil {
		t.Error("conflict with a departed participant remains")
	}
}

func TestClaimZone(t *testing.T) {
	ch := newFakeChannel()
	s := NewSession(pairTemplate(), User{ID: "me"}, ch)
	ctx := context.Background()
	if err := s.Join(ctx, "s"); err != nil {
		t.Fatal(err)
	}

	if err := s.ClaimZone(ctx, "Q"); !errors.Is(err, ErrUnknownZone) {
		t.Errorf("unknown zone: %v", err)
	}
	for range 3 {
		if err := s.ClaimZone(ctx, "A"); err != nil {
			t.Fatal(err)
		}
	}
	if n := ch.count(EventClaim); n != 1 {
		t.Errorf("repeated claims published %d events, want 1", n)
	}
	if s.OwnedZone() != "A" || s.LayerOwner("left-photo") != "me" {
		t.Errorf("owned zone %q, layer owner %q", s.OwnedZone(), s.LayerOwner("left-photo"))
	}
	if err := s.ClaimZone(ctx, "B"); err != nil {
		t.Fatal(err)
	}
	if s.ZoneOwner("A") != "" || s.ZoneOwner("B") != "me" {
		t.Error("claiming B did not release A")
	}
	if err := s.ClaimZone(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if s.OwnedZone() != "" {
		t.Error("empty claim did not release")
	}
}

func TestJoinStates(t *testing.T) {
	ch := newFakeChannel()
	s := NewSession(pairTemplate(), User{ID: "me"}, ch)
	notices := s.Subscribe()
	ctx := context.Background()

	if err := s.Join(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateConnecting {
		t.Fatalf("state after Join = %v", s.State())
	}
	if err := s.Join(ctx, "s"); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("second Join: %v", err)
	}
	s.Receive(ctx, Event{ID: "ack", Type: EventAck, User: User{ID: "me"}})
	if s.State() != StateConnected {
		t.Fatalf("state after ack = %v", s.State())
	}
	if got := (<-notices).State; got != StateConnecting {
		t.Errorf("first notice state = %v", got)
	}
	if got := (<-notices).State; got != StateConnected {
		t.Errorf("second notice state = %v", got)
	}

	failing := newFakeChannel()
	failing.joinErr = errors.New("offline")
	f := NewSession(pairTemplate(), User{ID: "me"}, failing)
	if err := f.Join(ctx, "s"); err == nil || f.State() != StateDisconnected {
		t.Errorf("failed join: err=%v state=%v", err, f.State())
	}
}

func TestLeavePublishesBeforeClose(t *testing.T) {
	ch := newFakeChannel()
	s := NewSession(pairTemplate(), User{ID: "me"}, ch)
	notices := s.Subscribe()
	ctx := context.Background()
	if err := s.Join(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	if err := s.Leave(ctx); err != nil {
		t.Fatal(err)
	}
	ops := ch.Ops()
	want := []string{"join:s", "publish:join", "publish:leave", "close"}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Errorf("ops = %v, want %v", ops, want)
	}
	if s.State() != StateDisconnected {
		t.Errorf("state after Leave = %v", s.State())
	}
	for range notices {
	}
}

func TestChannelDropDegradesToSolo(t *testing.T) {
	ch := newFakeChannel()
	s := NewSession(pairTemplate(), User{ID: "me"}, ch)
	ctx := context.Background()
	if err := s.Join(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	ch.events <- Event{ID: "ack", Type: EventAck, User: User{ID: "me"}}
	p := remoteEvent(EventPresence, "p1", "bob", time.Now(), 1)
	ch.events <- p
	ch.Close()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil on channel close", err)
	}
	if s.State() != StateDisconnected || len(s.Remotes()) != 0 {
		t.Errorf("state %v remotes %v after drop", s.State(), s.Remotes())
	}
	// Local editing keeps working.
	if _, err := s.ProposeEdit(ctx, textEdit("title", "solo")); err != nil {
		t.Errorf("ProposeEdit in solo mode: %v", err)
	}
}

func TestRejectedEditIsReported(t *testing.T) {
	sink := &sinkLog{err: ErrRejected}
	s := NewSession(pairTemplate(), User{ID: "me"}, nil, WithEditSink(sink))
	notices := s.Subscribe()
	e := remoteEvent(EventEdit, "e1", "bob", time.Now(), 1)
	e.Edit = ptr(textEdit("title", "x"))
	s.Receive(context.Background(), e)
	for {
		select {
		case n := <-notices:
			if n.Kind == NoticeRejected {
				if n.UserID != "bob" || n.Edit == nil || n.Edit.LayerID != "title" {
					t.Errorf("notice = %+v", n)
				}
				return
			}
		default:
			t.Fatal("no rejection notice")
		}
	}
}

func TestNilSessionIsSolo(t *testing.T) {
	var s *Session
	ctx := context.Background()
	if err := s.Join(ctx, "x"); err != nil {
		t.Error(err)
	}
	if err := s.ClaimZone(ctx, "A"); err != nil {
		t.Error(err)
	}
	if err := s.Select(ctx, "title"); err != nil {
		t.Error(err)
	}
	if err := s.MoveCursor(ctx, 1, 2); err != nil {
		t.Error(err)
	}
	e := textEdit("title", "v")
	got, err := s.ProposeEdit(ctx, e)
	if err != nil || got.LayerID != "title" {
		t.Errorf("ProposeEdit = %+v, %v", got, err)
	}
	s.Receive(ctx, Event{})
	s.DismissConflict()
	if s.ZoneOwner("A") != "" || s.Conflict() != nil || s.State() != StateDisconnected ||
		s.Prune(time.Now()) != 0 || s.Subscribe() != nil || s.Remotes() != nil {
		t.Error("nil session reported collaboration state")
	}
	if err := s.Run(ctx); err != nil {
		t.Error(err)
	}
	if err := s.Leave(ctx); err != nil {
		t.Error(err)
	}
}

func TestPresenceColor(t *testing.T) {
	a := PresenceColor("alice")
	if a != PresenceColor("alice") {
		t.Error("presence color is not deterministic")
	}
	if len(a) != 7 || a[0] != '#' {
		t.Errorf("PresenceColor = %q, want #rrggbb", a)
	}
	u := NewUser("Zoe")
	if u.ID == "" || u.Color != PresenceColor(u.ID) || u.DisplayName != "Zoe" {
		t.Errorf("NewUser = %+v", u)
	}
}

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte("inactivity_window: 1500ms\ndedup_capacity: 10\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.InactivityWindow != 1500*time.Millisecond || c.DedupCapacity != 10 {
		t.Errorf("config = %+v", c)
	}
	if c.AmbiguityWindow != DefaultConfig().AmbiguityWindow || c.PruneInterval != time.Second {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.HeartbeatInterval != 750*time.Millisecond {
		t.Errorf("heartbeat = %v, want half the inactivity window", c.HeartbeatInterval)
	}
	if d := DefaultConfig().HeartbeatInterval; d != time.Second {
		t.Errorf("default heartbeat = %v, want the prune interval", d)
	}
	if _, err := ParseConfig([]byte("inactivity_window: [")); err == nil {
		t.Error("invalid YAML accepted")
	}
}

func TestHubDeliversInOrder(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()
	a, b := hub.Channel(), hub.Channel()
	defer a.Close()
	defer b.Close()
	if err := a.Join(ctx, "s", User{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Join(ctx, "s", User{ID: "b"}); err != nil {
		t.Fatal(err)
	}
	if ack := <-b.Events(); ack.Type != EventAck || ack.User.ID != "b" {
		t.Fatalf("first event = %+v, want ack", ack)
	}
	<-a.Events() // a's ack
	for i := range 50 {
		if err := a.Publish(ctx, Event{ID: string(rune('A' + i)), Type: EventPresence, User: User{ID: "a"}}); err != nil {
			t.Fatal(err)
		}
	}
	for i := range 50 {
		if e := <-b.Events(); e.ID != string(rune('A'+i)) {
			t.Fatalf("event %d = %q", i, e.ID)
		}
	}
	if hub.Members("s") != 2 {
		t.Errorf("Members = %d", hub.Members("s"))
	}
	a.Close()
	if err := a.Publish(ctx, Event{ID: "late"}); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("publish after close: %v", err)
	}
	if _, ok := <-a.Events(); ok {
		t.Error("events still open after close")
	}
}

func TestIdleOwnerKeepsZone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := Config{InactivityWindow: 150 * time.Millisecond, PruneInterval: 20 * time.Millisecond}
	hub := NewHub()
	tpl := pairTemplate()
	alice := NewSession(tpl, User{ID: "alice"}, hub.Channel(), WithConfig(cfg))
	bob := NewSession(tpl, User{ID: "bob"}, hub.Channel(), WithConfig(cfg))
	for _, s := range []*Session{alice, bob} {
		go s.Run(ctx)
		if err := s.Join(ctx, "s"); err != nil {
			t.Fatal(err)
		}
	}
	eventually(t, "both connected", func() bool {
		return alice.State().Connected() && bob.State().Connected()
	})
	if err := alice.ClaimZone(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "bob sees the claim", func() bool { return bob.ZoneOwner("A") == "alice" })

	// Alice does nothing for several inactivity windows.
	deadline := time.Now().Add(4 * cfg.InactivityWindow)
	for time.Now().Before(deadline) {
		if got := bob.ZoneOwner("A"); got != "alice" {
			t.Fatalf("idle owner lost zone A to %q", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(bob.Remotes()) != 1 {
		t.Error("idle participant pruned")
	}
}

func TestHeartbeatResendsClaim(t *testing.T) {
	ch := newFakeChannel()
	clock := newClock()
	s := NewSession(pairTemplate(), User{ID: "me"}, ch, WithClock(clock.now))
	ctx := context.Background()
	if err := s.Heartbeat(ctx); err != nil || len(ch.Ops()) != 0 {
		t.Fatalf("heartbeat while disconnected: %v, ops %v", err, ch.Ops())
	}
	if err := s.Join(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	s.Receive(ctx, remoteEvent(EventAck, "ack", "me", clock.now(), 1))
	if err := s.ClaimZone(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	if err := s.Heartbeat(ctx); err != nil {
		t.Fatal(err)
	}
	if n := ch.count(EventClaim); n != 2 {
		t.Fatalf("claims published = %d, want 2", n)
	}
	if n := ch.count(EventPresence); n != 1 {
		t.Errorf("presence published = %d, want 1", n)
	}
	var claims []Event
	for _, e := range ch.published {
		if e.Type == EventClaim {
			claims = append(claims, e)
		}
	}
	first, again := claims[0], claims[1]
	if first.ID == again.ID || !first.Wall.Equal(again.Wall) || first.Clock != again.Clock || again.Zone != "A" {
		t.Errorf("resent claim %+v, first %+v", again, first)
	}
}

func TestResentClaimRestoresPrunedOwner(t *testing.T) {
	clock := newClock()
	s := NewSession(pairTemplate(), User{ID: "me"}, nil, WithClock(clock.now))
	ctx := context.Background()

	claim := remoteEvent(EventClaim, "c1", "alice", clock.now(), 1)
	claim.Zone = "A"
	s.Receive(ctx, claim)
	s.Prune(clock.now().Add(6 * time.Second))
	if got := s.ZoneOwner("A"); got != "" {
		t.Fatalf("pruned owner kept zone: %q", got)
	}

	again := claim
	again.ID = "c1-again"
	s.Receive(ctx, again)
	if got := s.ZoneOwner("A"); got != "alice" {
		t.Errorf("resent claim: owner %q, want alice", got)
	}

	// A newer claim is not undone by an older one resent.
	s.Prune(clock.now().Add(20 * time.Second))
	newer := remoteEvent(EventClaim, "c2", "carol", clock.now().Add(time.Second), 2)
	newer.Zone = "A"
	s.Receive(ctx, newer)
	late := claim
	late.ID = "c1-late"
	s.Receive(ctx, late)
	if got := s.ZoneOwner("A"); got != "carol" {
		t.Errorf("owner %q, want carol", got)
	}
}

func TestReturningParticipantIsGreeted(t *testing.T) {
	ch := newFakeChannel()
	clock := newClock()
	s := NewSession(pairTemplate(), User{ID: "me"}, ch, WithClock(clock.now))
	ctx := context.Background()
	if err := s.Join(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	s.Receive(ctx, remoteEvent(EventAck, "ack", "me", clock.now(), 1))
	if err := s.ClaimZone(ctx, "B"); err != nil {
		t.Fatal(err)
	}
	s.Receive(ctx, remoteEvent(EventPresence, "p1", "bob", clock.now(), 2))
	if n := ch.count(EventClaim); n != 2 {
		t.Fatalf("claims after bob appeared = %d, want 2", n)
	}
	s.Receive(ctx, remoteEvent(EventPresence, "p2", "bob", clock.now(), 3))
	if n := ch.count(EventClaim); n != 2 {
		t.Errorf("known participant greeted again: %d claims", n)
	}
}

func TestClaimOfSelectedLayerRaisesConflict(t *testing.T) {
	clock := newClock()
	s := NewSession(pairTemplate(), User{ID: "me"}, nil, WithClock(clock.now))
	ctx := context.Background()
	if err := s.Select(ctx, "left-photo"); err != nil {
		t.Fatal(err)
	}
	if s.Conflict() != nil {
		t.Fatal("conflict in a free zone")
	}
	claim := remoteEvent(EventClaim, "c1", "bob", clock.now(), 1)
	claim.Zone = "A"
	s.Receive(ctx, claim)
	want := Conflict{UserID: "bob", UserName: "BOB", LayerID: "left-photo"}
	if c := s.Conflict(); c == nil || *c != want {
		t.Errorf("conflict = %+v, want %+v", c, want)
	}
}

func TestPermit(t *testing.T) {
	clock := newClock()
	s := NewSession(pairTemplate(), User{ID: "me"}, nil, WithClock(clock.now))
	claim := remoteEvent(EventClaim, "c1", "bob", clock.now(), 1)
	claim.Zone = "A"
	s.Receive(context.Background(), claim)

	if err := s.Permit("right-photo", ""); err != nil {
		t.Errorf("free zone: %v", err)
	}
	if err := s.Permit("left-photo", ""); !errors.Is(err, ErrZoneOwned) {
		t.Errorf("bob's zone: %v, want ErrZoneOwned", err)
	}
	if c := s.Conflict(); c == nil || c.LayerID != "left-photo" {
		t.Errorf("conflict = %+v", c)
	}
	if err := s.Permit("title", "A"); !errors.Is(err, ErrZoneOwned) {
		t.Errorf("moving into bob's zone: %v, want ErrZoneOwned", err)
	}
	var none *Session
	if err := none.Permit("left-photo", "A"); err != nil {
		t.Errorf("nil session: %v", err)
	}
}
