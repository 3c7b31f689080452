package collab

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/cache"
)

var (
	// ErrAlreadyJoined is returned by Join on a session that is not
	// disconnected.
	ErrAlreadyJoined = errors.New("collab: session already joined")

	// ErrNoChannel is returned by Join on a session without a channel.
	ErrNoChannel = errors.New("collab: no channel")

	// ErrUnknownZone is returned when claiming a zone the template does
	// not declare.
	ErrUnknownZone = errors.New("collab: unknown zone")

	// ErrZoneOwned is returned when claiming a zone someone else holds.
	ErrZoneOwned = errors.New("collab: zone owned by another participant")
)

// ZoneMap classifies layers into editing zones. *template.Template
// implements it.
type ZoneMap interface {
	ZoneOf(layerID string) string
	ZoneIDs() []string
}

// Option configures a Session.
type Option func(*options)

type options struct {
	cfg  Config
	sink EditSink
	now  func() time.Time
}

// WithConfig sets the session tunables.
func WithConfig(c Config) Option {
	return func(o *options) { o.cfg = c }
}

// WithEditSink sets the owner of the document that receives remote edits.
func WithEditSink(s EditSink) Option {
	return func(o *options) { o.sink = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Session is one participant's view of a collaboration session. It is
// safe for concurrent use.
type Session struct {
	cfg   Config
	zones ZoneMap
	local User
	ch    Channel
	sink  EditSink
	now   func() time.Time
	seen  *cache.Cache[string, struct{}]

	mu         sync.Mutex
	state      State
	sessionID  string
	remotes    map[string]*Remote
	owners     map[string]string
	zoneStamps map[string]stamp
	lastClaim  *Event
	selection  string
	cursor     Cursor
	conflict   *Conflict
	clock      uint64
	logs       map[string]*zoneLog
	localEdits map[string]stamp
	subs       []chan Notice
}

// NewSession returns a disconnected session for local over ch. A local
// user without an id gets a fresh one; one without a color gets its
// presence color.
func NewSession(zones ZoneMap, local User, ch Channel, opts ...Option) *Session {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	o.cfg.defaults()
	if local.ID == "" {
		local.ID = uuid.NewString()
	}
	if local.Color == "" {
		local.Color = PresenceColor(local.ID)
	}
	return &Session{
		cfg:        o.cfg,
		zones:      zones,
		local:      local,
		ch:         ch,
		sink:       o.sink,
		now:        o.now,
		seen:       cache.New[string, struct{}](o.cfg.DedupCapacity),
		remotes:    make(map[string]*Remote),
		owners:     make(map[string]string),
		zoneStamps: make(map[string]stamp),
		logs:       make(map[string]*zoneLog),
		localEdits: make(map[string]stamp),
	}
}

// SetEditSink sets the receiver of remote edits. It must be called before
// Run.
func (s *Session) SetEditSink(sink EditSink) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// Local returns the local user.
func (s *Session) Local() User {
	if s == nil {
		return User{}
	}
	return s.local
}

// State returns the connection state.
func (s *Session) State() State {
	if s == nil {
		return StateDisconnected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns the id passed to Join.
func (s *Session) SessionID() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Join connects to a session. The state is Connecting until the channel
// acknowledges the local user.
func (s *Session) Join(ctx context.Context, sessionID string) error {
	if s == nil {
		return nil
	}
	if s.ch == nil {
		return ErrNoChannel
	}
	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return ErrAlreadyJoined
	}
	s.sessionID = sessionID
	s.setState(StateConnecting)
	ev := s.newEvent(EventJoin)
	s.mu.Unlock()

	if err := s.ch.Join(ctx, sessionID, s.local); err != nil {
		s.mu.Lock()
		s.setState(StateDisconnected)
		s.mu.Unlock()
		return fmt.Errorf("collab: join %s: %w", sessionID, err)
	}
	pairkit.Logger().Info("collab: joining session", "session", sessionID, "user", s.local.ID)
	return s.publish(ctx, ev)
}

// Run applies events from the channel until ctx is done or the channel
// closes. Meanwhile it prunes inactive participants and sends a heartbeat
// while connected. A closed channel leaves the session disconnected in
// solo mode and returns nil.
func (s *Session) Run(ctx context.Context) error {
	if s == nil || s.ch == nil {
		return nil
	}
	prune := time.NewTicker(s.cfg.PruneInterval)
	defer prune.Stop()
	beat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer beat.Stop()
	events := s.ch.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-prune.C:
			s.Prune(s.now())
		case <-beat.C:
			_ = s.Heartbeat(ctx)
		case e, ok := <-events:
			if !ok {
				s.channelClosed()
				return nil
			}
			s.Receive(ctx, e)
		}
	}
}

// Heartbeat announces the local user: the latest claim, so a peer that
// dropped the local user learns the zone again, and presence. It does
// nothing while not connected.
func (s *Session) Heartbeat(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	out := s.greeting()
	s.mu.Unlock()
	var errs []error
	for _, ev := range out {
		if err := s.publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) channelClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisconnected {
		return
	}
	pairkit.Logger().Info("collab: channel closed, editing solo", "session", s.sessionID)
	s.reset()
	s.setState(StateDisconnected)
}

// reset forgets every other participant.
func (s *Session) reset() {
	if len(s.remotes) > 0 {
		clear(s.remotes)
		s.emit(Notice{Kind: NoticePresence})
	}
	if len(s.owners) > 0 {
		clear(s.owners)
		s.emit(Notice{Kind: NoticeZones})
	}
	s.clearConflict()
}

// Receive applies one event. Malformed events are logged and dropped;
// redelivered events are ignored.
func (s *Session) Receive(ctx context.Context, e Event) {
	if s == nil {
		return
	}
	if err := e.Validate(); err != nil {
		pairkit.Logger().Warn("collab: dropped event", "error", err)
		return
	}
	if !s.seen.Add(e.ID, struct{}{}) {
		pairkit.Logger().Debug("collab: duplicate event", "id", e.ID)
		return
	}

	s.mu.Lock()
	s.observe(e.Clock)
	if e.User.ID == s.local.ID {
		if e.Type == EventAck && s.state == StateConnecting {
			s.setState(StateConnected)
			pairkit.Logger().Info("collab: connected", "session", s.sessionID, "user", s.local.ID)
		}
		s.mu.Unlock()
		return
	}
	if e.Type == EventLeave {
		s.removeRemote(e.User.ID, "left")
		s.mu.Unlock()
		return
	}

	syncing := s.state == StateConnected && (e.Type == EventClaim || e.Type == EventEdit)
	if syncing {
		s.setState(StateSyncing)
	}
	r, added := s.touch(e.User)
	var (
		out  []Event
		edit *Edit
		sink = s.sink
	)
	if e.Type == EventJoin {
		pairkit.Logger().Info("collab: participant joined", "user", e.User.ID)
	}
	if e.Type == EventJoin || added {
		// A newcomer, or a participant dropped as inactive that may have
		// dropped the local user too.
		out = s.greeting()
	}
	switch e.Type {
	case EventPresence:
		r.SelectedLayerID = e.LayerID
		if e.Cursor != nil {
			r.Cursor = pairkit.Pt(e.Cursor.X, e.Cursor.Y)
		}
	case EventClaim:
		s.applyClaim(e)
	case EventEdit:
		edit = s.mergeEdit(e)
	}
	s.mu.Unlock()

	if edit != nil && sink != nil {
		if err := sink.ApplyRemoteEdit(*edit); err != nil {
			if errors.Is(err, ErrRejected) {
				pairkit.Logger().Info("collab: remote edit rejected", "layer", edit.LayerID, "user", edit.User)
			} else {
				pairkit.Logger().Warn("collab: remote edit failed", "layer", edit.LayerID, "user", edit.User, "error", err)
			}
			s.mu.Lock()
			s.emit(Notice{Kind: NoticeRejected, UserID: edit.User, Edit: edit})
			s.mu.Unlock()
		}
	}
	if syncing {
		s.mu.Lock()
		if s.state == StateSyncing {
			s.setState(StateConnected)
		}
		s.mu.Unlock()
	}
	for _, ev := range out {
		_ = s.publish(ctx, ev)
	}
}

// observe advances the Lamport clock past a received clock.
func (s *Session) observe(clock uint64) {
	s.clock = max(s.clock, clock)
}

// touch records activity of u and returns its entry, reporting whether u
// was unknown.
func (s *Session) touch(u User) (*Remote, bool) {
	if u.Color == "" {
		u.Color = PresenceColor(u.ID)
	}
	r, ok := s.remotes[u.ID]
	if !ok {
		r = &Remote{Zone: s.zoneOwnedBy(u.ID)}
		s.remotes[u.ID] = r
	}
	r.User = u
	r.LastActivity = s.now()
	if !ok {
		s.emit(Notice{Kind: NoticePresence, UserID: u.ID})
	}
	return r, !ok
}

// greeting returns what a peer needs to learn about the local user: the
// latest claim, resent under a new id with its original stamp, and
// presence.
func (s *Session) greeting() []Event {
	if !s.state.Connected() {
		return nil
	}
	var out []Event
	if s.lastClaim != nil {
		ev := *s.lastClaim
		ev.ID = uuid.NewString()
		out = append(out, ev)
	}
	return append(out, s.presenceEvent())
}

func (s *Session) presenceEvent() Event {
	ev := s.newEvent(EventPresence)
	ev.LayerID = s.selection
	c := s.cursor
	ev.Cursor = &c
	return ev
}

// applyClaim applies a claim per zone, last write wins.
func (s *Session) applyClaim(e Event) {
	st := e.stamp()
	changed := false
	for z, owner := range s.owners {
		if owner == e.User.ID && z != e.Zone && st.after(s.zoneStamps[z]) {
			delete(s.owners, z)
			s.zoneStamps[z] = st
			changed = true
		}
	}
	switch {
	case e.Zone == "":
	case !s.knownZone(e.Zone):
		pairkit.Logger().Warn("collab: claim of unknown zone", "zone", e.Zone, "user", e.User.ID)
	case s.claimWins(e.Zone, st):
		if prev := s.owners[e.Zone]; prev == s.local.ID && e.User.ID != s.local.ID {
			pairkit.Logger().Info("collab: zone taken over", "zone", e.Zone, "user", e.User.ID)
			s.lastClaim = nil
		}
		s.owners[e.Zone] = e.User.ID
		s.zoneStamps[e.Zone] = st
		changed = true
	default:
		pairkit.Logger().Debug("collab: stale claim", "zone", e.Zone, "user", e.User.ID)
	}
	if changed {
		s.syncRemoteZones()
		s.emit(Notice{Kind: NoticeZones, UserID: e.User.ID})
		if c, ok := s.check(s.selection); ok {
			s.raise(c)
		}
	}
}

// claimWins reports whether a claim stamped st takes zone. A zone freed
// by pruning keeps the stamp of its last claim, so that claim resent by
// its owner takes the zone again.
func (s *Session) claimWins(zone string, st stamp) bool {
	prev := s.zoneStamps[zone]
	if s.owners[zone] == "" {
		return !prev.after(st)
	}
	return st.after(prev)
}

func (s *Session) syncRemoteZones() {
	for id, r := range s.remotes {
		r.Zone = s.zoneOwnedBy(id)
	}
}

func (s *Session) zoneOwnedBy(userID string) string {
	zones := slices.Sorted(maps.Keys(s.owners))
	for _, z := range zones {
		if s.owners[z] == userID {
			return z
		}
	}
	return ""
}

func (s *Session) knownZone(zone string) bool {
	return s.zones != nil && slices.Contains(s.zones.ZoneIDs(), zone)
}

func (s *Session) zoneOf(layerID string) string {
	if s.zones == nil {
		return ""
	}
	return s.zones.ZoneOf(layerID)
}

// mergeEdit records a remote edit in its zone log. It returns the edit to
// forward to the sink, or nil when a newer edit of the layer is known. A
// remote edit close in time to a local edit of the same layer raises a
// conflict either way.
func (s *Session) mergeEdit(e Event) *Edit {
	ed := *e.Edit
	ed.User = e.User.ID
	if ed.Wall.IsZero() {
		ed.Wall, ed.Clock = e.Wall, e.Clock
	}
	if z := s.zoneOf(ed.LayerID); z != "" {
		ed.Zone = z
	}
	accepted := s.log(ed.Zone).append(ed)
	if local, ok := s.localEdits[ed.LayerID]; ok && local.near(ed.stamp(), s.cfg.AmbiguityWindow) {
		s.raise(Conflict{UserID: e.User.ID, UserName: e.User.name(), LayerID: ed.LayerID})
	}
	if !accepted {
		pairkit.Logger().Debug("collab: superseded edit", "layer", ed.LayerID, "user", ed.User)
		return nil
	}
	return &ed
}

func (s *Session) log(zone string) *zoneLog {
	l, ok := s.logs[zone]
	if !ok {
		l = newZoneLog(s.cfg.LogCapacity)
		s.logs[zone] = l
	}
	return l
}

// Edits returns the logged edits of a zone, oldest first. The zone ""
// holds edits of layers outside every zone.
func (s *Session) Edits(zone string) []Edit {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.logs[zone]; ok {
		return slices.Clone(l.entries)
	}
	return nil
}

// ClaimZone claims zone for the local user, releasing any zone held
// before. Claiming "" only releases. Claiming a zone already held is a
// no-op.
func (s *Session) ClaimZone(ctx context.Context, zone string) error {
	if s == nil {
		return nil
	}
	if zone != "" && !s.knownZone(zone) {
		return fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	s.mu.Lock()
	owner := s.owners[zone]
	switch {
	case zone == "" && s.zoneOwnedBy(s.local.ID) == "":
		s.mu.Unlock()
		return nil
	case zone != "" && owner == s.local.ID:
		s.mu.Unlock()
		return nil
	case zone != "" && owner != "":
		s.mu.Unlock()
		return fmt.Errorf("%w: %q is held by %s", ErrZoneOwned, zone, owner)
	}
	ev := s.newEvent(EventClaim)
	ev.Zone = zone
	s.applyClaim(ev)
	s.lastClaim = &ev
	online := s.state != StateDisconnected
	s.mu.Unlock()

	pairkit.Logger().Info("collab: zone claimed", "zone", zone, "user", s.local.ID)
	if !online {
		return nil
	}
	return s.publish(ctx, ev)
}

// ZoneOwner returns the id of the participant holding zone, or "".
func (s *Session) ZoneOwner(zone string) string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owners[zone]
}

// OwnedZone returns the zone the local user holds, or "".
func (s *Session) OwnedZone() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoneOwnedBy(s.local.ID)
}

// LayerOwner returns the participant holding the zone of a layer, or "".
func (s *Session) LayerOwner(layerID string) string {
	if s == nil {
		return ""
	}
	zone := s.zoneOf(layerID)
	if zone == "" {
		return ""
	}
	return s.ZoneOwner(zone)
}

// Remotes returns the other participants ordered by id.
func (s *Session) Remotes() []Remote {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Remote, 0, len(s.remotes))
	for _, r := range s.remotes {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b Remote) int { return cmp.Compare(a.User.ID, b.User.ID) })
	return out
}

// Select sets the local selection and broadcasts it. Selecting a layer in
// a zone held by someone else raises a conflict; any other selection
// change clears the current one.
func (s *Session) Select(ctx context.Context, layerID string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	s.selection = layerID
	if c, ok := s.check(layerID); ok {
		s.raise(c)
	} else {
		s.clearConflict()
	}
	ev := s.presenceEvent()
	online := s.state.Connected()
	s.mu.Unlock()
	if !online {
		return nil
	}
	return s.publish(ctx, ev)
}

// Selection returns the local selection.
func (s *Session) Selection() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// MoveCursor broadcasts the local cursor.
func (s *Session) MoveCursor(ctx context.Context, x, y float64) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	s.cursor = Cursor{X: x, Y: y}
	ev := s.presenceEvent()
	online := s.state.Connected()
	s.mu.Unlock()
	if !online {
		return nil
	}
	return s.publish(ctx, ev)
}

// Permit reports whether the local user may edit layerID. It fails with
// ErrZoneOwned, and raises the conflict, when the layer's zone is held by
// someone else. A non-empty zone is checked as well, for edits that move
// a layer into it.
func (s *Session) Permit(layerID, zone string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, z := range []string{s.zoneOf(layerID), zone} {
		if c, ok := s.checkZone(layerID, z); ok {
			s.raise(c)
			return fmt.Errorf("%w: %q is held by %s", ErrZoneOwned, z, c.UserName)
		}
	}
	return nil
}

// check reports the conflict of working on layerID, if any.
func (s *Session) check(layerID string) (Conflict, bool) {
	if layerID == "" {
		return Conflict{}, false
	}
	return s.checkZone(layerID, s.zoneOf(layerID))
}

func (s *Session) checkZone(layerID, zone string) (Conflict, bool) {
	owner := s.owners[zone]
	if zone == "" || owner == "" || owner == s.local.ID {
		return Conflict{}, false
	}
	name := owner
	if r, ok := s.remotes[owner]; ok {
		name = r.User.name()
	}
	return Conflict{UserID: owner, UserName: name, LayerID: layerID}, true
}

// Conflict returns the current conflict, or nil.
func (s *Session) Conflict() *Conflict {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflict == nil {
		return nil
	}
	c := *s.conflict
	return &c
}

// DismissConflict clears the current conflict.
func (s *Session) DismissConflict() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.clearConflict()
	s.mu.Unlock()
}

func (s *Session) raise(c Conflict) {
	if s.conflict != nil && *s.conflict == c {
		return
	}
	s.conflict = &c
	pairkit.Logger().Info("collab: conflict", "user", c.UserID, "layer", c.LayerID)
	s.emit(Notice{Kind: NoticeConflict, UserID: c.UserID, Conflict: &c})
}

func (s *Session) clearConflict() {
	if s.conflict == nil {
		return
	}
	s.conflict = nil
	s.emit(Notice{Kind: NoticeConflict})
}

// ProposeEdit stamps a local edit, logs it in its zone and publishes it.
// The caller applies the edit to its document regardless of the result;
// editing a layer in a zone held by someone else raises a conflict.
func (s *Session) ProposeEdit(ctx context.Context, e Edit) (Edit, error) {
	if s == nil {
		return e, nil
	}
	if err := e.Validate(); err != nil {
		return e, fmt.Errorf("collab: %w", err)
	}
	s.mu.Lock()
	s.clock++
	e.ID = uuid.NewString()
	e.User = s.local.ID
	e.Clock = s.clock
	e.Wall = s.now()
	if z := s.zoneOf(e.LayerID); z != "" {
		e.Zone = z
	}
	s.log(e.Zone).append(e)
	s.localEdits[e.LayerID] = e.stamp()
	if c, ok := s.check(e.LayerID); ok {
		s.raise(c)
	}
	ev := Event{
		ID:        uuid.NewString(),
		Type:      EventEdit,
		SessionID: s.sessionID,
		User:      s.local,
		Wall:      e.Wall,
		Clock:     e.Clock,
		Zone:      e.Zone,
		LayerID:   e.LayerID,
	}
	ed := e
	ev.Edit = &ed
	online := s.state != StateDisconnected
	s.mu.Unlock()
	if !online {
		return e, nil
	}
	return e, s.publish(ctx, ev)
}

// Prune drops participants silent for longer than the inactivity window
// and releases their zones. It returns the number dropped.
func (s *Session) Prune(now time.Time) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, r := range s.remotes {
		if now.Sub(r.LastActivity) > s.cfg.InactivityWindow {
			s.removeRemote(id, "inactive")
			n++
		}
	}
	return n
}

func (s *Session) removeRemote(id, reason string) {
	if _, ok := s.remotes[id]; !ok {
		return
	}
	delete(s.remotes, id)
	pairkit.Logger().Info("collab: participant gone", "user", id, "reason", reason)
	s.emit(Notice{Kind: NoticePresence, UserID: id})
	released := false
	for z, owner := range s.owners {
		if owner == id {
			delete(s.owners, z)
			released = true
		}
	}
	if released {
		s.emit(Notice{Kind: NoticeZones, UserID: id})
	}
	if s.conflict != nil && s.conflict.UserID == id {
		s.clearConflict()
	}
}

// Leave announces the departure, then closes the channel. Subscriptions
// are closed afterwards.
func (s *Session) Leave(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.state == StateDisconnected && s.ch == nil {
		s.mu.Unlock()
		return nil
	}
	online := s.state != StateDisconnected
	ev := s.newEvent(EventLeave)
	s.reset()
	s.setState(StateDisconnected)
	s.mu.Unlock()

	var errs []error
	if online {
		errs = append(errs, s.publish(ctx, ev))
		pairkit.Logger().Info("collab: left session", "session", s.SessionID(), "user", s.local.ID)
	}
	if s.ch != nil {
		errs = append(errs, s.ch.Close())
	}

	s.mu.Lock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.mu.Unlock()
	return errors.Join(errs...)
}

// Subscribe returns a channel of notices. Notices are dropped when the
// channel is full. The channel closes on Leave. A nil session returns nil.
func (s *Session) Subscribe() <-chan Notice {
	if s == nil {
		return nil
	}
	ch := make(chan Notice, s.cfg.NoticeBuffer)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Session) emit(n Notice) {
	n.State = s.state
	for _, ch := range s.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	s.state = st
	s.emit(Notice{Kind: NoticeState, State: st})
}

func (s *Session) newEvent(t EventType) Event {
	s.clock++
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: s.sessionID,
		User:      s.local,
		Wall:      s.now(),
		Clock:     s.clock,
	}
}

func (s *Session) publish(ctx context.Context, e Event) error {
	if s.ch == nil {
		return nil
	}
	if err := s.ch.Publish(ctx, e); err != nil {
		pairkit.Logger().Warn("collab: publish failed", "type", e.Type, "error", err)
		return fmt.Errorf("collab: publish %s: %w", e.Type, err)
	}
	return nil
}
