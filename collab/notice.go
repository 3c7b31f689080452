package collab

// NoticeKind says what a Notice reports.
type NoticeKind int

const (
	// NoticeState reports a session state change.
	NoticeState NoticeKind = iota
	// NoticePresence reports that a participant arrived, moved or left.
	NoticePresence
	// NoticeZones reports a change of zone ownership.
	NoticeZones
	// NoticeConflict reports a raised conflict, or a cleared one when
	// Conflict is nil.
	NoticeConflict
	// NoticeRejected reports a remote edit the document refused.
	NoticeRejected
)

var noticeNames = [...]string{"state", "presence", "zones", "conflict", "rejected"}

func (k NoticeKind) String() string {
	if k >= 0 && int(k) < len(noticeNames) {
		return noticeNames[k]
	}
	return "unknown"
}

// Notice is a change the UI may want to show.
type Notice struct {
	Kind     NoticeKind
	State    State
	UserID   string
	Conflict *Conflict
	Edit     *Edit
}

// Conflict records that the local user selected or edited a layer in a
// zone held by someone else, or edited a layer concurrently with someone
// else. It is a warning; nothing is rolled back.
type Conflict struct {
	UserID   string
	UserName string
	LayerID  string
}

// State is the connection state of a Session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	// StateSyncing is the connected state while a remote event is being
	// reconciled.
	StateSyncing
)

var stateNames = [...]string{"disconnected", "connecting", "connected", "syncing"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Connected reports whether s is connected, syncing or idle.
func (s State) Connected() bool {
	return s == StateConnected || s == StateSyncing
}
