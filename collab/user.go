package collab

import (
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/pairkit"
)

// User is a participant's presentation identity.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Color       string `json:"color,omitempty"`
}

// NewUser returns a user with a fresh id and its presence color.
func NewUser(displayName string) User {
	id := uuid.NewString()
	return User{ID: id, DisplayName: displayName, Color: PresenceColor(id)}
}

// name returns the display name, or the id when there is none.
func (u User) name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// presenceHues are spaced so neighbouring participants stay distinct.
var presenceHues = [...]float64{12, 210, 130, 285, 45, 175, 330, 250}

// PresenceColor returns the hex color of a user id. The same id always
// maps to the same color.
func PresenceColor(userID string) string {
	h := fnv.New32a()
	h.Write([]byte(userID))
	hue := presenceHues[h.Sum32()%uint32(len(presenceHues))]
	return colorful.Hcl(hue, 0.55, 0.6).Clamped().Hex()
}

// Remote is the last known state of another participant.
type Remote struct {
	User            User
	Cursor          pairkit.Point
	SelectedLayerID string
	Zone            string
	LastActivity    time.Time
}
