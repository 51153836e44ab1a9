package notification

import "time"

type Type string

const (
	TypeAchievement Type = "achievement"
	TypeXP          Type = "xp"
	TypeTeam        Type = "team"
	TypeLevel       Type = "level"
	TypeMission     Type = "mission"
	TypeChallenge   Type = "challenge"
)

// Notification is immutable except for the Read flag, which only ever
// flips false -> true.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"` // "android" | "ios"
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
}
