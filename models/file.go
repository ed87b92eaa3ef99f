package models

import "time"

// SessionFile is an uploaded asset attached to a recording session.
type SessionFile struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"sessionId"` // booking id
	UserID      string     `json:"userId"`    // uploader
	Name        string     `json:"name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"contentType"`
	URL         string     `json:"url"`
	StoragePath string     `json:"storagePath"` // provider public id, used for deletion
	Deleted     bool       `json:"-"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// StoragePath returns the folder an upload for this session and user goes to.
func StoragePath(sessionID, userID string) string {
	return "sessions/" + sessionID + "/users/" + userID
}
