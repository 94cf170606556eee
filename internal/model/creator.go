package model

import "time"

// Creator is a followed uploader as persisted in the local store.
type Creator struct {
	Mid          string `json:"mid"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	LastSyncTime string `json:"last_sync_time"` // RFC 3339, empty if never synced
}

// LastSync parses LastSyncTime. The zero time is returned when the creator
// was never synced or the stored value is unreadable.
func (c Creator) LastSync() time.Time {
	if c.LastSyncTime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, c.LastSyncTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DisplayName returns the name, or the mid when no name is known.
func (c Creator) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Mid
}
