package models

import "time"

// AuditEntry is an immutable record of a single mutating admin action.
// Entries are created once and never updated or deleted.
type AuditEntry struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resource_id"`
	Changes    map[string]any `json:"changes,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	IPAddress  string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
}

// AuditInput holds the caller-supplied fields for a new audit entry.
type AuditInput struct {
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	Changes    map[string]any
	IPAddress  string
	UserAgent  string
}

// Validate checks that the required audit fields are present.
func (in AuditInput) Validate() error {
	if in.UserID == "" {
		return ErrMissingUserID
	}
	if in.Action == "" {
		return ErrMissingAction
	}
	if in.Resource == "" {
		return ErrMissingResource
	}
	if in.ResourceID == "" {
		return ErrMissingResourceID
	}

	return nil
}

// AuditQueryOpts holds filters for querying the audit log.
type AuditQueryOpts struct {
	UserID     string
	Resource   string
	ResourceID string
	Action     string
	Limit      int
	Offset     int
}
