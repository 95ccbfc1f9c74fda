package domain

import "time"

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Authentication events
	UserLoginEvent        AuditEventType = "USER_LOGIN"
	UserLoginFailureEvent AuditEventType = "USER_LOGIN_FAILED"
	UserRegistrationEvent AuditEventType = "USER_REGISTERED"
	UserLogoutEvent       AuditEventType = "USER_LOGOUT"

	// Credential lifecycle events
	PasswordChangedEvent AuditEventType = "PASSWORD_CHANGED"
	PasswordResetEvent   AuditEventType = "PASSWORD_RESET"
	ResetRequestedEvent  AuditEventType = "RESET_REQUESTED"

	// Token lifecycle events
	TokenRefreshedEvent  AuditEventType = "TOKEN_REFRESHED"
	TokenReuseEvent      AuditEventType = "TOKEN_REUSE_DETECTED"
	SessionsRevokedEvent AuditEventType = "SESSIONS_REVOKED"

	// Authorization events
	AccessDeniedEvent AuditEventType = "ACCESS_DENIED"
)

// AuditEvent represents a security-relevant event. It carries no secrets:
// no passwords, hashes, or token material.
type AuditEvent struct {
	EventType AuditEventType         `json:"event_type"`
	UserID    string                 `json:"user_id,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	Success   bool                   `json:"success"`
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType, userID string) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError marks the event failed. The error text is intentionally not
// recorded verbatim for credential failures.
func (e *AuditEvent) WithError() *AuditEvent {
	e.Success = false
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}
