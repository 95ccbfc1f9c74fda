package domain

import "time"

// User represents a platform account. Profile fields (balance, VIP tier,
// KYC status) ride along on the identity but never drive authentication
// decisions.
type User struct {
	ID               string
	Email            string
	Phone            string
	PasswordHash     string
	FirstName        string
	LastName         string
	Role             string
	IsActive         bool
	TwoFactorEnabled bool
	TokenEpoch       int64
	Balance          float64
	VIPTier          string
	KYCStatus        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Credentials represents a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// Session is the value object bound to the transport cookies. ExpiresIn is
// the access-token lifetime in seconds.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// AuthResult represents a successful authentication outcome.
type AuthResult struct {
	User    *User
	Session *Session
}

// RefreshTokenRecord is the server-side row backing one refresh token,
// keyed by the token's JTI. ConsumedAt is set exactly once, by rotation;
// a second consume attempt is reuse.
type RefreshTokenRecord struct {
	JTI        string
	UserID     string
	Generation int64
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Consumed reports whether the record was already spent.
func (r *RefreshTokenRecord) Consumed() bool {
	return r.ConsumedAt != nil
}

// Identity is the authenticated caller attached to the request context by
// the auth middleware.
type Identity struct {
	UserID string
	Email  string
	Role   string
	Epoch  int64
}

// IsAdmin reports whether the identity carries an administrative role.
func (i *Identity) IsAdmin() bool {
	return i.Role == "admin" || i.Role == "superadmin"
}

// PasswordChange carries the fields of a change-password request.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

// ResetRequest represents an issued password-reset code.
type ResetRequest struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	Attempts  int
}
