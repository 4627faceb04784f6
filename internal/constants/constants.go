package constants

// ContextKeyUserID is the key under which the authenticated user ID is
// stored in both the session and the gin context.
const ContextKeyUserID = "user_id"

// SessionCookieName is the cookie carrying the session id.
const SessionCookieName = "task_session"

const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 32
	MaxEmailLength       = 320
	MinPasswordLength    = 3
	MaxTitleLength       = 128
	MaxDescriptionLength = 4012
)
