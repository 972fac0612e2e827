package common

// AuthCookieName is the HTTP-only cookie that carries the session token.
const AuthCookieName = "authToken"

// AuthorizationScheme is the scheme expected in the Authorization header.
const AuthorizationScheme = "Bearer"

// MinPasswordLength and MaxPasswordBytes bound accepted passwords. bcrypt
// ignores everything past 72 bytes, so longer input is rejected.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

// MaxTaskTitleLength limits task titles, in runes.
const MaxTaskTitleLength = 200
