package domain

// RefreshTokenStore tracks the single currently-valid refresh token per
// username. Put overwrites any previous entry, which is what invalidates the
// token issued by an earlier login. Implementations must be safe for
// concurrent use.
type RefreshTokenStore interface {
	Put(username, token string)
	Get(username string) (string, bool)
	Delete(username string)
}
