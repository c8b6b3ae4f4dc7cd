package errors

import "errors"

// Sentinel errors shared across packages
var (
	ErrSchemaAlreadyLoaded = errors.New("database schema already loaded")
	ErrInvalidToken        = errors.New("the session token is not valid")
	ErrExpiredToken        = errors.New("the session token has expired")
	ErrUnknownMethod       = errors.New("unknown HTTP method")
	ErrRoleNotAllowed      = errors.New("the user role is not allowed")
	ErrInternalServer      = errors.New("internal server error")
)

// Safe returns the message a client may see for err. Server-side failures are
// masked unless debug is set.
func Safe(err error, debug bool) string {
	if debug || GetHTTPStatus(err) < 500 {
		return err.Error()
	}
	return ErrInternalServer.Error() + " (enable debug mode to see details)"
}
