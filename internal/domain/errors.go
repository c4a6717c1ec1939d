package domain

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidKind      = errors.New("invalid artifact kind")
	ErrValidation       = errors.New("validation failed")
	ErrUpstream         = errors.New("completion upstream failed")
)

// NotFound reports whether err is one of the typed not-found outcomes.
func NotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrArtifactNotFound)
}
