package idtoken

import "errors"

var (
	ErrMalformedToken   = errors.New("idtoken: malformed token")
	ErrInvalidSignature = errors.New("idtoken: invalid signature")
	ErrExpiredToken     = errors.New("idtoken: expired or not yet valid")
	ErrInvalidClaims    = errors.New("idtoken: invalid claims")
)
