package flow

import (
	"errors"

	"github.com/dropDatabas3/loginbridge/internal/claims"
	"github.com/dropDatabas3/loginbridge/internal/idtoken"
	"github.com/dropDatabas3/loginbridge/internal/provider"
	"github.com/dropDatabas3/loginbridge/internal/session"
	"github.com/dropDatabas3/loginbridge/internal/settings"
	"github.com/dropDatabas3/loginbridge/internal/users"
)

var (
	ErrStateMismatch = errors.New("flow: state mismatch")
	ErrRateLimited   = errors.New("flow: rate limited")
)

// classify mapea el error de un paso a su Outcome.
func classify(err error) Outcome {
	switch {
	case errors.Is(err, settings.ErrIncomplete):
		return OutcomeMisconfigured
	case errors.Is(err, ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, ErrStateMismatch):
		return OutcomeStateMismatch
	case errors.Is(err, provider.ErrTokenExchange):
		return OutcomeExchangeFailed
	case errors.Is(err, idtoken.ErrMalformedToken):
		return OutcomeMalformedToken
	case errors.Is(err, idtoken.ErrInvalidSignature):
		return OutcomeInvalidSignature
	case errors.Is(err, idtoken.ErrExpiredToken):
		return OutcomeExpiredToken
	case errors.Is(err, idtoken.ErrInvalidClaims):
		return OutcomeInvalidClaims
	case errors.Is(err, claims.ErrMissingAttribute):
		return OutcomeMissingAttribute
	case errors.Is(err, users.ErrUserNotFound):
		return OutcomeUserNotFound
	case errors.Is(err, users.ErrUserCreation):
		return OutcomeUserCreation
	case errors.Is(err, session.ErrSession):
		return OutcomeSessionFailed
	default:
		return OutcomeMisconfigured
	}
}
