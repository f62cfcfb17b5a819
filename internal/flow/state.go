package flow

// State es el punto alcanzado por un intento de login.
type State int

const (
	Idle State = iota
	CodePresent
	TokenObtained
	ClaimsDecoded
	UserResolved
	SessionEstablished
	Redirected
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CodePresent:
		return "code_present"
	case TokenObtained:
		return "token_obtained"
	case ClaimsDecoded:
		return "claims_decoded"
	case UserResolved:
		return "user_resolved"
	case SessionEstablished:
		return "session_established"
	case Redirected:
		return "redirected"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome clasifica cómo terminó un intento. Todo lo que no sea
// OutcomeSuccess/OutcomeRedirected es, para el usuario, un no-op.
type Outcome string

const (
	OutcomeNoCode        Outcome = "no_code"
	OutcomeAuthenticated Outcome = "already_authenticated"

	OutcomeMisconfigured    Outcome = "misconfigured"
	OutcomeRateLimited      Outcome = "rate_limited"
	OutcomeStateMismatch    Outcome = "state_mismatch"
	OutcomeExchangeFailed   Outcome = "exchange_failed"
	OutcomeMalformedToken   Outcome = "malformed_token"
	OutcomeInvalidSignature Outcome = "invalid_signature"
	OutcomeExpiredToken     Outcome = "expired_token"
	OutcomeInvalidClaims    Outcome = "invalid_claims"
	OutcomeMissingAttribute Outcome = "missing_attribute"
	OutcomeUserNotFound     Outcome = "user_not_found"
	OutcomeUserCreation     Outcome = "user_creation_failed"
	OutcomeSessionFailed    Outcome = "session_failed"

	OutcomeSuccess    Outcome = "success"
	OutcomeRedirected Outcome = "redirected"
)

// Failed reporta si el outcome aborta un intento que sí traía code.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeNoCode, OutcomeAuthenticated, OutcomeSuccess, OutcomeRedirected:
		return false
	}
	return true
}
