package idtoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
)

// DefaultLeeway tolera skew de reloj en exp/nbf.
const DefaultLeeway = 30 * time.Second

// Expectations es lo que el request espera del token.
// Campos vacíos (o KeySet nil) desactivan esa verificación.
type Expectations struct {
	KeySet   KeySet
	Issuer   string
	Audience string
}

type Deps struct {
	Leeway time.Duration
	Now    func() time.Time
}

// Verifier decodifica y valida id_tokens. Sin estado propio.
type Verifier struct {
	leeway time.Duration
	now    func() time.Time
}

func NewVerifier(d Deps) *Verifier {
	if d.Leeway <= 0 {
		d.Leeway = DefaultLeeway
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Verifier{leeway: d.Leeway, now: d.Now}
}

// Verify decodifica raw y aplica las verificaciones.
// Errores: ErrMalformedToken, ErrInvalidSignature, ErrExpiredToken, ErrInvalidClaims.
func (v *Verifier) Verify(ctx context.Context, raw string, exp Expectations) (Claims, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("idtoken"), logger.Op("Verify"))

	claims, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	if exp.KeySet != nil {
		if _, err := exp.KeySet.VerifySignature(ctx, raw); err != nil {
			log.Debug("signature rejected", logger.Err(err))
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	opts := []jwtv5.ParserOption{
		jwtv5.WithLeeway(v.leeway),
		jwtv5.WithTimeFunc(v.now),
	}
	if exp.Issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(exp.Issuer))
	}
	if exp.Audience != "" {
		opts = append(opts, jwtv5.WithAudience(exp.Audience))
	}

	if err := jwtv5.NewValidator(opts...).Validate(jwtv5.MapClaims(claims)); err != nil {
		switch {
		case errors.Is(err, jwtv5.ErrTokenExpired), errors.Is(err, jwtv5.ErrTokenNotValidYet):
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
		}
	}
	return claims, nil
}
