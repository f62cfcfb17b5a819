package provider

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
	"github.com/dropDatabas3/loginbridge/internal/settings"
)

// Endpoints son las URLs efectivas del provider para un snapshot.
type Endpoints struct {
	Issuer   string
	AuthURL  string
	TokenURL string
	JWKSURI  string
}

// Endpoints resuelve las URLs: lo configurado explícitamente gana; lo que
// falte se completa con discovery del issuer (cacheado por issuer).
func (c *Client) Endpoints(ctx context.Context, snap settings.Snapshot) (Endpoints, error) {
	ep := Endpoints{
		Issuer:   snap.Issuer,
		AuthURL:  snap.AuthorizeEndpoint,
		TokenURL: snap.TokenEndpoint,
		JWKSURI:  snap.JWKSURI,
	}
	if snap.Issuer == "" || (ep.AuthURL != "" && ep.TokenURL != "" && ep.JWKSURI != "") {
		return ep, nil
	}

	disc, err := c.discover(ctx, snap.Issuer)
	if err != nil {
		return ep, err
	}
	if ep.AuthURL == "" {
		ep.AuthURL = disc.AuthURL
	}
	if ep.TokenURL == "" {
		ep.TokenURL = disc.TokenURL
	}
	if ep.JWKSURI == "" {
		ep.JWKSURI = disc.JWKSURI
	}
	return ep, nil
}

func (c *Client) discover(ctx context.Context, issuer string) (Endpoints, error) {
	if v, ok := c.disco.Get(issuer); ok {
		return v.(Endpoints), nil
	}

	v, err, shared := c.sf.Do(issuer, func() (any, error) {
		if v, ok := c.disco.Get(issuer); ok {
			return v, nil
		}
		// El fetch no depende de la cancelación de un request puntual:
		// otros requests pueden estar esperando el mismo resultado.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		p, err := oidc.NewProvider(oidc.ClientContext(dctx, c.http), issuer)
		if err != nil {
			return nil, fmt.Errorf("provider: discovery %s: %w", issuer, err)
		}
		var extra struct {
			JWKSURI string `json:"jwks_uri"`
		}
		if err := p.Claims(&extra); err != nil {
			return nil, fmt.Errorf("provider: discovery %s: %w", issuer, err)
		}
		oe := p.Endpoint()
		ep := Endpoints{Issuer: issuer, AuthURL: oe.AuthURL, TokenURL: oe.TokenURL, JWKSURI: extra.JWKSURI}
		c.disco.Set(issuer, ep, c.discoveryTTL)
		return ep, nil
	})
	if err != nil {
		logger.From(ctx).Warn("oidc discovery failed",
			logger.Layer("service"), logger.Component("provider"), logger.Op("discover"),
			logger.Endpoint(issuer), logger.Err(err))
		return Endpoints{}, err
	}
	if shared {
		logger.From(ctx).Debug("discovery shared", logger.Component("provider"), logger.Endpoint(issuer))
	}
	return v.(Endpoints), nil
}
