// Package provider habla con el identity provider: intercambio del code,
// URL de autorización y discovery OIDC.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/loginbridge/internal/metrics"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
	"github.com/dropDatabas3/loginbridge/internal/settings"
)

// ErrTokenExchange envuelve cualquier falla del POST al token endpoint.
var ErrTokenExchange = errors.New("provider: token exchange failed")

const (
	DefaultTimeout      = 10 * time.Second
	DefaultDiscoveryTTL = time.Hour
)

// TokenResponse es la respuesta del token endpoint. Nunca se persiste.
type TokenResponse struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

type Deps struct {
	HTTPClient   *http.Client  // nil = http.DefaultClient
	Timeout      time.Duration // tope del exchange y de discovery
	DiscoveryTTL time.Duration
}

// Client no guarda estado por request; solo cachea metadata del provider.
type Client struct {
	http         *http.Client
	timeout      time.Duration
	discoveryTTL time.Duration

	disco *gocache.Cache
	sf    singleflight.Group
}

func NewClient(d Deps) *Client {
	if d.HTTPClient == nil {
		d.HTTPClient = http.DefaultClient
	}
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}
	if d.DiscoveryTTL <= 0 {
		d.DiscoveryTTL = DefaultDiscoveryTTL
	}
	return &Client{
		http:         d.HTTPClient,
		timeout:      d.Timeout,
		discoveryTTL: d.DiscoveryTTL,
		disco:        gocache.New(d.DiscoveryTTL, 10*time.Minute),
	}
}

// HTTPClient expone el cliente para quien necesite hablar con el mismo provider (JWKS).
func (c *Client) HTTPClient() *http.Client { return c.http }

// ExtractCode lee el parámetro "code". Ausente o vacío no es error: no es un intento de login.
func ExtractCode(r *http.Request) (string, bool) {
	if r == nil || r.URL == nil {
		return "", false
	}
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	return code, code != ""
}

func (c *Client) oauth2Config(snap settings.Snapshot, ep Endpoints) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     snap.ClientID,
		ClientSecret: snap.ClientSecret,
		RedirectURL:  snap.RedirectURI,
		Scopes:       snap.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  ep.AuthURL,
			TokenURL: ep.TokenURL,
			// credenciales en el body del form, como espera el provider
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// tokenBody es la respuesta JSON del token endpoint. Solo id_token es obligatorio.
type tokenBody struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

const maxTokenBody = 1 << 20

// Exchange hace el POST grant_type=authorization_code. Sin reintentos.
// Las credenciales del cliente van en el body del form.
func (c *Client) Exchange(ctx context.Context, snap settings.Snapshot, code string) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("provider"), logger.Op("Exchange"))

	ep, err := c.Endpoints(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if ep.TokenURL == "" {
		return nil, fmt.Errorf("%w: no token endpoint configured", ErrTokenExchange)
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", snap.ClientID)
	form.Set("client_secret", snap.ClientSecret)
	form.Set("redirect_uri", snap.RedirectURI)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	metrics.ExchangeDuration.Observe(elapsed.Seconds())
	if err != nil {
		log.Debug("token endpoint call failed", logger.Endpoint(ep.TokenURL), logger.Err(err), logger.Duration(elapsed))
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTokenExchange, err)
	}

	if resp.StatusCode/100 != 2 {
		re := &oauth2.RetrieveError{Response: resp, Body: body}
		var e struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(body, &e) == nil {
			re.ErrorCode, re.ErrorDescription = e.Error, e.ErrorDescription
		}
		log.Debug("token endpoint rejected code",
			logger.Endpoint(ep.TokenURL), logger.Status(resp.StatusCode),
			logger.String("error_code", re.ErrorCode), logger.Duration(elapsed))
		return nil, fmt.Errorf("%w: http %d %s: %w", ErrTokenExchange, resp.StatusCode, re.ErrorCode, re)
	}

	var tb tokenBody
	if err := json.Unmarshal(body, &tb); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTokenExchange, err)
	}
	if tb.IDToken == "" {
		return nil, fmt.Errorf("%w: response without id_token", ErrTokenExchange)
	}

	tr := &TokenResponse{
		IDToken:      tb.IDToken,
		AccessToken:  tb.AccessToken,
		RefreshToken: tb.RefreshToken,
		TokenType:    tb.TokenType,
	}
	if tb.ExpiresIn > 0 {
		tr.Expiry = start.Add(time.Duration(tb.ExpiresIn) * time.Second)
	}
	log.Debug("code exchanged", logger.Endpoint(ep.TokenURL), logger.Duration(elapsed))
	return tr, nil
}

// AuthCodeURL arma la URL de autorización del provider con el state dado.
func (c *Client) AuthCodeURL(ctx context.Context, snap settings.Snapshot, state string) (string, error) {
	ep, err := c.Endpoints(ctx, snap)
	if err != nil {
		return "", err
	}
	if ep.AuthURL == "" || snap.ClientID == "" {
		return "", fmt.Errorf("%w: authorize endpoint and client id are required", settings.ErrIncomplete)
	}
	return c.oauth2Config(snap, ep).AuthCodeURL(state), nil
}
