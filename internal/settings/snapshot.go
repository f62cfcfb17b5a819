package settings

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncomplete indica que falta configuración para intentar un login.
var ErrIncomplete = errors.New("settings: incomplete configuration")

// Defaults de claves opcionales.
const (
	DefaultEmailAttribute = "email"
	DefaultNameAttribute  = "name"
	DefaultScopes         = "openid"
)

// Snapshot es la configuración de un request. Inmutable por convención.
type Snapshot struct {
	UsernameAttribute string
	CreateNewUser     bool
	Homepage          string

	TokenEndpoint string
	ClientID      string
	ClientSecret  string
	RedirectURI   string

	AuthorizeEndpoint string
	Issuer            string
	JWKSURI           string
	Scopes            []string
	EmailAttribute    string
	NameAttribute     string
	RequireState      bool
}

// FromMap arma el snapshot desde el KV crudo. Solo "true" habilita los flags.
func FromMap(m map[string]string) Snapshot {
	get := func(k string) string { return strings.TrimSpace(m[k]) }
	or := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	return Snapshot{
		UsernameAttribute: get(KeyUsernameAttribute),
		CreateNewUser:     get(KeyCreateNewUser) == "true",
		Homepage:          get(KeyHomepage),

		TokenEndpoint: get(KeyTokenEndpoint),
		ClientID:      get(KeyClientID),
		ClientSecret:  get(KeyClientSecret),
		RedirectURI:   get(KeyRedirectURI),

		AuthorizeEndpoint: get(KeyAuthorizeEndpoint),
		Issuer:            strings.TrimRight(get(KeyIssuer), "/"),
		JWKSURI:           get(KeyJWKSURI),
		Scopes:            splitScopes(or(get(KeyScopes), DefaultScopes)),
		EmailAttribute:    or(get(KeyEmailAttribute), DefaultEmailAttribute),
		NameAttribute:     or(get(KeyNameAttribute), DefaultNameAttribute),
		RequireState:      get(KeyRequireState) == "true",
	}
}

// splitScopes acepta espacios o comas.
func splitScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
}

// Validate verifica lo mínimo para intentar el intercambio del code.
// El token endpoint puede venir de discovery si hay issuer.
func (s Snapshot) Validate() error {
	var missing []string
	if s.UsernameAttribute == "" {
		missing = append(missing, KeyUsernameAttribute)
	}
	if s.ClientID == "" {
		missing = append(missing, KeyClientID)
	}
	if s.TokenEndpoint == "" && s.Issuer == "" {
		missing = append(missing, KeyTokenEndpoint+"|"+KeyIssuer)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
