// Package settings es el KV runtime que configura el flujo de login.
//
// Se lee completo en cada request (Load) y se pasa como Snapshot explícito a
// cada componente. Nunca se cachea entre requests: un administrador puede
// cambiarlo en cualquier momento.
package settings

// Claves del store.
const (
	KeyUsernameAttribute = "username_attribute"
	KeyCreateNewUser     = "create_new_user"
	KeyHomepage          = "homepage"
	KeyTokenEndpoint     = "token_endpoint"
	KeyClientID          = "client_id"
	KeyClientSecret      = "client_secret"
	KeyRedirectURI       = "redirect_uri"

	KeyAuthorizeEndpoint = "authorize_endpoint"
	KeyIssuer            = "issuer"
	KeyJWKSURI           = "jwks_uri"
	KeyScopes            = "scopes"
	KeyEmailAttribute    = "email_attribute"
	KeyNameAttribute     = "name_attribute"
	KeyRequireState      = "require_state"
)

var known = []string{
	KeyUsernameAttribute, KeyCreateNewUser, KeyHomepage,
	KeyTokenEndpoint, KeyClientID, KeyClientSecret, KeyRedirectURI,
	KeyAuthorizeEndpoint, KeyIssuer, KeyJWKSURI, KeyScopes,
	KeyEmailAttribute, KeyNameAttribute, KeyRequireState,
}

// Keys retorna las claves conocidas en orden estable.
func Keys() []string {
	out := make([]string, len(known))
	copy(out, known)
	return out
}

// IsKnown reporta si key es una clave que el flujo consume.
func IsKnown(key string) bool {
	for _, k := range known {
		if k == key {
			return true
		}
	}
	return false
}

// IsSecret marca las claves que no se imprimen en claro.
func IsSecret(key string) bool { return key == KeyClientSecret }
