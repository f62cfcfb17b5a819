package idtoken

import (
	"context"
	"crypto"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	gocache "github.com/patrickmn/go-cache"
)

// KeySet verifica la firma de un JWS y retorna el payload. oidc.KeySet lo cumple.
type KeySet interface {
	VerifySignature(ctx context.Context, jwt string) ([]byte, error)
}

// StaticKeys arma un KeySet con claves públicas fijas.
func StaticKeys(keys ...crypto.PublicKey) KeySet {
	return &oidc.StaticKeySet{PublicKeys: keys}
}

// KeySets mantiene un RemoteKeySet por jwks_uri. Cada RemoteKeySet ya cachea
// las claves y refresca cuando llega un kid desconocido, así que nunca se
// recrean mientras viva el proceso.
type KeySets struct {
	base context.Context
	sets *gocache.Cache
}

// NewKeySets usa client para bajar los JWKS (nil = http.DefaultClient).
func NewKeySets(client *http.Client) *KeySets {
	base := context.Background()
	if client != nil {
		base = oidc.ClientContext(base, client)
	}
	return &KeySets{base: base, sets: gocache.New(gocache.NoExpiration, 0)}
}

// ForURI retorna el KeySet remoto de uri. uri vacío retorna nil (sin firma).
func (k *KeySets) ForURI(uri string) KeySet {
	if uri == "" {
		return nil
	}
	if v, ok := k.sets.Get(uri); ok {
		return v.(KeySet)
	}
	ks := oidc.NewRemoteKeySet(k.base, uri)
	// Add falla si otro request ganó la carrera; usamos el suyo.
	if err := k.sets.Add(uri, KeySet(ks), gocache.NoExpiration); err != nil {
		if v, ok := k.sets.Get(uri); ok {
			return v.(KeySet)
		}
	}
	return ks
}
