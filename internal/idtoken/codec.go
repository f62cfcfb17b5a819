package idtoken

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Claims es el payload decodificado. Los valores son los de encoding/json:
// string, float64, bool, []any, map[string]any o nil.
type Claims map[string]any

// String retorna el claim como string si lo es.
func (c Claims) String(name string) (string, bool) {
	s, ok := c[name].(string)
	return s, ok
}

var parser = jwtv5.NewParser()

// Decode separa el token compacto y decodifica el payload sin verificar la firma.
// Un alg desconocido o "none" no lo hace malformado.
func Decode(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ".") != 2 {
		return nil, fmt.Errorf("%w: expected 3 segments", ErrMalformedToken)
	}

	mc := jwtv5.MapClaims{}
	_, parts, err := parser.ParseUnverified(raw, mc)
	// ParseUnverified decodifica header y claims antes de resolver el alg;
	// "unverifiable" solo significa que el alg no está registrado.
	if err != nil && !errors.Is(err, jwtv5.ErrTokenUnverifiable) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	// un payload "null" decodifica sin error a un map vacío
	payload, err := parser.DecodeSegment(parts[1])
	if err != nil || !bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformedToken)
	}
	return Claims(mc), nil
}

// EncodeUnsigned arma un token alg=none con las claims dadas.
// Sirve para fixtures y para providers de prueba; nunca para emitir sesiones.
func EncodeUnsigned(c Claims) (string, error) {
	return jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims(c)).
		SignedString(jwtv5.UnsafeAllowNoneSignatureType)
}
