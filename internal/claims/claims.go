// Package claims mapea las claims del id_token a la identidad local.
package claims

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dropDatabas3/loginbridge/internal/idtoken"
	"github.com/dropDatabas3/loginbridge/internal/settings"
)

// ErrMissingAttribute: el atributo configurado no está o no es un escalar usable.
var ErrMissingAttribute = errors.New("claims: missing attribute")

// Profile son los datos opcionales con los que se provisiona un usuario.
type Profile struct {
	Email       string
	DisplayName string
}

// ExtractUsername toma el claim attribute como username. Nunca sustituye un default.
func ExtractUsername(c idtoken.Claims, attribute string) (string, error) {
	attribute = strings.TrimSpace(attribute)
	if attribute == "" {
		return "", fmt.Errorf("%w: no attribute configured", ErrMissingAttribute)
	}
	v, ok := lookup(c, attribute)
	if !ok {
		return "", fmt.Errorf("%w: %q not in token", ErrMissingAttribute, attribute)
	}
	s, ok := scalar(v)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, not a scalar", ErrMissingAttribute, attribute, v)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %q is empty", ErrMissingAttribute, attribute)
	}
	return s, nil
}

// ExtractProfile lee email y nombre según los atributos del snapshot.
// Lo que falte queda vacío.
func ExtractProfile(c idtoken.Claims, snap settings.Snapshot) Profile {
	var p Profile
	if v, ok := lookup(c, snap.EmailAttribute); ok {
		p.Email, _ = scalar(v)
	}
	if v, ok := lookup(c, snap.NameAttribute); ok {
		p.DisplayName, _ = scalar(v)
	}
	return p
}

// lookup busca primero la clave literal (incluye claims con namespace URL
// como "https://app.example/claims/login") y después como path con puntos
// sobre objetos anidados ("custom.login").
func lookup(c idtoken.Claims, name string) (any, bool) {
	if name == "" || c == nil {
		return nil, false
	}
	if v, ok := c[name]; ok {
		return v, true
	}
	if !strings.Contains(name, ".") {
		return nil, false
	}
	var cur any = map[string]any(c)
	for _, part := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// scalar convierte string/number/bool a string. Listas, objetos y null no.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
