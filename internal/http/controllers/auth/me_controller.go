package auth

import (
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/loginbridge/internal/http/errors"
	"github.com/dropDatabas3/loginbridge/internal/session"
)

// MeController maneja GET /me.
type MeController struct{}

func NewMeController() *MeController { return &MeController{} }

type meResponse struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	Username      string     `json:"username,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Me responde el estado de la sesión actual. Anónimo no es error.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	resp := meResponse{}
	if s, ok := session.FromContext(r.Context()); ok {
		exp := s.ExpiresAt
		resp = meResponse{Authenticated: true, UserID: s.UserID, Username: s.Username, ExpiresAt: &exp}
	}
	httperrors.WriteJSON(w, http.StatusOK, resp)
}
