package http

import (
	"net/http"

	"orcamento/internal/core"
	"orcamento/internal/services"
)

type sessionView struct {
	Token string        `json:"token"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Data  core.UserData `json:"data"`
}

func newSessionView(s *services.BudgetService, sess *services.Session) sessionView {
	data := s.Budget(sess)
	return sessionView{Token: sess.Token, Name: data.Name, Email: sess.Email, Data: data}
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.svc.SignUp(r.Context(), sanitizeInput(req.Name), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(newSessionView(s.svc, sess)).Write(w)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newSessionView(s.svc, sess)).Write(w)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	if err := s.svc.SignOut(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handlePasswordReset always answers 202 for a well-formed email so the
// response does not reveal whether an account exists.
func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusAccepted).Body(map[string]string{
		"notice": "Se o email estiver cadastrado, enviaremos um link para redefinir a senha.",
	}).Write(w)
}
