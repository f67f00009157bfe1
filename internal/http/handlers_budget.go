package http

import (
	"net/http"

	"orcamento/internal/core"
	"orcamento/internal/services"
)

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	NewJSONResponse().Body(s.svc.Budget(sess)).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	months, err := parseMonths(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.svc.Summarize(sess, months)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handleSetSalary(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	var req struct {
		Salary Amount `json:"salary"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	salary, err := req.Salary.Float(core.FormSalary, "salary")
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeResult(w, r, http.StatusOK)(s.svc.SetSalary(r.Context(), sess, salary))
}

func (s *Server) handleResetBudget(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	s.writeResult(w, r, http.StatusOK)(s.svc.ResetBudget(r.Context(), sess))
}

// handleSave persists the session. A failed save keeps the in-memory data and
// answers 502 with a notice.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	data, err := s.svc.Save(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(services.Result{Data: data}).Write(w)
}

func (s *Server) handleTips(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	NewJSONResponse().Body(s.svc.Tips(r.Context(), sess)).Write(w)
}

func (s *Server) handleAddFixedExpense(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	res, category, err := s.svc.AddFixedExpense(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(struct {
		services.Result
		Category core.FixedExpenseCategory `json:"category"`
	}{res, category}).Write(w)
}

func (s *Server) handleUpdateFixedExpense(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	var req struct {
		Name           *string              `json:"name"`
		Value          Amount               `json:"value"`
		Icon           *string              `json:"icon"`
		AllocationType *core.AllocationType `json:"allocationType"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := services.FixedExpensePatch{Icon: req.Icon, AllocationType: req.AllocationType}
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		patch.Name = &name
	}
	if req.Value.Set() {
		v, err := req.Value.Float(core.FormFixedExpense, "value")
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.Value = &v
	}
	s.writeResult(w, r, http.StatusOK)(s.svc.UpdateFixedExpense(r.Context(), sess, r.PathValue("id"), patch))
}

func (s *Server) handleDeleteFixedExpense(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	s.writeResult(w, r, http.StatusOK)(s.svc.DeleteFixedExpense(r.Context(), sess, r.PathValue("id")))
}

// namedValue is the body shared by one-time expenses and gains.
type namedValue struct {
	Name  string `json:"name"`
	Value Amount `json:"value"`
}

func (s *Server) decodeNamedValue(w http.ResponseWriter, r *http.Request, form string) (string, float64, error) {
	var req namedValue
	if err := decodeJSON(w, r, &req); err != nil {
		return "", 0, err
	}
	name := sanitizeInput(req.Name)
	if name == "" {
		return "", 0, &core.ValidationError{Form: form, Field: "name", Err: core.ErrEmptyName}
	}
	v, err := req.Value.Float(form, "value")
	if err != nil {
		return "", 0, err
	}
	return name, v, nil
}

func (s *Server) handleAddOneTimeExpense(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	name, value, err := s.decodeNamedValue(w, r, core.FormOneTimeExpense)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeResult(w, r, http.StatusCreated)(s.svc.AddOneTimeExpense(r.Context(), sess, name, value))
}

func (s *Server) handleDeleteOneTimeExpense(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	s.writeResult(w, r, http.StatusOK)(s.svc.DeleteOneTimeExpense(r.Context(), sess, r.PathValue("id")))
}

func (s *Server) handleAddOneTimeGain(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	name, value, err := s.decodeNamedValue(w, r, core.FormOneTimeGain)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeResult(w, r, http.StatusCreated)(s.svc.AddOneTimeGain(r.Context(), sess, name, value))
}

func (s *Server) handleDeleteOneTimeGain(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	s.writeResult(w, r, http.StatusOK)(s.svc.DeleteOneTimeGain(r.Context(), sess, r.PathValue("id")))
}

func (s *Server) handleAddInvestment(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	var req struct {
		Name          string `json:"name"`
		Amount        Amount `json:"amount"`
		CDIPercentage Amount `json:"cdiPercentage"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	name := sanitizeInput(req.Name)
	if name == "" {
		writeError(w, r, &core.ValidationError{Form: core.FormInvestment, Field: "name", Err: core.ErrEmptyName})
		return
	}
	amount, err := req.Amount.Float(core.FormInvestment, "amount")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cdi, err := req.CDIPercentage.Float(core.FormInvestment, "cdiPercentage")
	if err != nil {
		writeError(w, r, &core.ValidationError{Form: core.FormInvestment, Field: "cdiPercentage", Err: core.ErrInvalidCDI})
		return
	}
	s.writeResult(w, r, http.StatusCreated)(s.svc.AddInvestment(r.Context(), sess, name, amount, cdi))
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	s.writeResult(w, r, http.StatusOK)(s.svc.DeleteInvestment(r.Context(), sess, r.PathValue("id")))
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	var req struct {
		Name         string `json:"name"`
		TargetAmount Amount `json:"targetAmount"`
		Deadline     string `json:"deadline"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	name := sanitizeInput(req.Name)
	if name == "" {
		writeError(w, r, &core.ValidationError{Form: core.FormGoal, Field: "name", Err: core.ErrEmptyName})
		return
	}
	target, err := req.TargetAmount.Float(core.FormGoal, "targetAmount")
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeResult(w, r, http.StatusCreated)(s.svc.AddGoal(r.Context(), sess, name, target, sanitizeInput(req.Deadline)))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request, sess *services.Session) {
	s.writeResult(w, r, http.StatusOK)(s.svc.DeleteGoal(r.Context(), sess, r.PathValue("id")))
}

// writeResult returns a writer for a mutation's outcome so handlers can pass
// the service call straight through.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, status int) func(services.Result, error) {
	return func(res services.Result, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		NewJSONResponse().Status(status).Body(res).Write(w)
	}
}
