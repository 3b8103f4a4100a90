package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"vetstudy-backend/internal/generation"
	"vetstudy-backend/internal/logger"
	"vetstudy-backend/internal/render"
)

type StudyPlanPageHandler struct {
	log *logger.Logger
}

func NewStudyPlanPageHandler(log *logger.Logger) *StudyPlanPageHandler {
	return &StudyPlanPageHandler{log: log}
}

type studyPlanPageRequest struct {
	Plano json.RawMessage `json:"plano"`
	Tema  string          `json:"tema"`
}

// Render re-validates a study plan posted back by the client and returns it
// as printable HTML.
func (h *StudyPlanPageHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req studyPlanPageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		status, env := generation.ErrorBody(bodyError("O corpo da requisição não é um JSON válido."))
		writeJSON(w, status, env)
		return
	}

	fields := map[string][]string{}
	if strings.TrimSpace(req.Tema) == "" {
		fields["tema"] = []string{"O campo tema é obrigatório."}
	}
	if len(req.Plano) == 0 || string(req.Plano) == "null" {
		fields["plano"] = []string{"O campo plano é obrigatório."}
	}
	if len(fields) > 0 {
		status, env := generation.ErrorBody(&generation.ValidationError{Fields: fields})
		writeJSON(w, status, env)
		return
	}

	tema := strings.TrimSpace(req.Tema)
	content, err := generation.Validate(generation.TypeStudyPlan, string(req.Plano), generation.Params{"tema": tema})
	if err != nil {
		_, env := generation.ErrorBody(err)
		writeJSON(w, http.StatusUnprocessableEntity, env)
		return
	}

	html, err := render.StudyPlanHTML(content.Value.(generation.StudyPlan), tema)
	if err != nil {
		h.log.Error("study plan render failed", "error", err.Error())
		status, env := generation.ErrorBody(err)
		writeJSON(w, status, env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"html":    html,
		"message": "PDF gerado com sucesso",
	})
}
