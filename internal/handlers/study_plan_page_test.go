package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"vetstudy-backend/internal/logger"
)

func TestStudyPlanPage_Render(t *testing.T) {
	body := map[string]interface{}{
		"tema": "Oftalmologia",
		"plano": map[string]interface{}{
			"weeklyPlan": []interface{}{
				map[string]string{"day": "Segunda-feira", "description": "Anatomia do bulbo ocular"},
				map[string]string{"day": "Terça-feira"},
			},
			"studyTips": []string{"Use atlas de imagem"},
		},
	}

	rr := httptest.NewRecorder()
	NewStudyPlanPageHandler(logger.Nop()).Render(rr, newRequest(t, http.MethodPost, "/api/generate-study-plan-pdf", body, uuid.Nil, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	html, _ := resp["html"].(string)
	if !strings.Contains(html, "Anatomia do bulbo ocular") || !strings.Contains(html, "Oftalmologia") {
		t.Errorf("html does not contain the plan")
	}
	if resp["message"] != "PDF gerado com sucesso" {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestStudyPlanPage_Errors(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
		kind string
	}{
		{"missing fields", map[string]string{}, "validation_error"},
		{"not json", `{"tema": "x", "plano": `, "validation_error"},
		{"plan without days", map[string]interface{}{"tema": "x", "plano": map[string]interface{}{"weeklyPlan": []interface{}{}}}, "no_valid_content"},
		{"plan is a list", map[string]interface{}{"tema": "x", "plano": []string{"a"}}, "schema_mismatch"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewStudyPlanPageHandler(logger.Nop()).Render(rr, newRequest(t, http.MethodPost, "/", tc.body, uuid.Nil, nil))

			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected status 422, got %d", rr.Code)
			}
			if kind := decodeBody(t, rr)["kind"]; kind != tc.kind {
				t.Errorf("kind = %v, want %s", kind, tc.kind)
			}
		})
	}
}
