package generation

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestValidate_AppliesDefaults(t *testing.T) {
	params, err := TypeQuiz.Schema().Validate(map[string]interface{}{
		"topic":      "Cardiologia",
		"difficulty": "hard",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Int("numberOfQuestions") != 5 {
		t.Errorf("expected default of 5 questions, got %d", params.Int("numberOfQuestions"))
	}
	if params.String("topic") != "Cardiologia" {
		t.Errorf("unexpected topic %q", params.String("topic"))
	}
}

func TestValidate_EnumeratesEveryBadField(t *testing.T) {
	_, err := TypeClinicalCase.Schema().Validate(map[string]interface{}{
		"areaClinica": "   ",
		"nivel":       "expert",
		"quantidade":  json.Number("11"),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, name := range []string{"tipoAnimal", "areaClinica", "nivel", "quantidade"} {
		if len(verr.Fields[name]) == 0 {
			t.Errorf("expected a message for %s, got %v", name, verr.Fields)
		}
	}
	if len(verr.Fields) != 4 {
		t.Errorf("expected 4 rejected fields, got %d: %v", len(verr.Fields), verr.Fields)
	}
}

func TestValidate_Numbers(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    int
		wantErr bool
	}{
		{"json number", json.Number("20"), 20, false},
		{"float64", float64(7), 7, false},
		{"numeric string", "3", 3, false},
		{"upper bound", json.Number("21"), 0, true},
		{"lower bound", json.Number("0"), 0, true},
		{"fraction", json.Number("2.5"), 0, true},
		{"text", "many", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params, err := TypeQuiz.Schema().Validate(map[string]interface{}{
				"topic":             "Dermatologia",
				"difficulty":        "easy",
				"numberOfQuestions": tc.value,
			})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %v", tc.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := params.Int("numberOfQuestions"); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestValidate_PrescriptionWeight(t *testing.T) {
	raw := map[string]interface{}{
		"situacaoClinica": "Vômitos há dois dias",
		"peso":            "12.5",
		"especie":         "Canino",
		"condicaoClinica": "Gastrite",
	}
	params, err := TypePrescription.Schema().Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Float("peso") != 12.5 {
		t.Errorf("expected 12.5, got %v", params.Float("peso"))
	}
	if params.String("sexo") != "Não informado" || params.String("alergias") != "Nenhuma conhecida" {
		t.Errorf("defaults not applied: %v", params)
	}

	raw["peso"] = json.Number("0.05")
	if _, err := TypePrescription.Schema().Validate(raw); err == nil {
		t.Error("expected weight below 0.1 to be rejected")
	}
}

func TestValidate_FlagMapAndList(t *testing.T) {
	params, err := TypeStudyPlan.Schema().Validate(map[string]interface{}{
		"tema":            "Nefrologia",
		"nivel":           "iniciante",
		"dias_por_semana": json.Number("3"),
		"horas_por_dia":   json.Number("1.5"),
		"semanas_totais":  json.Number("4"),
		"preferencias":    map[string]interface{}{"videos": true, "books": false},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flags := params.Flags("preferencias")
	if len(flags) != 6 || !flags["videos"] || flags["books"] || flags["flashcards"] {
		t.Errorf("unexpected flags: %v", flags)
	}

	_, err = TypeStudyPlan.Schema().Validate(map[string]interface{}{
		"tema":            "Nefrologia",
		"nivel":           "iniciante",
		"dias_por_semana": json.Number("3"),
		"horas_por_dia":   json.Number("1.5"),
		"semanas_totais":  json.Number("4"),
		"preferencias":    map[string]interface{}{"podcasts": true, "videos": "yes"},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["preferencias"]) != 2 {
		t.Fatalf("expected two messages for preferencias, got %v", err)
	}

	params, err = TypeStudyTrail.Schema().Validate(map[string]interface{}{
		"areaEstudo":         "Anestesiologia",
		"nivelConhecimento":  "avancado",
		"tempoDisponivel":    json.Number("2"),
		"tipoTempo":          "meses",
		"horasPorDia":        json.Number("2"),
		"recursosPreferidos": []interface{}{"livros", "videos"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(params.Strings("recursosPreferidos"), []string{"livros", "videos"}) {
		t.Errorf("unexpected list: %v", params.Strings("recursosPreferidos"))
	}
	if params.String("objetivos") != "Não especificado" {
		t.Errorf("expected default objetivos, got %q", params.String("objetivos"))
	}
}
