package generation

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustParams(t *testing.T, ct ContentType, raw map[string]interface{}) Params {
	t.Helper()
	p, err := ct.Schema().Validate(raw)
	if err != nil {
		t.Fatalf("invalid test parameters: %v", err)
	}
	return p
}

func quizParams(t *testing.T) Params {
	return mustParams(t, TypeQuiz, map[string]interface{}{
		"topic":      "Cardiologia",
		"difficulty": "medium",
	})
}

func TestValidate_QuizScenario(t *testing.T) {
	candidate := `{"questions": [
		{"question": "Qual a frequência cardíaca normal de um cão adulto?", "options": ["60-140 bpm", "20-40 bpm", "200-300 bpm", "5-10 bpm"], "correctAnswer": 0, "explanation": "Faixa de referência."},
		{"question": "Pergunta com índice inválido", "options": ["a", "b", "c", "d"], "correctAnswer": 4, "explanation": "x"},
		{"question": "Pergunta com três opções", "options": ["a", "b", "c"], "correctAnswer": 1, "explanation": "x"}
	]}`

	content, err := Validate(TypeQuiz, candidate, quizParams(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Total != 1 || content.Dropped != 2 {
		t.Fatalf("expected 1 kept and 2 dropped, got %d and %d", content.Total, content.Dropped)
	}
	q := content.Value.(Quiz).Questions[0]
	if q.ID != "q-1" {
		t.Errorf("expected generated id q-1, got %q", q.ID)
	}
	if q.Difficulty != "medium" || q.Category != "Cardiologia" {
		t.Errorf("defaults not applied: %+v", q)
	}
}

func TestValidate_FlashcardsKeepsThreeOfFive(t *testing.T) {
	candidate := `[
		{"front": "O que é FeLV?", "back": "Vírus da leucemia felina", "category": "Infectologia"},
		{"front": "", "back": "sem frente"},
		{"front": "Sem verso"},
		{"front": "Vacina V10 protege contra?", "back": "Dez doenças", "category": ""},
		{"front": "Agente da raiva?", "back": "Lyssavirus"}
	]`
	params := mustParams(t, TypeFlashcardSet, map[string]interface{}{"tema": "Vacinação"})

	content, err := Validate(TypeFlashcardSet, candidate, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Total != 3 || content.Dropped != 2 {
		t.Fatalf("expected 3 kept and 2 dropped, got %d and %d", content.Total, content.Dropped)
	}
	cards := content.Value.([]Flashcard)
	if cards[1].Category != "Vacinação" || cards[2].Category != "Vacinação" {
		t.Errorf("expected category to default to the topic, got %+v", cards)
	}
}

func TestValidate_CorrectAnswerBounds(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		keep   bool
	}{
		{"zero", `0`, true},
		{"last", `3`, true},
		{"numeric string", `"2"`, true},
		{"negative", `-1`, false},
		{"past end", `4`, false},
		{"fraction", `1.5`, false},
		{"missing", `null`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			candidate := `{"questions": [{"question": "Q", "options": ["a","b","c","d"], "correctAnswer": ` + tc.answer + `, "explanation": "E"}]}`
			content, err := Validate(TypeQuiz, candidate, quizParams(t))
			if !tc.keep {
				var empty *NoValidContentError
				if !errors.As(err, &empty) {
					t.Fatalf("expected *NoValidContentError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			q := content.Value.(Quiz).Questions[0]
			if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
				t.Errorf("answer %d out of range", q.CorrectAnswer)
			}
		})
	}
}

func TestValidate_ShapeErrors(t *testing.T) {
	params := quizParams(t)

	_, err := Validate(TypeQuiz, `{"questions": [}`, params)
	var malformed *MalformedJSONError
	if !errors.As(err, &malformed) || malformed.Message == "" {
		t.Errorf("expected *MalformedJSONError with a message, got %v", err)
	}

	_, err = Validate(TypeQuiz, `[{"question": "Q"}]`, params)
	var mismatch *SchemaMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected *SchemaMismatchError for an array root, got %v", err)
	}

	_, err = Validate(TypeQuiz, `{"perguntas": []}`, params)
	if !errors.As(err, &mismatch) {
		t.Errorf("expected *SchemaMismatchError for a missing key, got %v", err)
	}

	_, err = Validate(TypeQuiz, `{"questions": []}`, params)
	var empty *NoValidContentError
	if !errors.As(err, &empty) {
		t.Errorf("expected *NoValidContentError, got %v", err)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	tests := []struct {
		ct        ContentType
		raw       map[string]interface{}
		candidate string
	}{
		{
			TypeClinicalCase,
			map[string]interface{}{"tipoAnimal": "Felino", "areaClinica": "Nefrologia", "nivel": "basico"},
			`[{"patientInfo": {"nome": "Mimi"}, "caseSteps": [
				{"description": "Gata com poliúria", "options": ["a","b","c","d"], "correctAnswer": 2, "explanation": "E"},
				{"description": "Sem explicação", "options": ["a","b","c","d"], "correctAnswer": 1}
			]}]`,
		},
		{
			TypeQuiz,
			map[string]interface{}{"topic": "Oftalmologia", "difficulty": "mixed"},
			`{"questions": [{"question": "Q", "options": ["a","b","c","d"], "correctAnswer": 1, "explanation": "E", "difficulty": "hard"}]}`,
		},
		{
			TypePrescription,
			map[string]interface{}{"situacaoClinica": "Otite", "peso": 8, "especie": "Canino", "condicaoClinica": "Otite externa"},
			`{"medicamentos": [{"nome": "Enrofloxacino", "doseRecomendada": "5 mg/kg", "frequencia": "24h"}, {"nome": "Sem dose"}], "monitoramento": {}}`,
		},
		{
			TypeStudyPlan,
			map[string]interface{}{"tema": "Cardiologia", "nivel": "avancado", "dias_por_semana": 2, "horas_por_dia": 2, "semanas_totais": 1},
			`{"weeklyPlan": [{"description": "Eletrocardiograma"}, {"day": "Terça", "description": "Ecocardiograma"}], "reviewQuestions": [{"question": "Q", "options": ["a","b","c","d"], "correctAnswer": 0, "explanation": "E"}], "recommendedBooks": [{"title": "Livro"}], "studyTips": ["Revise"]}`,
		},
		{
			TypeStudyTrail,
			map[string]interface{}{"areaEstudo": "Cirurgia", "nivelConhecimento": "iniciante", "tempoDisponivel": 3, "tipoTempo": "semanas", "horasPorDia": 2},
			`{"etapas": [{"descricao": "Fundamentos", "recursos": [{"titulo": "Manual", "tipo": "livro"}, {}]}], "cronograma": [{"etapa": "Fundamentos"}], "recursosComplementares": [{"categoria": "Livros", "itens": [{"titulo": "Atlas"}]}], "marcos": [{"objetivo": "Suturas"}]}`,
		},
	}
	for _, tc := range tests {
		t.Run(string(tc.ct), func(t *testing.T) {
			params := mustParams(t, tc.ct, tc.raw)
			first, err := Validate(tc.ct, tc.candidate, params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			encoded, err := json.Marshal(first.Value)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			second, err := Validate(tc.ct, string(encoded), params)
			if err != nil {
				t.Fatalf("revalidation failed: %v", err)
			}
			if !reflect.DeepEqual(first.Value, second.Value) {
				t.Errorf("revalidation changed the envelope:\nfirst:  %+v\nsecond: %+v", first.Value, second.Value)
			}
			if second.Dropped != 0 || second.Total != first.Total {
				t.Errorf("expected the same total and nothing dropped, got total %d dropped %d", second.Total, second.Dropped)
			}
		})
	}
}

func TestValidate_ClinicalCaseDefaults(t *testing.T) {
	params := mustParams(t, TypeClinicalCase, map[string]interface{}{
		"tipoAnimal": "Equino", "areaClinica": "Ortopedia", "nivel": "avancado",
	})
	candidate := `[{"patientInfo": {}, "caseSteps": [{"description": "Claudicação", "options": ["a","b","c","d"], "correctAnswer": 3, "explanation": "E"}]}]`

	content, err := Validate(TypeClinicalCase, candidate, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := content.Value.([]ClinicalCase)[0]
	if c.ID != "caso-1" || c.Titulo != "Caso Clínico 1 - Ortopedia" {
		t.Errorf("unexpected fallbacks: %q %q", c.ID, c.Titulo)
	}
	if c.PatientInfo.Especie != "Equino" || c.PatientInfo.Nome != "Não informado" {
		t.Errorf("unexpected patient defaults: %+v", c.PatientInfo)
	}
	if c.VitalSigns.Temperatura != "Normal" {
		t.Errorf("unexpected vital default %q", c.VitalSigns.Temperatura)
	}
	if s := c.CaseSteps[0]; s.ID != "step-1" || s.Title != "Etapa 1 - Ortopedia" {
		t.Errorf("unexpected step fallbacks: %+v", s)
	}
}
