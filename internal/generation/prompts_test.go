package generation

import (
	"strings"
	"testing"
)

func samplePrompts(t *testing.T) map[ContentType]map[string]interface{} {
	t.Helper()
	return map[ContentType]map[string]interface{}{
		TypeClinicalCase: {"tipoAnimal": "Canino", "areaClinica": "Cardiologia", "nivel": "intermediario", "quantidade": 4},
		TypeFlashcardSet: {"tema": "Farmacologia", "quantidade": 8, "idioma": "Inglês"},
		TypeQuiz:         {"topic": "Neurologia", "difficulty": "mixed", "numberOfQuestions": 7},
		TypePrescription: {"situacaoClinica": "Prurido intenso", "peso": 4.2, "especie": "Felino", "condicaoClinica": "Dermatite alérgica"},
		TypeStudyPlan: {
			"tema": "Clínica de felinos", "nivel": "intermediario", "dias_por_semana": 7, "horas_por_dia": 1.5, "semanas_totais": 5,
			"preferencias": map[string]interface{}{"videos": true, "books": true, "clinicalCases": false},
		},
		TypeStudyTrail: {"areaEstudo": "Anestesiologia", "nivelConhecimento": "iniciante", "tempoDisponivel": 2, "tipoTempo": "semanas", "horasPorDia": 2},
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	for ct, raw := range samplePrompts(t) {
		t.Run(string(ct), func(t *testing.T) {
			first, err := NewRequest(ct, raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			second, err := NewRequest(ct, raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			a, b := BuildPrompt(first), BuildPrompt(second)
			if a != b {
				t.Error("identical requests produced different prompts")
			}
			if !strings.Contains(a, "APENAS com JSON válido") {
				t.Error("prompt does not demand JSON only")
			}
		})
	}
}

func TestBuildPrompt_RestatesParameters(t *testing.T) {
	prompts := map[ContentType]string{}
	for ct, raw := range samplePrompts(t) {
		req, err := NewRequest(ct, raw)
		if err != nil {
			t.Fatalf("%s: %v", ct, err)
		}
		prompts[ct] = BuildPrompt(req)
	}

	tests := []struct {
		ct   ContentType
		want []string
	}{
		{TypeClinicalCase, []string{"Tipo de animal: Canino", "Área clínica: Cardiologia", "EXATAMENTE 4 etapas", `"caseSteps"`}},
		{TypeFlashcardSet, []string{"Tema: Farmacologia", "EXATAMENTE 8 flashcards", "Idioma: Inglês"}},
		{TypeQuiz, []string{"Tópico: Neurologia", "Dificuldade: mixed (misto - variando entre fácil, médio e difícil)", "EXATAMENTE 7 questões", "Misture questões"}},
		{TypePrescription, []string{"Peso: 4.2 kg", "Sexo: Não informado", "Medicamentos atuais: Nenhum", `"medicamentos"`}},
		{TypeStudyPlan, []string{"Horas por dia: 1.5", "Formatos preferidos: livros especializados, vídeos educativos", "EXATAMENTE 28 dias", "EXATAMENTE 5 questões", "EXATAMENTE 3 livros", "EXATAMENTE 6 dicas"}},
		{TypeStudyTrail, []string{"(14 dias)", "Total de horas: 28h", "EXATAMENTE 3 etapas", "EXATAMENTE 2 semanas", "Recursos preferidos: Todos os tipos", "EXATAMENTE 5 dicas"}},
	}
	for _, tc := range tests {
		for _, s := range tc.want {
			if !strings.Contains(prompts[tc.ct], s) {
				t.Errorf("%s prompt is missing %q", tc.ct, s)
			}
		}
	}
}

func TestTrailSize(t *testing.T) {
	tests := []struct {
		amount, hours int
		unit          string
		stages, weeks int
	}{
		{1, 1, "dias", 3, 1},
		{3, 4, "meses", 8, 12},
		{10, 4, "semanas", 8, 10},
		{30, 3, "dias", 5, 5},
	}
	for _, tc := range tests {
		p := Params{"tempoDisponivel": tc.amount, "tipoTempo": tc.unit, "horasPorDia": tc.hours}
		_, _, stages, weeks := trailSize(p)
		if stages != tc.stages || weeks != tc.weeks {
			t.Errorf("%d %s x %dh: expected %d stages and %d weeks, got %d and %d",
				tc.amount, tc.unit, tc.hours, tc.stages, tc.weeks, stages, weeks)
		}
	}
}
