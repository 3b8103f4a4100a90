package generation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	notInformed  = "Não informado"
	normalVital  = "Normal"
	optionsCount = 4
)

// Field readers. The model is loose with types, so numbers are accepted where
// text is expected and numeric strings where an index is expected.

func text(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return strings.TrimSpace(r.Str)
	case gjson.Number, gjson.True, gjson.False:
		return r.Raw
	}
	return ""
}

func textOr(r gjson.Result, def string) string {
	if s := text(r); s != "" {
		return s
	}
	return def
}

func texts(r gjson.Result) []string {
	out := []string{}
	for _, item := range items(r) {
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func items(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

func wholeNumber(r gjson.Result) (int, bool) {
	switch r.Type {
	case gjson.Number:
		if r.Num != math.Trunc(r.Num) {
			return 0, false
		}
		return int(r.Num), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		return n, err == nil
	}
	return 0, false
}

func positiveOr(r gjson.Result, def int) int {
	if n, ok := wholeNumber(r); ok && n > 0 {
		return n
	}
	return def
}

// choices reads an options list and answer index. It rejects anything other
// than exactly four non-empty options with an index inside them.
func choices(r gjson.Result) ([]string, int, bool) {
	raw := items(r.Get("options"))
	if len(raw) != optionsCount {
		return nil, 0, false
	}
	opts := make([]string, 0, optionsCount)
	for _, o := range raw {
		s := text(o)
		if s == "" {
			return nil, 0, false
		}
		opts = append(opts, s)
	}
	answer, ok := wholeNumber(r.Get("correctAnswer"))
	if !ok || answer < 0 || answer >= len(opts) {
		return nil, 0, false
	}
	return opts, answer, true
}

func repairClinicalCases(doc gjson.Result, p Params) (interface{}, int, int) {
	area := p.String("areaClinica")
	species := p.String("tipoAnimal")

	cases := []ClinicalCase{}
	total, dropped := 0, 0
	for _, r := range items(doc) {
		info := r.Get("patientInfo")
		if !r.IsObject() || !info.IsObject() {
			dropped++
			continue
		}

		steps := []CaseStep{}
		for _, s := range items(r.Get("caseSteps")) {
			description := text(s.Get("description"))
			explanation := text(s.Get("explanation"))
			opts, answer, ok := choices(s)
			if !ok || description == "" || explanation == "" {
				dropped++
				continue
			}
			n := len(steps) + 1
			steps = append(steps, CaseStep{
				ID:            textOr(s.Get("id"), fmt.Sprintf("step-%d", n)),
				Title:         textOr(s.Get("title"), fmt.Sprintf("Etapa %d - %s", n, area)),
				Description:   description,
				Options:       opts,
				CorrectAnswer: answer,
				Explanation:   explanation,
			})
		}
		if len(steps) == 0 {
			dropped++
			continue
		}

		n := len(cases) + 1
		vitals := r.Get("vitalSigns")
		cases = append(cases, ClinicalCase{
			ID:     textOr(r.Get("id"), fmt.Sprintf("caso-%d", n)),
			Titulo: textOr(r.Get("titulo"), fmt.Sprintf("Caso Clínico %d - %s", n, area)),
			PatientInfo: PatientInfo{
				Nome:         textOr(info.Get("nome"), notInformed),
				Especie:      textOr(info.Get("especie"), species),
				Raca:         textOr(info.Get("raca"), notInformed),
				Idade:        textOr(info.Get("idade"), notInformed),
				Peso:         textOr(info.Get("peso"), notInformed),
				Sexo:         textOr(info.Get("sexo"), notInformed),
				Proprietario: textOr(info.Get("proprietario"), notInformed),
			},
			VitalSigns: VitalSigns{
				Temperatura:            textOr(vitals.Get("temperatura"), normalVital),
				FrequenciaCardiaca:     textOr(vitals.Get("frequenciaCardiaca"), normalVital),
				FrequenciaRespiratoria: textOr(vitals.Get("frequenciaRespiratoria"), normalVital),
				PressaoArterial:        textOr(vitals.Get("pressaoArterial"), normalVital),
			},
			CaseSteps: steps,
		})
		total += len(steps)
	}
	return cases, total, dropped
}

func repairQuiz(doc gjson.Result, p Params) (interface{}, int, int) {
	topic := p.String("topic")
	difficulty := p.String("difficulty")

	quiz := Quiz{Questions: []QuizQuestion{}}
	dropped := 0
	for _, r := range items(doc.Get("questions")) {
		question := text(r.Get("question"))
		explanation := text(r.Get("explanation"))
		opts, answer, ok := choices(r)
		if !ok || question == "" || explanation == "" {
			dropped++
			continue
		}
		n := len(quiz.Questions) + 1
		quiz.Questions = append(quiz.Questions, QuizQuestion{
			ID:            textOr(r.Get("id"), fmt.Sprintf("q-%d", n)),
			Question:      question,
			Options:       opts,
			CorrectAnswer: answer,
			Explanation:   explanation,
			Difficulty:    textOr(r.Get("difficulty"), difficulty),
			Category:      textOr(r.Get("category"), topic),
		})
	}
	return quiz, len(quiz.Questions), dropped
}

func repairFlashcards(doc gjson.Result, p Params) (interface{}, int, int) {
	topic := p.String("tema")

	cards := []Flashcard{}
	dropped := 0
	for _, r := range items(doc) {
		front := text(r.Get("front"))
		back := text(r.Get("back"))
		if !r.IsObject() || front == "" || back == "" {
			dropped++
			continue
		}
		cards = append(cards, Flashcard{
			Front:    front,
			Back:     back,
			Category: textOr(r.Get("category"), topic),
		})
	}
	return cards, len(cards), dropped
}

func repairPrescription(doc gjson.Result, p Params) (interface{}, int, int) {
	meds := []Medication{}
	dropped := 0
	for _, r := range items(doc.Get("medicamentos")) {
		name := text(r.Get("nome"))
		frequency := text(r.Get("frequencia"))
		recommended := text(r.Get("doseRecomendada"))
		calculated := text(r.Get("doseCalculada"))
		if name == "" || frequency == "" || (recommended == "" && calculated == "") {
			dropped++
			continue
		}
		meds = append(meds, Medication{
			Nome:             name,
			Categoria:        textOr(r.Get("categoria"), notInformed),
			Indicacao:        textOr(r.Get("indicacao"), notInformed),
			DoseRecomendada:  textOr(r.Get("doseRecomendada"), notInformed),
			DoseCalculada:    textOr(r.Get("doseCalculada"), notInformed),
			ViaAdministracao: textOr(r.Get("viaAdministracao"), notInformed),
			Frequencia:       frequency,
			Duracao:          textOr(r.Get("duracao"), notInformed),
			Horarios:         textOr(r.Get("horarios"), notInformed),
			ComAlimento:      textOr(r.Get("comAlimento"), notInformed),
			Observacoes:      textOr(r.Get("observacoes"), notInformed),
		})
	}

	monitoring := doc.Get("monitoramento")
	followUp := doc.Get("retorno")
	rx := Prescription{
		DiagnosticoPrincipal:     textOr(doc.Get("diagnosticoPrincipal"), p.String("condicaoClinica")),
		GravidadeCaso:            textOr(doc.Get("gravidadeCaso"), notInformed),
		Medicamentos:             meds,
		InteracoesMedicamentosas: texts(doc.Get("interacoesMedicamentosas")),
		AlertasSeguranca:         texts(doc.Get("alertasSeguranca")),
		Contraindicacoes:         texts(doc.Get("contraindicacoes")),
		Monitoramento: Monitoring{
			Parametros:   texts(monitoring.Get("parametros")),
			Frequencia:   textOr(monitoring.Get("frequencia"), notInformed),
			SinaisAlerta: texts(monitoring.Get("sinaisAlerta")),
		},
		CuidadosEspeciais:       texts(doc.Get("cuidadosEspeciais")),
		OrientacoesProprietario: texts(doc.Get("orientacoesProprietario")),
		Retorno: FollowUp{
			Prazo:  textOr(followUp.Get("prazo"), notInformed),
			Motivo: textOr(followUp.Get("motivo"), notInformed),
		},
		Prognostico:              textOr(doc.Get("prognostico"), notInformed),
		AlternativasTerapeuticas: texts(doc.Get("alternativasTerapeuticas")),
	}
	return rx, len(meds), dropped
}

func repairStudyPlan(doc gjson.Result, p Params) (interface{}, int, int) {
	topic := p.String("tema")
	plan := StudyPlan{
		WeeklyPlan:       []StudyDay{},
		ReviewQuestions:  []ReviewQuestion{},
		RecommendedBooks: []Book{},
		StudyTips:        texts(doc.Get("studyTips")),
	}
	dropped := 0

	for _, r := range items(doc.Get("weeklyPlan")) {
		description := text(r.Get("description"))
		if description == "" {
			dropped++
			continue
		}
		n := len(plan.WeeklyPlan) + 1
		plan.WeeklyPlan = append(plan.WeeklyPlan, StudyDay{
			Day:         textOr(r.Get("day"), fmt.Sprintf("Dia %d", n)),
			Theme:       textOr(r.Get("theme"), topic),
			Description: description,
			Duration:    textOr(r.Get("duration"), notInformed),
			Activity:    textOr(r.Get("activity"), notInformed),
		})
	}

	for _, r := range items(doc.Get("reviewQuestions")) {
		question := text(r.Get("question"))
		explanation := text(r.Get("explanation"))
		opts, answer, ok := choices(r)
		if !ok || question == "" || explanation == "" {
			dropped++
			continue
		}
		plan.ReviewQuestions = append(plan.ReviewQuestions, ReviewQuestion{
			Question:      question,
			Options:       opts,
			CorrectAnswer: answer,
			Explanation:   explanation,
		})
	}

	for _, r := range items(doc.Get("recommendedBooks")) {
		title := text(r.Get("title"))
		if title == "" {
			dropped++
			continue
		}
		plan.RecommendedBooks = append(plan.RecommendedBooks, Book{
			Title:       title,
			Author:      textOr(r.Get("author"), notInformed),
			Description: textOr(r.Get("description"), notInformed),
			Difficulty:  textOr(r.Get("difficulty"), notInformed),
		})
	}

	return plan, len(plan.WeeklyPlan), dropped
}

func repairStudyTrail(doc gjson.Result, p Params) (interface{}, int, int) {
	area := p.String("areaEstudo")
	summary := doc.Get("resumoTrilha")

	trail := StudyTrail{
		ResumoTrilha: TrailSummary{
			Titulo:    textOr(summary.Get("titulo"), "Trilha de estudos - "+area),
			Duracao:   textOr(summary.Get("duracao"), fmt.Sprintf("%d %s", p.Int("tempoDisponivel"), p.String("tipoTempo"))),
			Nivel:     textOr(summary.Get("nivel"), p.String("nivelConhecimento")),
			Descricao: textOr(summary.Get("descricao"), notInformed),
		},
		Etapas:                 []TrailStage{},
		Cronograma:             []TrailWeek{},
		RecursosComplementares: []ResourceGroup{},
		DicasEstudo:            texts(doc.Get("dicasEstudo")),
		Marcos:                 []Milestone{},
	}
	dropped := 0

	for _, r := range items(doc.Get("etapas")) {
		description := text(r.Get("descricao"))
		if description == "" {
			dropped++
			continue
		}
		n := len(trail.Etapas) + 1
		resources := []StageResource{}
		for _, res := range items(r.Get("recursos")) {
			title := text(res.Get("titulo"))
			if title == "" {
				dropped++
				continue
			}
			resources = append(resources, StageResource{
				Tipo:      textOr(res.Get("tipo"), notInformed),
				Titulo:    title,
				Autor:     text(res.Get("autor")),
				Fonte:     text(res.Get("fonte")),
				Descricao: textOr(res.Get("descricao"), notInformed),
			})
		}
		trail.Etapas = append(trail.Etapas, TrailStage{
			ID:             positiveOr(r.Get("id"), n),
			Titulo:         textOr(r.Get("titulo"), fmt.Sprintf("Etapa %d - %s", n, area)),
			Duracao:        textOr(r.Get("duracao"), notInformed),
			HorasEstimadas: textOr(r.Get("horasEstimadas"), notInformed),
			Descricao:      description,
			Topicos:        texts(r.Get("topicos")),
			Atividades:     texts(r.Get("atividades")),
			Recursos:       resources,
			Avaliacoes:     texts(r.Get("avaliacoes")),
		})
	}

	for _, r := range items(doc.Get("cronograma")) {
		stage := text(r.Get("etapa"))
		if stage == "" {
			dropped++
			continue
		}
		trail.Cronograma = append(trail.Cronograma, TrailWeek{
			Semana:        positiveOr(r.Get("semana"), len(trail.Cronograma)+1),
			Etapa:         stage,
			HorasSemanais: textOr(r.Get("horasSemanais"), notInformed),
			Atividades:    texts(r.Get("atividades")),
		})
	}

	for _, r := range items(doc.Get("recursosComplementares")) {
		category := text(r.Get("categoria"))
		if category == "" {
			dropped++
			continue
		}
		group := ResourceGroup{Categoria: category, Itens: []ResourceItem{}}
		for _, it := range items(r.Get("itens")) {
			title := text(it.Get("titulo"))
			if title == "" {
				dropped++
				continue
			}
			group.Itens = append(group.Itens, ResourceItem{
				Titulo:    title,
				Autor:     text(it.Get("autor")),
				Revista:   text(it.Get("revista")),
				Ano:       text(it.Get("ano")),
				Descricao: textOr(it.Get("descricao"), notInformed),
			})
		}
		trail.RecursosComplementares = append(trail.RecursosComplementares, group)
	}

	for _, r := range items(doc.Get("marcos")) {
		goal := text(r.Get("objetivo"))
		if goal == "" {
			dropped++
			continue
		}
		trail.Marcos = append(trail.Marcos, Milestone{
			Etapa:       textOr(r.Get("etapa"), notInformed),
			Objetivo:    goal,
			Indicadores: texts(r.Get("indicadores")),
		})
	}

	return trail, len(trail.Etapas), dropped
}
