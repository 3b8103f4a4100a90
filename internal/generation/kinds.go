package generation

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
)

type ContentType string

const (
	TypeClinicalCase ContentType = "clinical_case"
	TypeFlashcardSet ContentType = "flashcard_set"
	TypeQuiz         ContentType = "quiz"
	TypePrescription ContentType = "prescription"
	TypeStudyPlan    ContentType = "study_plan"
	TypeStudyTrail   ContentType = "study_trail"
)

type rootKind int

const (
	rootObject rootKind = iota
	rootArray
)

func (k rootKind) String() string {
	if k == rootArray {
		return "array"
	}
	return "object"
}

// kind is one row of the strategy table: everything that differs between
// content types. The pipeline itself is shared.
type kind struct {
	schema   Schema
	prompt   func(Params) string
	root     rootKind
	required string // top-level key that must exist for object roots
	repair   func(gjson.Result, Params) (content interface{}, total, dropped int)
	field    string // response key holding the content
	message  func(total int) string
}

var kinds = map[ContentType]kind{
	TypeClinicalCase: {
		schema: Schema{
			{Name: "tipoAnimal", Kind: KindString, Required: true, MaxLen: 100},
			{Name: "areaClinica", Kind: KindString, Required: true, MaxLen: 100},
			{Name: "nivel", Kind: KindEnum, Required: true, Enum: []string{"basico", "intermediario", "avancado"}},
			{Name: "quantidade", Kind: KindInteger, Default: 5, Min: 1, Max: 10},
		},
		prompt: clinicalCasePrompt,
		root:   rootArray,
		repair: repairClinicalCases,
		field:  "cases",
		message: func(total int) string {
			return fmt.Sprintf("Caso clínico gerado com sucesso com %d questões!", total)
		},
	},
	TypeFlashcardSet: {
		schema: Schema{
			{Name: "tema", Kind: KindString, Required: true, MaxLen: 255},
			{Name: "quantidade", Kind: KindInteger, Default: 5, Min: 1, Max: 20},
			{Name: "idioma", Kind: KindEnum, Default: "Português", Enum: []string{"Português", "Inglês", "Espanhol"}},
		},
		prompt: flashcardPrompt,
		root:   rootArray,
		repair: repairFlashcards,
		field:  "flashcards",
		message: func(total int) string {
			return fmt.Sprintf("%d flashcards gerados com sucesso!", total)
		},
	},
	TypeQuiz: {
		schema: Schema{
			{Name: "topic", Kind: KindString, Required: true, MaxLen: 200},
			{Name: "difficulty", Kind: KindEnum, Required: true, Enum: []string{"easy", "medium", "hard", "mixed"}},
			{Name: "numberOfQuestions", Kind: KindInteger, Default: 5, Min: 1, Max: 20},
		},
		prompt:   quizPrompt,
		root:     rootObject,
		required: "questions",
		repair:   repairQuiz,
		field:    "questions",
		message: func(total int) string {
			return fmt.Sprintf("Quiz gerado com sucesso com %d questões!", total)
		},
	},
	TypePrescription: {
		schema: Schema{
			{Name: "situacaoClinica", Kind: KindString, Required: true, MaxLen: 1000},
			{Name: "peso", Kind: KindNumber, Required: true, Min: 0.1, Max: 1000},
			{Name: "especie", Kind: KindString, Required: true, MaxLen: 100},
			{Name: "raca", Kind: KindString, Default: notInformed, MaxLen: 100},
			{Name: "idade", Kind: KindString, Default: notInformed, MaxLen: 50},
			{Name: "sexo", Kind: KindEnum, Default: notInformed, Enum: []string{"Macho", "Fêmea", notInformed}},
			{Name: "condicaoClinica", Kind: KindString, Required: true, MaxLen: 500},
			{Name: "alergias", Kind: KindString, Default: "Nenhuma conhecida", MaxLen: 500},
			{Name: "medicamentosAtuais", Kind: KindString, Default: "Nenhum", MaxLen: 500},
		},
		prompt:   prescriptionPrompt,
		root:     rootObject,
		required: "medicamentos",
		repair:   repairPrescription,
		field:    "prescription",
		message: func(total int) string {
			return fmt.Sprintf("Prescrição gerada com sucesso com %d medicamentos!", total)
		},
	},
	TypeStudyPlan: {
		schema: Schema{
			{Name: "tema", Kind: KindString, Required: true, MaxLen: 500},
			{Name: "nivel", Kind: KindEnum, Required: true, Enum: []string{"iniciante", "intermediario", "avancado", "especializacao"}},
			{Name: "dias_por_semana", Kind: KindInteger, Required: true, Min: 1, Max: 7},
			{Name: "horas_por_dia", Kind: KindNumber, Required: true, Min: 0.5, Max: 12},
			{Name: "semanas_totais", Kind: KindInteger, Required: true, Min: 1, Max: 52},
			{Name: "preferencias", Kind: KindFlagMap, Enum: []string{"clinicalCases", "scientificArticles", "flashcards", "videos", "multipleChoice", "books"}},
			{Name: "idioma", Kind: KindString, Default: "Português", MaxLen: 50},
		},
		prompt:   studyPlanPrompt,
		root:     rootObject,
		required: "weeklyPlan",
		repair:   repairStudyPlan,
		field:    "studyPlan",
		message: func(total int) string {
			return fmt.Sprintf("Plano de estudos gerado com sucesso com %d dias de estudo!", total)
		},
	},
	TypeStudyTrail: {
		schema: Schema{
			{Name: "areaEstudo", Kind: KindString, Required: true, MaxLen: 255},
			{Name: "nivelConhecimento", Kind: KindEnum, Required: true, Enum: []string{"iniciante", "intermediario", "avancado"}},
			{Name: "tempoDisponivel", Kind: KindInteger, Required: true, Min: 1, Max: 365},
			{Name: "tipoTempo", Kind: KindEnum, Required: true, Enum: []string{"dias", "semanas", "meses"}},
			{Name: "horasPorDia", Kind: KindInteger, Required: true, Min: 1, Max: 12},
			{Name: "objetivos", Kind: KindString, Default: "Não especificado", MaxLen: 1000},
			{Name: "preferencias", Kind: KindString, Default: "Não especificado", MaxLen: 500},
			{Name: "recursosPreferidos", Kind: KindStringList, Enum: []string{"livros", "artigos", "videos", "pratica", "simulacoes"}},
		},
		prompt:   studyTrailPrompt,
		root:     rootObject,
		required: "etapas",
		repair:   repairStudyTrail,
		field:    "studyTrail",
		message: func(total int) string {
			return fmt.Sprintf("Trilha de estudos gerada com sucesso com %d etapas!", total)
		},
	},
}

// ParseContentType accepts the content-type tags above.
func ParseContentType(s string) (ContentType, bool) {
	ct := ContentType(s)
	_, ok := kinds[ct]
	return ct, ok
}

// ContentTypes lists every supported tag in a stable order.
func ContentTypes() []ContentType {
	out := make([]ContentType, 0, len(kinds))
	for ct := range kinds {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (ct ContentType) Schema() Schema {
	return kinds[ct].schema
}

// Field is the success-envelope key that carries this type's content.
func (ct ContentType) Field() string {
	return kinds[ct].field
}
