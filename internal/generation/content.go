package generation

// Clinical case (array root).

type ClinicalCase struct {
	ID          string      `json:"id"`
	Titulo      string      `json:"titulo"`
	PatientInfo PatientInfo `json:"patientInfo"`
	VitalSigns  VitalSigns  `json:"vitalSigns"`
	CaseSteps   []CaseStep  `json:"caseSteps"`
}

type PatientInfo struct {
	Nome         string `json:"nome"`
	Especie      string `json:"especie"`
	Raca         string `json:"raca"`
	Idade        string `json:"idade"`
	Peso         string `json:"peso"`
	Sexo         string `json:"sexo"`
	Proprietario string `json:"proprietario"`
}

type VitalSigns struct {
	Temperatura            string `json:"temperatura"`
	FrequenciaCardiaca     string `json:"frequenciaCardiaca"`
	FrequenciaRespiratoria string `json:"frequenciaRespiratoria"`
	PressaoArterial        string `json:"pressaoArterial"`
}

type CaseStep struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Quiz (object root, "questions").

type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
	Category      string   `json:"category"`
}

// Flashcards (array root).

type Flashcard struct {
	Front    string `json:"front"`
	Back     string `json:"back"`
	Category string `json:"category"`
}

// Prescription (object root, "medicamentos").

type Prescription struct {
	DiagnosticoPrincipal     string       `json:"diagnosticoPrincipal"`
	GravidadeCaso            string       `json:"gravidadeCaso"`
	Medicamentos             []Medication `json:"medicamentos"`
	InteracoesMedicamentosas []string     `json:"interacoesMedicamentosas"`
	AlertasSeguranca         []string     `json:"alertasSeguranca"`
	Contraindicacoes         []string     `json:"contraindicacoes"`
	Monitoramento            Monitoring   `json:"monitoramento"`
	CuidadosEspeciais        []string     `json:"cuidadosEspeciais"`
	OrientacoesProprietario  []string     `json:"orientacoesProprietario"`
	Retorno                  FollowUp     `json:"retorno"`
	Prognostico              string       `json:"prognostico"`
	AlternativasTerapeuticas []string     `json:"alternativasTerapeuticas"`
}

type Medication struct {
	Nome             string `json:"nome"`
	Categoria        string `json:"categoria"`
	Indicacao        string `json:"indicacao"`
	DoseRecomendada  string `json:"doseRecomendada"`
	DoseCalculada    string `json:"doseCalculada"`
	ViaAdministracao string `json:"viaAdministracao"`
	Frequencia       string `json:"frequencia"`
	Duracao          string `json:"duracao"`
	Horarios         string `json:"horarios"`
	ComAlimento      string `json:"comAlimento"`
	Observacoes      string `json:"observacoes"`
}

type Monitoring struct {
	Parametros   []string `json:"parametros"`
	Frequencia   string   `json:"frequencia"`
	SinaisAlerta []string `json:"sinaisAlerta"`
}

type FollowUp struct {
	Prazo  string `json:"prazo"`
	Motivo string `json:"motivo"`
}

// Study plan (object root, "weeklyPlan").

type StudyPlan struct {
	WeeklyPlan       []StudyDay       `json:"weeklyPlan"`
	ReviewQuestions  []ReviewQuestion `json:"reviewQuestions"`
	RecommendedBooks []Book           `json:"recommendedBooks"`
	StudyTips        []string         `json:"studyTips"`
}

type StudyDay struct {
	Day         string `json:"day"`
	Theme       string `json:"theme"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Activity    string `json:"activity"`
}

type ReviewQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type Book struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

// Study trail (object root, "etapas").

type StudyTrail struct {
	ResumoTrilha           TrailSummary    `json:"resumoTrilha"`
	Etapas                 []TrailStage    `json:"etapas"`
	Cronograma             []TrailWeek     `json:"cronograma"`
	RecursosComplementares []ResourceGroup `json:"recursosComplementares"`
	DicasEstudo            []string        `json:"dicasEstudo"`
	Marcos                 []Milestone     `json:"marcos"`
}

type TrailSummary struct {
	Titulo    string `json:"titulo"`
	Duracao   string `json:"duracao"`
	Nivel     string `json:"nivel"`
	Descricao string `json:"descricao"`
}

type TrailStage struct {
	ID             int             `json:"id"`
	Titulo         string          `json:"titulo"`
	Duracao        string          `json:"duracao"`
	HorasEstimadas string          `json:"horasEstimadas"`
	Descricao      string          `json:"descricao"`
	Topicos        []string        `json:"topicos"`
	Atividades     []string        `json:"atividades"`
	Recursos       []StageResource `json:"recursos"`
	Avaliacoes     []string        `json:"avaliacoes"`
}

type StageResource struct {
	Tipo      string `json:"tipo"`
	Titulo    string `json:"titulo"`
	Autor     string `json:"autor"`
	Fonte     string `json:"fonte"`
	Descricao string `json:"descricao"`
}

type TrailWeek struct {
	Semana        int      `json:"semana"`
	Etapa         string   `json:"etapa"`
	HorasSemanais string   `json:"horasSemanais"`
	Atividades    []string `json:"atividades"`
}

type ResourceGroup struct {
	Categoria string         `json:"categoria"`
	Itens     []ResourceItem `json:"itens"`
}

type ResourceItem struct {
	Titulo    string `json:"titulo"`
	Autor     string `json:"autor"`
	Revista   string `json:"revista"`
	Ano       string `json:"ano"`
	Descricao string `json:"descricao"`
}

type Milestone struct {
	Etapa       string   `json:"etapa"`
	Objetivo    string   `json:"objetivo"`
	Indicadores []string `json:"indicadores"`
}
