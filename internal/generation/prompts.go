package generation

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const jsonOnly = "IMPORTANTE: Responda APENAS com JSON válido. Não escreva explicações, comentários, texto antes ou depois do JSON, nem blocos de código markdown."

// BuildPrompt renders the user prompt for a validated request. The output
// depends only on the request.
func BuildPrompt(req Request) string {
	return kinds[req.Type].prompt(req.Params)
}

const clinicalCaseExample = `[
  {
    "id": "caso-1",
    "titulo": "Título descritivo do caso clínico",
    "patientInfo": {
      "nome": "Nome do animal",
      "especie": "Espécie",
      "raca": "Raça específica",
      "idade": "5 anos",
      "peso": "25 kg",
      "sexo": "Macho",
      "proprietario": "Nome do proprietário"
    },
    "vitalSigns": {
      "temperatura": "38.5°C",
      "frequenciaCardiaca": "100 bpm",
      "frequenciaRespiratoria": "24 mpm",
      "pressaoArterial": "120/80 mmHg"
    },
    "caseSteps": [
      {
        "id": "step-1",
        "title": "Anamnese",
        "description": "Situação apresentada pelo proprietário com queixa principal, histórico e sinais observados",
        "options": ["Opção A", "Opção B", "Opção C", "Opção D"],
        "correctAnswer": 0,
        "explanation": "Por que a opção correta está certa e as demais estão erradas"
      }
    ]
  }
]`

func clinicalCasePrompt(p Params) string {
	n := p.Int("quantidade")
	var b strings.Builder
	b.WriteString("Você é um especialista em medicina veterinária. Gere exatamente 1 caso clínico completo, realista e educativo.\n\n")
	b.WriteString("PARÂMETROS:\n")
	fmt.Fprintf(&b, "- Tipo de animal: %s\n", p.String("tipoAnimal"))
	fmt.Fprintf(&b, "- Área clínica: %s\n", p.String("areaClinica"))
	fmt.Fprintf(&b, "- Nível de dificuldade: %s\n", p.String("nivel"))
	fmt.Fprintf(&b, "- Quantidade de questões: %d\n\n", n)
	b.WriteString(jsonOnly + "\n\n")
	b.WriteString("Formato obrigatório (array com exatamente 1 caso):\n")
	b.WriteString(clinicalCaseExample + "\n\n")
	b.WriteString("REGRAS:\n")
	fmt.Fprintf(&b, "- O array caseSteps deve ter EXATAMENTE %d etapas, com ids step-1 a step-%d.\n", n, n)
	b.WriteString("- Cada etapa deve ter title, description, exatamente 4 opções não vazias, correctAnswer entre 0 e 3 e explanation não vazia.\n")
	b.WriteString("- Preencha todos os campos de patientInfo e vitalSigns.\n")
	fmt.Fprintf(&b, "- O caso deve ser apropriado ao nível %s (basico = simples, intermediario = moderado, avancado = complexo).\n", p.String("nivel"))
	b.WriteString("- Varie as etapas entre anamnese, exame físico, exames complementares, diagnóstico diferencial e tratamento.\n")
	fmt.Fprintf(&b, "\nGere o caso para %s na área de %s.", p.String("tipoAnimal"), p.String("areaClinica"))
	return b.String()
}

const flashcardExample = `[
  {
    "front": "Pergunta ou conceito",
    "back": "Resposta ou explicação",
    "category": "Categoria do conteúdo"
  }
]`

func flashcardPrompt(p Params) string {
	n := p.Int("quantidade")
	var b strings.Builder
	b.WriteString("Você é um professor de medicina veterinária que cria flashcards de estudo.\n\n")
	b.WriteString("PARÂMETROS:\n")
	fmt.Fprintf(&b, "- Tema: %s\n", p.String("tema"))
	fmt.Fprintf(&b, "- Quantidade: %d\n", n)
	fmt.Fprintf(&b, "- Idioma: %s\n\n", p.String("idioma"))
	b.WriteString(jsonOnly + "\n\n")
	b.WriteString("Formato obrigatório (array de flashcards):\n")
	b.WriteString(flashcardExample + "\n\n")
	b.WriteString("REGRAS:\n")
	fmt.Fprintf(&b, "- Gere EXATAMENTE %d flashcards.\n", n)
	b.WriteString("- Todos os campos front, back e category devem estar preenchidos.\n")
	fmt.Fprintf(&b, "- Escreva todo o conteúdo em %s.\n", p.String("idioma"))
	b.WriteString("- Não repita conceitos entre flashcards.")
	return b.String()
}

const quizExample = `{
  "questions": [
    {
      "id": "q-1",
      "question": "Enunciado da pergunta",
      "options": ["Opção A", "Opção B", "Opção C", "Opção D"],
      "correctAnswer": 0,
      "explanation": "Explicação da resposta correta",
      "difficulty": "medium",
      "category": "Categoria"
    }
  ]
}`

var difficultyText = map[string]string{
	"easy":   "fácil - adequado para estudantes iniciantes",
	"medium": "médio - adequado para estudantes intermediários",
	"hard":   "difícil - adequado para estudantes avançados e profissionais",
	"mixed":  "misto - variando entre fácil, médio e difícil",
}

func quizPrompt(p Params) string {
	n := p.Int("numberOfQuestions")
	var b strings.Builder
	b.WriteString("Você é um professor de medicina veterinária que elabora quizzes de múltipla escolha.\n\n")
	b.WriteString("PARÂMETROS:\n")
	fmt.Fprintf(&b, "- Tópico: %s\n", p.String("topic"))
	fmt.Fprintf(&b, "- Dificuldade: %s (%s)\n", p.String("difficulty"), difficultyText[p.String("difficulty")])
	fmt.Fprintf(&b, "- Número de questões: %d\n\n", n)
	b.WriteString(jsonOnly + "\n\n")
	b.WriteString("Formato obrigatório:\n")
	b.WriteString(quizExample + "\n\n")
	b.WriteString("REGRAS:\n")
	fmt.Fprintf(&b, "- O array questions deve ter EXATAMENTE %d questões, com ids q-1 a q-%d.\n", n, n)
	b.WriteString("- Cada questão deve ter exatamente 4 opções não vazias, correctAnswer entre 0 e 3 e explanation não vazia.\n")
	if p.String("difficulty") == "mixed" {
		b.WriteString("- Misture questões easy, medium e hard e informe a dificuldade de cada uma em difficulty.\n")
	} else {
		fmt.Fprintf(&b, "- Todas as questões devem ter difficulty \"%s\".\n", p.String("difficulty"))
	}
	b.WriteString("- Escreva as perguntas em português, com terminologia veterinária correta.")
	return b.String()
}

const prescriptionExample = `{
  "diagnosticoPrincipal": "Diagnóstico principal baseado nos sinais",
  "gravidadeCaso": "Leve/Moderado/Grave",
  "medicamentos": [
    {
      "nome": "Nome comercial e princípio ativo",
      "categoria": "Categoria farmacológica",
      "indicacao": "Para que serve neste caso",
      "doseRecomendada": "Dose em mg/kg",
      "doseCalculada": "Dose calculada para este paciente",
      "viaAdministracao": "Via de administração",
      "frequencia": "A cada 12h",
      "duracao": "7 dias",
      "horarios": "08h e 20h",
      "comAlimento": "Com alimento",
      "observacoes": "Observações do medicamento"
    }
  ],
  "interacoesMedicamentosas": ["Interação com os medicamentos atuais"],
  "alertasSeguranca": ["Alerta de segurança"],
  "contraindicacoes": ["Contraindicação para esta espécie ou condição"],
  "monitoramento": {
    "parametros": ["Parâmetro a monitorar"],
    "frequencia": "Com que frequência monitorar",
    "sinaisAlerta": ["Sinal que exige intervenção"]
  },
  "cuidadosEspeciais": ["Cuidado durante o tratamento"],
  "orientacoesProprietario": ["Orientação ao proprietário"],
  "retorno": {
    "prazo": "Quando retornar",
    "motivo": "Por que retornar"
  },
  "prognostico": "Prognóstico esperado",
  "alternativasTerapeuticas": ["Alternativa caso o tratamento falhe"]
}`

func prescriptionPrompt(p Params) string {
	var b strings.Builder
	b.WriteString("Você é um veterinário especialista em farmacologia veterinária. Gere uma prescrição completa, segura e educativa para o paciente abaixo.\n\n")
	b.WriteString("INFORMAÇÕES DO PACIENTE:\n")
	fmt.Fprintf(&b, "- Situação clínica: %s\n", p.String("situacaoClinica"))
	fmt.Fprintf(&b, "- Espécie: %s\n", p.String("especie"))
	fmt.Fprintf(&b, "- Raça: %s\n", p.String("raca"))
	fmt.Fprintf(&b, "- Peso: %s kg\n", formatNumber(p.Float("peso")))
	fmt.Fprintf(&b, "- Idade: %s\n", p.String("idade"))
	fmt.Fprintf(&b, "- Sexo: %s\n", p.String("sexo"))
	fmt.Fprintf(&b, "- Condição clínica: %s\n", p.String("condicaoClinica"))
	fmt.Fprintf(&b, "- Alergias conhecidas: %s\n", p.String("alergias"))
	fmt.Fprintf(&b, "- Medicamentos atuais: %s\n\n", p.String("medicamentosAtuais"))
	b.WriteString(jsonOnly + "\n\n")
	b.WriteString("Formato obrigatório:\n")
	b.WriteString(prescriptionExample + "\n\n")
	b.WriteString("REGRAS:\n")
	b.WriteString("- Inclua pelo menos 1 medicamento; cada medicamento deve ter nome, doseRecomendada, doseCalculada e frequencia preenchidos.\n")
	fmt.Fprintf(&b, "- Calcule doseCalculada para o peso de %s kg.\n", formatNumber(p.Float("peso")))
	b.WriteString("- Considere as alergias e as interações com os medicamentos atuais.\n")
	b.WriteString("- Todas as listas devem estar presentes, mesmo que vazias.")
	return b.String()
}

const studyPlanExample = `{
  "weeklyPlan": [
    {
      "day": "Segunda-feira - Semana 1",
      "theme": "Tema do dia",
      "description": "O que estudar neste dia",
      "duration": "2h",
      "activity": "Leitura e diagramas"
    }
  ],
  "reviewQuestions": [
    {
      "question": "Pergunta de revisão",
      "options": ["Opção A", "Opção B", "Opção C", "Opção D"],
      "correctAnswer": 0,
      "explanation": "Explicação da resposta correta"
    }
  ],
  "recommendedBooks": [
    {
      "title": "Título do livro",
      "author": "Autor",
      "description": "Por que ler",
      "difficulty": "Intermediário"
    }
  ],
  "studyTips": ["Dica prática"]
}`

var preferenceLabels = map[string]string{
	"clinicalCases":      "casos clínicos",
	"scientificArticles": "artigos científicos",
	"flashcards":         "flashcards",
	"videos":             "vídeos educativos",
	"multipleChoice":     "questões de múltipla escolha",
	"books":              "livros especializados",
}

const maxPlanDays = 28

func planDays(p Params) int {
	n := p.Int("dias_por_semana") * p.Int("semanas_totais")
	if n > maxPlanDays {
		return maxPlanDays
	}
	return n
}

func studyPlanPrompt(p Params) string {
	flags := p.Flags("preferencias")
	names := make([]string, 0, len(flags))
	for name, on := range flags {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	var prefs []string
	for _, name := range names {
		prefs = append(prefs, preferenceLabels[name])
	}
	prefText := "Nenhum formato preferido"
	if len(prefs) > 0 {
		prefText = strings.Join(prefs, ", ")
	}

	days := planDays(p)
	var b strings.Builder
	b.WriteString("Você é um especialista em educação veterinária. Crie um plano de estudos progressivo e detalhado.\n\n")
	b.WriteString("PARÂMETROS:\n")
	fmt.Fprintf(&b, "- Tema: %s\n", p.String("tema"))
	fmt.Fprintf(&b, "- Nível: %s\n", p.String("nivel"))
	fmt.Fprintf(&b, "- Dias por semana: %d\n", p.Int("dias_por_semana"))
	fmt.Fprintf(&b, "- Horas por dia: %s\n", formatNumber(p.Float("horas_por_dia")))
	fmt.Fprintf(&b, "- Semanas totais: %d\n", p.Int("semanas_totais"))
	fmt.Fprintf(&b, "- Formatos preferidos: %s\n", prefText)
	fmt.Fprintf(&b, "- Idioma: %s\n\n", p.String("idioma"))
	b.WriteString(jsonOnly + "\n\n")
	b.WriteString("Formato obrigatório:\n")
	b.WriteString(studyPlanExample + "\n\n")
	b.WriteString("REGRAS:\n")
	fmt.Fprintf(&b, "- weeklyPlan deve ter EXATAMENTE %d dias de estudo, em ordem, cada um com day, theme, description, duration e activity.\n", days)
	fmt.Fprintf(&b, "- A duração de cada dia deve respeitar %s horas.\n", formatNumber(p.Float("horas_por_dia")))
	b.WriteString("- reviewQuestions deve ter EXATAMENTE 5 questões, cada uma com 4 opções, correctAnswer entre 0 e 3 e explanation não vazia.\n")
	b.WriteString("- recommendedBooks deve ter EXATAMENTE 3 livros.\n")
	b.WriteString("- studyTips deve ter EXATAMENTE 6 dicas.\n")
	fmt.Fprintf(&b, "- Escreva todo o conteúdo em %s.", p.String("idioma"))
	return b.String()
}

const studyTrailExample = `{
  "resumoTrilha": {
    "titulo": "Título da trilha",
    "duracao": "Duração total",
    "nivel": "Nível",
    "descricao": "Descrição geral"
  },
  "etapas": [
    {
      "id": 1,
      "titulo": "Nome da etapa",
      "duracao": "Duração da etapa",
      "horasEstimadas": "20h",
      "descricao": "Descrição da etapa",
      "topicos": ["Tópico 1", "Tópico 2"],
      "atividades": ["Atividade 1"],
      "recursos": [
        {"tipo": "livro", "titulo": "Título do livro", "autor": "Autor", "descricao": "Descrição"},
        {"tipo": "artigo", "titulo": "Título do artigo", "fonte": "Fonte", "descricao": "Descrição"}
      ],
      "avaliacoes": ["Forma de avaliação"]
    }
  ],
  "cronograma": [
    {
      "semana": 1,
      "etapa": "Nome da etapa",
      "horasSemanais": "10h",
      "atividades": ["Atividade da semana"]
    }
  ],
  "recursosComplementares": [
    {
      "categoria": "Livros Fundamentais",
      "itens": [
        {"titulo": "Título", "autor": "Autor", "ano": "2020", "descricao": "Por que é importante"}
      ]
    }
  ],
  "dicasEstudo": ["Dica para otimizar o estudo"],
  "marcos": [
    {
      "etapa": "Nome da etapa",
      "objetivo": "Objetivo a alcançar",
      "indicadores": ["Indicador"]
    }
  ]
}`

var timeUnitDays = map[string]int{"dias": 1, "semanas": 7, "meses": 30}

// trailSize derives the stage and week counts the model is asked for from
// the student's available time.
func trailSize(p Params) (totalDays, totalHours, stages, weeks int) {
	totalDays = p.Int("tempoDisponivel") * timeUnitDays[p.String("tipoTempo")]
	totalHours = totalDays * p.Int("horasPorDia")
	stages = clamp(int(math.Ceil(float64(totalHours)/20)), 3, 8)
	weeks = clamp(int(math.Ceil(float64(totalDays)/7)), 1, 12)
	return
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func studyTrailPrompt(p Params) string {
	totalDays, totalHours, stages, weeks := trailSize(p)
	resources := "Todos os tipos"
	if list := p.Strings("recursosPreferidos"); len(list) > 0 {
		resources = strings.Join(list, ", ")
	}

	var b strings.Builder
	b.WriteString("Você é um especialista em educação veterinária e planejamento de estudos. Crie uma trilha de estudos personalizada.\n\n")
	b.WriteString("PERFIL DO ESTUDANTE:\n")
	fmt.Fprintf(&b, "- Área de estudo: %s\n", p.String("areaEstudo"))
	fmt.Fprintf(&b, "- Nível de conhecimento: %s\n", p.String("nivelConhecimento"))
	fmt.Fprintf(&b, "- Tempo disponível: %d %s (%d dias)\n", p.Int("tempoDisponivel"), p.String("tipoTempo"), totalDays)
	fmt.Fprintf(&b, "- Horas por dia: %dh\n", p.Int("horasPorDia"))
	fmt.Fprintf(&b, "- Total de horas: %dh\n", totalHours)
	fmt.Fprintf(&b, "- Objetivos: %s\n", p.String("objetivos"))
	fmt.Fprintf(&b, "- Preferências: %s\n", p.String("preferencias"))
	fmt.Fprintf(&b, "- Recursos preferidos: %s\n\n", resources)
	b.WriteString(jsonOnly + "\n\n")
	b.WriteString("Formato obrigatório:\n")
	b.WriteString(studyTrailExample + "\n\n")
	b.WriteString("REGRAS:\n")
	fmt.Fprintf(&b, "- etapas deve ter EXATAMENTE %d etapas, com ids 1 a %d, somando cerca de %d horas.\n", stages, stages, totalHours)
	b.WriteString("- Cada etapa deve ter titulo, descricao, topicos, atividades, recursos e avaliacoes preenchidos.\n")
	fmt.Fprintf(&b, "- cronograma deve ter EXATAMENTE %d semanas, numeradas de 1 a %d.\n", weeks, weeks)
	b.WriteString("- dicasEstudo deve ter EXATAMENTE 5 dicas.\n")
	b.WriteString("- marcos deve ter 1 marco por etapa.\n")
	fmt.Fprintf(&b, "- Adeque a profundidade ao nível %s.", p.String("nivelConhecimento"))
	return b.String()
}
