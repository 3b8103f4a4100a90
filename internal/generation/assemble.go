package generation

import (
	"context"
	"errors"
	"net/http"

	"vetstudy-backend/internal/llm"
)

// ErrorEnvelope is the body of every failed generation response.
type ErrorEnvelope struct {
	Error      string      `json:"error"`
	Kind       string      `json:"kind"`
	Details    interface{} `json:"details,omitempty"`
	RawContent string      `json:"raw_content,omitempty"`
	JSONError  string      `json:"json_error,omitempty"`
	Status     int         `json:"status,omitempty"`
}

// SuccessBody builds the success envelope for a result.
func SuccessBody(res *Result) map[string]interface{} {
	k := kinds[res.Type]
	value := res.Content.Value
	if q, ok := value.(Quiz); ok {
		value = q.Questions
	}
	return map[string]interface{}{
		"success":    true,
		k.field:      value,
		"total":      res.Content.Total,
		"dropped":    res.Content.Dropped,
		"parameters": res.Params,
		"message":    k.message(res.Content.Total),
	}
}

// ErrorBody maps a pipeline error to its HTTP status and envelope.
func ErrorBody(err error) (int, ErrorEnvelope) {
	var (
		validation *ValidationError
		config     *llm.ConfigurationError
		timeout    *llm.ProviderTimeoutError
		provider   *llm.ProviderError
		extraction *ExtractionError
		malformed  *MalformedJSONError
		mismatch   *SchemaMismatchError
		empty      *NoValidContentError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, ErrorEnvelope{
			Error:   "Os parâmetros enviados são inválidos.",
			Kind:    "validation_error",
			Details: validation.Fields,
		}
	case errors.As(err, &config):
		return http.StatusInternalServerError, ErrorEnvelope{
			Error: "API key do provedor de IA não configurada.",
			Kind:  "configuration_error",
		}
	case errors.As(err, &timeout):
		return http.StatusInternalServerError, ErrorEnvelope{
			Error:   "O provedor de IA não respondeu a tempo.",
			Kind:    "provider_timeout",
			Details: timeout.Timeout.String(),
		}
	case errors.As(err, &provider):
		env := ErrorEnvelope{
			Error:  "Erro na comunicação com o provedor de IA.",
			Kind:   "provider_error",
			Status: provider.Status,
		}
		if provider.Body != "" {
			env.Details = provider.Body
		} else if provider.Err != nil {
			env.Details = provider.Err.Error()
		}
		return http.StatusInternalServerError, env
	case errors.As(err, &extraction):
		return http.StatusInternalServerError, ErrorEnvelope{
			Error:      "A resposta da IA não contém JSON.",
			Kind:       "extraction_error",
			RawContent: extraction.Raw,
		}
	case errors.As(err, &malformed):
		return http.StatusInternalServerError, ErrorEnvelope{
			Error:      "Erro ao processar resposta da IA.",
			Kind:       "malformed_json",
			JSONError:  malformed.Message,
			RawContent: malformed.Raw,
		}
	case errors.As(err, &mismatch):
		return http.StatusInternalServerError, ErrorEnvelope{
			Error:      "Estrutura de resposta inválida da IA.",
			Kind:       "schema_mismatch",
			Details:    mismatch.Reason,
			RawContent: mismatch.Raw,
		}
	case errors.As(err, &empty):
		return http.StatusInternalServerError, ErrorEnvelope{
			Error:      "A IA não retornou nenhum item válido.",
			Kind:       "no_valid_content",
			Details:    map[string]int{"dropped": empty.Dropped},
			RawContent: empty.Raw,
		}
	case errors.Is(err, context.Canceled):
		return http.StatusInternalServerError, ErrorEnvelope{
			Error: "A requisição foi cancelada.",
			Kind:  "cancelled",
		}
	}
	return http.StatusInternalServerError, ErrorEnvelope{
		Error: "Erro interno do servidor.",
		Kind:  "internal_error",
	}
}
