package generation

import (
	"context"
	"errors"
	"fmt"

	"vetstudy-backend/internal/llm"
	"vetstudy-backend/internal/logger"
)

// Request is a validated generation request. Params already carry defaults
// and must not be modified.
type Request struct {
	Type   ContentType
	Params Params
}

// NewRequest validates raw parameters for ct.
func NewRequest(ct ContentType, raw map[string]interface{}) (Request, error) {
	k, ok := kinds[ct]
	if !ok {
		return Request{}, fmt.Errorf("unknown content type %q", ct)
	}
	params, err := k.schema.Validate(raw)
	if err != nil {
		return Request{}, err
	}
	return Request{Type: ct, Params: params}, nil
}

// Result is a successful generation.
type Result struct {
	Request
	Content  *Content
	Model    string
	Attempts int
}

type Pipeline struct {
	completer llm.Completer
	profiles  Profiles
	model     string
	log       *logger.Logger
}

type Option func(*Pipeline)

// WithModel forces one model for every content type.
func WithModel(model string) Option {
	return func(p *Pipeline) { p.model = model }
}

func NewPipeline(completer llm.Completer, profiles Profiles, log *logger.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	p := &Pipeline{completer: completer, profiles: profiles, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate validates raw parameters and runs the request. Parameter problems
// are returned as *ValidationError before the provider is contacted.
func (p *Pipeline) Generate(ctx context.Context, ct ContentType, raw map[string]interface{}) (*Result, error) {
	req, err := NewRequest(ct, raw)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, req)
}

// Run sends the prompt for an already validated request and normalizes the
// answer. A cancelled ctx is returned as ctx.Err().
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	k, ok := kinds[req.Type]
	if !ok {
		return nil, fmt.Errorf("unknown content type %q", req.Type)
	}
	prof := p.profiles[req.Type]
	model := prof.Model
	if p.model != "" {
		model = p.model
	}

	completion, err := p.completer.Complete(ctx, llm.Request{
		System:      prof.System,
		Prompt:      BuildPrompt(req),
		Model:       model,
		Temperature: prof.Temperature,
		MaxTokens:   prof.MaxTokens,
		Timeout:     prof.Timeout(),
	})
	if err != nil {
		return nil, err
	}

	candidate, err := Extract(completion.Text, k.root)
	if err != nil {
		p.log.Warn("no JSON in completion", "type", string(req.Type), "model", model)
		return nil, err
	}
	content, err := Validate(req.Type, candidate, req.Params)
	if err != nil {
		p.log.Warn("completion rejected", "type", string(req.Type), "model", model, "error", err.Error())
		return nil, withRaw(err, completion.Text)
	}

	p.log.Info("content generated",
		"type", string(req.Type),
		"model", model,
		"total", content.Total,
		"dropped", content.Dropped,
		"attempts", completion.Attempts,
	)
	return &Result{Request: req, Content: content, Model: model, Attempts: completion.Attempts}, nil
}

// withRaw replaces the candidate in a validation error with the full model text.
func withRaw(err error, text string) error {
	var malformed *MalformedJSONError
	var mismatch *SchemaMismatchError
	var empty *NoValidContentError
	switch {
	case errors.As(err, &malformed):
		malformed.Raw = text
	case errors.As(err, &mismatch):
		mismatch.Raw = text
	case errors.As(err, &empty):
		empty.Raw = text
	}
	return err
}
