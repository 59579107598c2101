package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_completer.go -package=mocks libllm/internal/service Completer,ModelLister
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_completion_service.go -package=mocks -mock_names=CompletionService=MockCompletionService libllm/internal/service CompletionService

import (
	"context"
	"fmt"

	"libllm/internal/contextutil"
	"libllm/internal/document"
	"libllm/internal/instruction"
	"libllm/internal/llm"
	"libllm/internal/prompt"
	"libllm/internal/settings"
)

// Completer sends a single prompt to the completion backend.
// This interface is defined from the service layer's perspective (consumer-first).
type Completer interface {
	Complete(ctx context.Context, creds llm.Credentials, prompt string, params llm.CompletionParams) (string, error)
}

// ModelLister lists the models the backend offers.
type ModelLister interface {
	ListModels(ctx context.Context, creds llm.Credentials) ([]string, error)
}

// Options are per-invocation sampling overrides. Nil fields use the backend default.
type Options struct {
	Temperature *float64
	TopP        *float64
}

// CompletionResult describes a completion that was inserted into a document.
type CompletionResult struct {
	// Prompt is the text sent to the backend, instruction prefix included.
	Prompt string
	// Text is the trimmed completion.
	Text string
	// InsertionPoint is where "\n"+Text was inserted.
	InsertionPoint document.Position
}

// CompletionService runs the two completion commands against a document.
type CompletionService interface {
	// Complete builds a prompt from doc, completes it and inserts the result.
	Complete(ctx context.Context, doc document.Document, opts Options) (CompletionResult, error)
	// CompleteWithInstructions is Complete with an instruction from collector
	// prefixed onto the prompt.
	CompleteWithInstructions(ctx context.Context, doc document.Document, collector instruction.Collector, opts Options) (CompletionResult, error)
}

// completionService implements CompletionService.
type completionService struct {
	completer Completer
	settings  settings.Store
	guard     *Guard
}

// NewCompletionService creates a new CompletionService. Settings are loaded
// from store on every invocation.
func NewCompletionService(completer Completer, store settings.Store) CompletionService {
	return &completionService{
		completer: completer,
		settings:  store,
		guard:     NewGuard(),
	}
}

// Complete runs a plain completion.
func (s *completionService) Complete(ctx context.Context, doc document.Document, opts Options) (CompletionResult, error) {
	release, err := s.guard.Acquire(doc)
	if err != nil {
		return CompletionResult{}, err
	}
	defer release()

	req, err := s.build(ctx, doc)
	if err != nil {
		return CompletionResult{}, err
	}
	return s.run(ctx, doc, req, req.Text, opts)
}

// CompleteWithInstructions collects an instruction, then runs the completion
// on "<instruction>:\n<prompt>". An abandoned prompt returns
// ErrInstructionAbandoned without calling the backend.
func (s *completionService) CompleteWithInstructions(ctx context.Context, doc document.Document, collector instruction.Collector, opts Options) (CompletionResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	release, err := s.guard.Acquire(doc)
	if err != nil {
		return CompletionResult{}, err
	}
	defer release()

	req, err := s.build(ctx, doc)
	if err != nil {
		return CompletionResult{}, err
	}

	outcome, err := collector.Collect(ctx)
	if err != nil {
		return CompletionResult{}, WrapError(err, "failed to collect instruction")
	}
	if !outcome.Submitted {
		logger.InfoContext(ctx, "instruction prompt closed without submitting")
		return CompletionResult{}, ErrInstructionAbandoned
	}

	return s.run(ctx, doc, req, prompt.WithInstruction(outcome.Text, req.Text), opts)
}

func (s *completionService) build(ctx context.Context, doc document.Document) (prompt.Request, error) {
	req := prompt.Build(doc)
	if req.Empty() {
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "empty prompt, nothing to complete", "cursor", doc.Cursor().String())
		return prompt.Request{}, ErrEmptyPrompt
	}
	return req, nil
}

func (s *completionService) run(ctx context.Context, doc document.Document, req prompt.Request, finalPrompt string, opts Options) (CompletionResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load settings", "error", err)
		return CompletionResult{}, WrapError(err, "failed to load settings")
	}

	text, err := s.completer.Complete(ctx, cfg.Credentials(), finalPrompt, llm.CompletionParams{
		Model:       cfg.Model,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get completion", "model", cfg.Model, "error", err)
		return CompletionResult{}, WrapError(err, "failed to get completion")
	}

	if err := doc.InsertText("\n"+text, req.InsertionPoint); err != nil {
		logger.ErrorContext(ctx, "failed to insert completion", "position", req.InsertionPoint.String(), "error", err)
		return CompletionResult{}, fmt.Errorf("failed to insert completion at %s: %w", req.InsertionPoint, err)
	}

	logger.InfoContext(ctx, "completion inserted",
		"model", cfg.Model,
		"prompt_length", len(finalPrompt),
		"completion_length", len(text),
		"position", req.InsertionPoint.String(),
	)
	return CompletionResult{
		Prompt:         finalPrompt,
		Text:           text,
		InsertionPoint: req.InsertionPoint,
	}, nil
}
