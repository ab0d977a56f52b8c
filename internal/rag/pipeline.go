package rag

import (
	"context"
	"fmt"
	"time"

	"mentorchat/internal/index"
	"mentorchat/internal/models"
	"mentorchat/internal/providers"
)

// Pipeline runs one chat request end to end: embed the query, retrieve the
// nearest chunks, assemble the prompt, and generate an answer. The index is
// read-only for the pipeline's lifetime, so one Pipeline serves concurrent
// requests without locking.
type Pipeline struct {
	index      *index.Index
	embedder   providers.EmbeddingProvider
	llm        providers.LLMProvider
	topK       int
	maxRetries int
	timeout    time.Duration
}

type Options struct {
	TopK        int
	MaxRetries  int
	CallTimeout time.Duration
}

func NewPipeline(x *index.Index, embedder providers.EmbeddingProvider, llm providers.LLMProvider, opts Options) *Pipeline {
	if opts.TopK < 1 {
		opts.TopK = 3
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 60 * time.Second
	}
	return &Pipeline{
		index:      x,
		embedder:   embedder,
		llm:        llm,
		topK:       opts.TopK,
		maxRetries: opts.MaxRetries,
		timeout:    opts.CallTimeout,
	}
}

// Retrieve embeds the query with the index's model and returns the topK
// nearest chunks, nearest first. No relevance threshold is applied.
func (p *Pipeline) Retrieve(ctx context.Context, query string) ([]index.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	vecs, err := p.embedder.Embed(callCtx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrRetrieval, err)
	}
	results, err := p.index.Search(vecs[0], p.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	return results, nil
}

// Answer runs retrieval, prompt assembly and generation for one user
// message. The generator is always invoked, even when the retrieved chunks
// are irrelevant to the query; the system instruction makes the model say
// so rather than the pipeline short-circuiting locally.
func (p *Pipeline) Answer(ctx context.Context, query string, history []models.Turn) (string, error) {
	results, err := p.Retrieve(ctx, query)
	if err != nil {
		return "", err
	}
	contextChunks := make([]string, 0, len(results))
	for _, r := range results {
		contextChunks = append(contextChunks, r.Entry.Text)
	}
	msgs := AssembleMessages(contextChunks, history, query)

	answer, err := p.generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// generate calls the LLM with a per-call timeout, retrying transient and
// rate-limit failures up to the retry budget.
func (p *Pipeline) generate(ctx context.Context, msgs []providers.Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		answer, err := p.llm.Chat(callCtx, msgs)
		cancel()
		if err == nil {
			return answer, nil
		}
		lastErr = err
		if !providers.Retryable(providers.ClassifyError(err)) {
			break
		}
	}
	return "", lastErr
}
