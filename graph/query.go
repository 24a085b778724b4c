package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Answerer turns a natural-language question into a Cypher statement over
// the materialized graph's schema, executes it, and phrases the result as a
// human answer.
type Answerer struct {
	Engine    Engine
	Generator Generator
}

// Answer carries the full trace of one question: the generated statement,
// the raw rows, and the phrased answer.
type Answer struct {
	Question string           `json:"question"`
	Cypher   string           `json:"cypher"`
	Rows     []map[string]any `json:"rows"`
	Answer   string           `json:"answer"`
}

// Ask runs the question end to end. The schema fed to generation is the
// engine's own introspection, so generated statements can only reference
// tables the materializer declared.
func (a *Answerer) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if a.Generator == nil {
		return nil, ErrQueryLayerOff
	}

	schema, err := a.Engine.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}

	cypher, err := a.Generator.Generate(ctx, queryGenerationPrompt(question, string(schemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("generate cypher: %w", err)
	}
	cypher = sanitizeStatement(cypher)
	if cypher == "" {
		return nil, fmt.Errorf("generate cypher: %w", ErrNoStatement)
	}

	res, err := a.Engine.Execute(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("execute generated statement: %w", err)
	}

	contextJSON, err := json.MarshalIndent(res.Rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode query context: %w", err)
	}
	answer, err := a.Generator.Generate(ctx, answerPrompt(question, string(contextJSON)))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Answer{
		Question: question,
		Cypher:   cypher,
		Rows:     res.Rows,
		Answer:   strings.TrimSpace(answer),
	}, nil
}

// sanitizeStatement strips markdown fences and surrounding noise models add
// despite the prompt's instructions.
func sanitizeStatement(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```cypher")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
