package main

import (
	"context"

	"github.com/clearleaf/greenwash-cli/internal/model"
)

// stubOracle returns a fixed response for every prompt. Plain prose
// drives the pipeline down its degraded-parse paths, which is enough to
// exercise the HTTP surface end to end.
type stubOracle struct {
	out string
	err error
}

func (o *stubOracle) Complete(context.Context, string) (string, error) {
	return o.out, o.err
}

type stubTool struct {
	name model.Tool
	out  string
	err  error
}

func (t *stubTool) Name() model.Tool { return t.name }

func (t *stubTool) Validate(context.Context, string, string) (string, error) {
	return t.out, t.err
}
