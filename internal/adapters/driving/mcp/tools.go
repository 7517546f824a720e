package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// defaultRunLimit caps list_runs when no limit is given.
const defaultRunLimit = 20

// ExtractInput is the input schema for the extract_metadata tool.
type ExtractInput struct {
	Filename string         `json:"filename" jsonschema:"original filename of the document, used for filename parsing"`
	Content  string         `json:"content,omitempty" jsonschema:"document text, usually markdown"`
	Path     string         `json:"path,omitempty" jsonschema:"path of a local file to load instead of content"`
	Data     map[string]any `json:"data,omitempty" jsonschema:"pre-parsed layout analysis output"`
}

// ExtractOutput is the output schema for the extract_metadata tool.
type ExtractOutput struct {
	RunID      string         `json:"run_id"`
	DocumentID string         `json:"document_id"`
	Source     string         `json:"source"`
	Metadata   map[string]any `json:"metadata"`
}

// ListRunsInput is the input schema for the list_runs tool.
type ListRunsInput struct {
	Filename   string `json:"filename,omitempty" jsonschema:"only runs of this filename"`
	FailedOnly bool   `json:"failed_only,omitempty" jsonschema:"only failed runs"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 20)"`
}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunOutput `json:"runs"`
	Count int         `json:"count"`
}

// RunOutput summarises one run.
type RunOutput struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Profile  string `json:"profile"`
	State    string `json:"state"`
	Source   string `json:"source,omitempty"`
	Error    string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_metadata",
		Description: "Extract structured metadata from a document",
	}, s.handleExtract)

	if s.ports.Runs != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_runs",
			Description: "List recent extraction runs, newest first",
		}, s.handleListRuns)
	}
}

// handleExtract handles the extract_metadata tool invocation.
func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	if input.Filename == "" {
		return nil, ExtractOutput{}, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if input.Content == "" && input.Path == "" && input.Data == nil {
		return nil, ExtractOutput{}, fmt.Errorf("%w: one of content, path or data is required", domain.ErrInvalidInput)
	}

	src := domain.RawSource{
		Filename: input.Filename,
		Path:     input.Path,
		Data:     input.Data,
	}
	if input.Content != "" {
		src.Content = []byte(input.Content)
	}

	result, err := s.ports.Extraction.Extract(ctx, src)
	if err != nil {
		var rfe *domain.RunFailedError
		if errors.As(err, &rfe) {
			return nil, ExtractOutput{}, fmt.Errorf("extraction failed in state %s: %w", rfe.State, rfe.Err)
		}
		return nil, ExtractOutput{}, err
	}

	return nil, ExtractOutput{
		RunID:      result.RunID,
		DocumentID: result.DocumentID,
		Source:     string(result.Source),
		Metadata:   result.Output,
	}, nil
}

// handleListRuns handles the list_runs tool invocation.
func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}

	runs, err := s.ports.Runs.List(ctx, domain.RunFilter{
		Filename:   input.Filename,
		FailedOnly: input.FailedOnly,
		Limit:      limit,
	})
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	output := ListRunsOutput{
		Runs:  make([]RunOutput, len(runs)),
		Count: len(runs),
	}
	for i := range runs {
		output.Runs[i] = runOutput(&runs[i])
	}
	return nil, output, nil
}

func runOutput(r *domain.RunRecord) RunOutput {
	return RunOutput{
		ID:       r.ID,
		Filename: r.Filename,
		Profile:  r.Profile,
		State:    r.State.String(),
		Source:   string(r.Source),
		Error:    r.Error,
	}
}
