package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docmeta resources.
	uriScheme = "docmeta://"

	mimeJSON = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "profiles",
		Name:        "profiles",
		Description: "Extraction profiles available to this server",
		MIMEType:    mimeJSON,
	}, s.handleProfilesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Recent extraction runs, newest first",
		MIMEType:    mimeJSON,
	}, s.handleRunsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}",
		Name:        "run",
		Description: "A single extraction run including its metadata",
		MIMEType:    mimeJSON,
	}, s.handleRunResource)
}

// handleProfilesResource returns the profile names.
func (s *Server) handleProfilesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	profiles := s.ports.Profiles
	if profiles == nil {
		profiles = []string{}
	}
	return jsonResult(req.Params.URI, profiles)
}

// handleRunsResource returns the most recent runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: mimeJSON,
				Text:     "[]",
			}},
		}, nil
	}

	runs, err := s.ports.Runs.List(ctx, domain.RunFilter{Limit: defaultRunLimit})
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]RunOutput, len(runs))
	for i := range runs {
		infos[i] = runOutput(&runs[i])
	}
	return jsonResult(req.Params.URI, infos)
}

// handleRunResource returns one run record.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract runId from URI: docmeta://runs/{runId}
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	run, err := s.ports.Runs.Get(ctx, runID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return jsonResult(req.Params.URI, run)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like docmeta://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
