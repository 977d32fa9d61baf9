// Package mcp exposes the search, label and content services to language
// model agents over the Model Context Protocol.
package mcp

import (
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// Errors returned by NewServer when a required port is missing.
var (
	ErrMissingSearchService  = errors.New("mcp: search service is required")
	ErrMissingContentService = errors.New("mcp: content service is required")
	ErrMissingLabelService   = errors.New("mcp: label service is required")
)

// kindInternal marks failures that carry no structured kind.
const kindInternal = "internal"

// ErrorBody is the JSON payload of a failed tool call.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure so agents can branch on Kind and
// Retryable instead of parsing Message.
type ErrorDetail struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Retryable bool   `json:"retryable"`
}

// NewErrorBody converts err into its wire form.
func NewErrorBody(err error) ErrorBody {
	derr, ok := domain.AsError(err)
	if !ok {
		return ErrorBody{Error: ErrorDetail{Kind: kindInternal, Message: err.Error()}}
	}
	msg := derr.Message
	if derr.Err != nil {
		msg += ": " + derr.Err.Error()
	}
	return ErrorBody{Error: ErrorDetail{
		Kind:      string(derr.Kind),
		Message:   msg,
		Hint:      derr.Hint,
		Reason:    string(derr.Reason),
		Retryable: derr.Retryable(),
	}}
}

// errorResult reports err as a tool-level failure.
func errorResult(err error) *mcp.CallToolResult {
	data, mErr := json.MarshalIndent(NewErrorBody(err), "", "  ")
	if mErr != nil {
		data = []byte(`{"error":{"kind":"internal","message":"failed to encode error","retryable":false}}`)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
