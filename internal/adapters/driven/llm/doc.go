// Package llm holds the HTTP plumbing shared by the model provider
// adapters: request rate limiting, JSON round trips and status error
// classification.
//
// The provider packages (openai, anthropic, ollama) implement
// driven.ModelClient on top of it. Every call carries its own
// domain.ModelTarget, so one client value serves both the primary and the
// fallback model of a run.
package llm
