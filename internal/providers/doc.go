// Package providers implements the Generator interface for each supported
// hosted text-generation service.
//
// Supported providers: Cloudflare Workers AI (the default), Anthropic,
// OpenAI, Google Gemini, and Ollama / LM Studio through the OpenAI-compatible
// API.
//
// Every call is made exactly once. Non-2xx answers surface as *StatusError,
// 401/403 as an authentication error (see [IsAuthError]), so callers can relay
// the upstream text. HTTP clients are struct fields so tests can point a
// provider at an httptest server.
//
// Use [New] to obtain a Generator by provider name and model string, and
// [NewCached] to put the completion cache in front of it.
package providers
