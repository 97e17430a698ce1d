// Package overview holds the shared domain types for code overviews: the
// stored document, chat turns, identifier minting, and the prompt builders
// used by the generation and chat endpoints.
package overview
