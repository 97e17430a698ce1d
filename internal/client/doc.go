// Package client submits diffs to the overview generation endpoint and chat
// transcripts to the chat endpoint.
package client
