// Package worker implements the two HTTP endpoints behind code overviews.
//
// The generation endpoint accepts code and an optional prompt, asks the
// generation model for an overview, stores it under a fresh identifier and
// returns both. The chat endpoint answers a question about a stored overview
// using the caller's transcript as history, then writes the extended
// transcript back to the document on a best-effort basis.
//
// Both endpoints answer CORS preflight requests so browser front ends can
// call them directly. No upstream call is retried.
package worker
