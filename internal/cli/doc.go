// Package cli wires together the Cobra command trees of the cf-ai-codereview
// and codeoverview-server binaries.
//
// The cf-ai-codereview root command submits a diff for an overview and prints
// it with a shareable link. Its subcommands open the terminal viewer (view)
// and manage configuration, models and the completion cache. The
// codeoverview-server tree runs the generation and chat endpoints (serve).
// Both return deterministic exit codes.
package cli
