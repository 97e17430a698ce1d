// Command cf-ai-codereview asks the generation endpoint for an overview of a
// code diff and prints it with a link to discuss it.
//
// Usage:
//
//	cf-ai-codereview -f changes.diff                  # overview of a diff
//	cf-ai-codereview -f changes.diff -p "Focus on tests"
//	cf-ai-codereview -f changes.diff -s ./src         # send ./src as context
//	cf-ai-codereview --unstaged                       # working tree changes
//	cf-ai-codereview view <id>                        # browse and chat
package main

import (
	"os"

	"github.com/dshills/codeoverview/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
