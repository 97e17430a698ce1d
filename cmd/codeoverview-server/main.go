// Command codeoverview-server runs the generation and chat endpoints.
//
// Usage:
//
//	codeoverview-server serve
//	codeoverview-server serve --generate-addr :8787 --chat-addr :8788
package main

import (
	"os"

	"github.com/dshills/codeoverview/internal/cli"
)

func main() {
	os.Exit(cli.RunServer())
}
