// Snudown renders Reddit-flavored Markdown to HTML. It reads the files named
// on the command line, or the standard input, and writes HTML to the standard
// output. With -lsp, it instead runs a language server that previews documents
// on hover.
package main

import (
	"os"

	"src.snudown.dev/pkg/lsp"
	"src.snudown.dev/pkg/mdprog"
	"src.snudown.dev/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(lsp.Program{}, mdprog.Program{})))
}
