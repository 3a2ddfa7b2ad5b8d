//go:build unix

package mdprog_test

import (
	"strings"
	"testing"

	"github.com/creack/pty"

	. "src.snudown.dev/pkg/mdprog"
	"src.snudown.dev/pkg/prog/progtest"
)

func TestProgram_TerminalHint(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skip("cannot open pty:", err)
	}
	defer tty.Close()
	// Send EOF to end the input.
	ptmx.Write([]byte{4})
	defer ptmx.Close()

	_, _, stderr := progtest.Run(Program{}, tty)
	if !strings.Contains(stderr, "Reading Markdown from the terminal") {
		t.Errorf("got stderr %q, want the terminal hint", stderr)
	}
}
