// Package progtest contains utilities for testing [prog.Program] instances by
// running them with pipes as their standard files.
package progtest

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"src.snudown.dev/pkg/prog"
)

// Case is a test case for Test. Cases are built with ThatSnudown and refined
// with the methods of Case.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exitStatus int
	out, err   output
}

type output struct {
	content string
	partial bool
}

// ThatSnudown returns a new Case that runs the program with the given
// arguments. By default, the program is expected to exit with status 0 and
// write nothing.
func ThatSnudown(args ...string) Case {
	return Case{args: args}
}

// WithStdin returns an altered Case that feeds the given string to the stdin
// of the program.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It makes it explicit that the program is
// expected to do nothing observable.
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns an altered Case that expects the given exit status.
func (c Case) ExitsWith(code int) Case {
	c.want.exitStatus = code
	return c
}

// WritesStdout returns an altered Case that expects exactly the given stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.out = output{s, false}
	return c
}

// WritesStdoutContaining returns an altered Case that expects stdout to
// contain the given string.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.out = output{s, true}
	return c
}

// WritesStderr returns an altered Case that expects exactly the given stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.err = output{s, false}
	return c
}

// WritesStderrContaining returns an altered Case that expects stderr to
// contain the given string.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.err = output{s, true}
	return c
}

// Test runs each of the cases against p.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			stdin, w, err := os.Pipe()
			if err != nil {
				t.Fatal(err)
			}
			go func() {
				io.WriteString(w, c.stdin)
				w.Close()
			}()
			exit, stdout, stderr := Run(p, stdin, c.args...)
			stdin.Close()

			if exit != c.want.exitStatus {
				t.Errorf("got exit %v, want %v", exit, c.want.exitStatus)
			}
			if !matchOutput(stdout, c.want.out) {
				t.Errorf("got stdout %q, want %s", stdout, c.want.out)
			}
			if !matchOutput(stderr, c.want.err) {
				t.Errorf("got stderr %q, want %s", stderr, c.want.err)
			}
		})
	}
}

// Run runs p with the given stdin and arguments, and returns the exit status
// and everything written to stdout and stderr. The name of the program is
// prepended to args.
func Run(p prog.Program, stdin *os.File, args ...string) (exit int, stdout, stderr string) {
	rOut, wOut := pipe()
	rErr, wErr := pipe()
	outCh, errCh := capture(rOut), capture(rErr)

	exit = prog.Run([3]*os.File{stdin, wOut, wErr}, append([]string{"snudown"}, args...), p)
	wOut.Close()
	wErr.Close()
	return exit, <-outCh, <-errCh
}

func pipe() (*os.File, *os.File) {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	return r, w
}

// Reads r in the background, so that the program never blocks on a full pipe.
func capture(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(r)
		r.Close()
		ch <- string(b)
	}()
	return ch
}

func matchOutput(got string, want output) bool {
	if want.partial {
		return strings.Contains(got, want.content)
	}
	return got == want.content
}

func (o output) String() string {
	if o.partial {
		return fmt.Sprintf("containing %q", o.content)
	}
	return fmt.Sprintf("%q", o.content)
}
