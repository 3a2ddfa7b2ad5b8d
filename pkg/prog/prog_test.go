package prog_test

import (
	"os"
	"path/filepath"
	"testing"

	. "src.snudown.dev/pkg/prog"
	"src.snudown.dev/pkg/prog/progtest"
)

var (
	Test        = progtest.Test
	ThatSnudown = progtest.ThatSnudown
)

func TestCommonFlagHandling(t *testing.T) {
	cpuprof := filepath.Join(t.TempDir(), "cpuprof")

	Test(t, testProgram{},
		ThatSnudown("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatSnudown("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatSnudown("-help").
			WritesStdoutContaining("Usage: snudown [flags] [file...]"),

		ThatSnudown("-cpuprofile", cpuprof).DoesNothing(),
		ThatSnudown("-cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),
	)

	// Check for the effect of -cpuprofile. There isn't much to test beyond a
	// sanity check that the profile file now exists.
	_, err := os.Stat(cpuprof)
	if err != nil {
		t.Errorf("CPU profile file does not exist: %v", err)
	}
}

func TestFlags_IsSet(t *testing.T) {
	var got *Flags
	p := flagsProgram{&got}
	progtest.Run(p, os.Stdin, "-wiki", "-target", "_top")

	if got == nil {
		t.Fatal("program not run")
	}
	if !got.Wiki || got.Target != "_top" {
		t.Errorf("flags not parsed: %+v", got)
	}
	for _, name := range []string{"wiki", "target"} {
		if !got.IsSet(name) {
			t.Errorf("IsSet(%q) = false, want true", name)
		}
	}
	if got.IsSet("nofollow") {
		t.Errorf("IsSet(%q) = true, want false", "nofollow")
	}
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{notSuitable: true},
		ThatSnudown().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{writeOut: "program 2"}),
		ThatSnudown().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{notSuitable: true}),
		ThatSnudown().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}),
		ThatSnudown().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatSnudown().ExitsWith(2).WritesStderrContaining("lorem ipsum\n"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatSnudown().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatSnudown().ExitsWith(0),
	)
}

type testProgram struct {
	notSuitable bool
	writeOut    string
	returnErr   error
}

func (p testProgram) Run(fds [3]*os.File, _ *Flags, args []string) error {
	if p.notSuitable {
		return ErrNotSuitable
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}

type flagsProgram struct{ got **Flags }

func (p flagsProgram) Run(_ [3]*os.File, f *Flags, _ []string) error {
	*p.got = f
	return nil
}
