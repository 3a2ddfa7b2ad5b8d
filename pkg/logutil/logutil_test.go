package logutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	logger := GetLogger("[test] ")
	var sb strings.Builder
	SetOutput(&sb)
	defer SetOutput(io.Discard)

	logger.Print("message")
	if got := sb.String(); !strings.Contains(got, "[test] message") {
		t.Errorf("got %q, want it to contain %q", got, "[test] message")
	}

	// Loggers created later also use the current output.
	GetLogger("[later] ").Print("more")
	if got := sb.String(); !strings.Contains(got, "[later] more") {
		t.Errorf("got %q, want it to contain %q", got, "[later] more")
	}
}

func TestSetOutputFile(t *testing.T) {
	logger := GetLogger("[file] ")
	fname := filepath.Join(t.TempDir(), "log")
	if err := SetOutputFile(fname); err != nil {
		t.Fatal(err)
	}
	logger.Print("to file")
	// Closes the file.
	if err := SetOutputFile(""); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "[file] to file") {
		t.Errorf("log file has %q", content)
	}
}

func TestSetOutputFile_Error(t *testing.T) {
	err := SetOutputFile(filepath.Join(t.TempDir(), "no", "such", "dir"))
	if err == nil {
		t.Errorf("got nil error for nonexistent directory")
	}
}

func TestSetOutput_KeepsCallerFile(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	SetOutput(w)
	SetOutput(io.Discard)
	if _, err := w.Write([]byte("x")); err != nil {
		t.Errorf("caller-supplied file was closed: %v", err)
	}
}

func TestSetOutputFile_ClosesLogFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "log")
	if err := SetOutputFile(fname); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	f := outFile
	mu.Unlock()
	SetOutput(io.Discard)
	if _, err := f.Write([]byte("x")); err == nil {
		t.Errorf("log file still open after SetOutput")
	}
}
