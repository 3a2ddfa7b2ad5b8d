package mdprog_test

import (
	"os"
	"path/filepath"
	"testing"

	. "src.snudown.dev/pkg/mdprog"
	"src.snudown.dev/pkg/prog/progtest"
)

var (
	Test        = progtest.Test
	ThatSnudown = progtest.ThatSnudown
)

func TestProgram(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		return path
	}
	a := write("a.md", "[x][1]\n\n[1]: /a")
	b := write("b.md", "[x][1]")
	cfg := write("cfg.yaml", "nofollow: true\ntarget: _top\n")
	badCfg := write("bad.yaml", "nofollow: [\n")

	Test(t, Program{},
		ThatSnudown().WithStdin("*hi*").
			WritesStdout("<p><em>hi</em></p>\n"),
		ThatSnudown().DoesNothing(),
		ThatSnudown("-wiki").WithStdin(`<td scope="row">`).
			WritesStdout("<p><td scope=\"row\"></p>\n"),
		ThatSnudown("-nofollow", "-target", "_blank").WithStdin("/r/golang").
			WritesStdout("<p><a href=\"/r/golang\" rel=\"nofollow\" target=\"_blank\">/r/golang</a></p>\n"),
		ThatSnudown("-toc", "-toc-prefix", "p_").WithStdin("# T").
			WritesStdout("<div class=\"toc\">\n<ul>\n<li>\n<a href=\"#p_toc_0\">T</a>\n</li>\n</ul>\n</div>\n\n" +
				"<h1 id=\"p_toc_0\">T</h1>\n"),
		ThatSnudown("-trace").WithStdin("x").
			WritesStdout("Paragraph\n  Text Text=\"x\"\n"),

		// Each file has its own link references.
		ThatSnudown(a, b).
			WritesStdout("<p><a href=\"/a\">x</a></p>\n<p>[x][1]</p>\n"),
		ThatSnudown(filepath.Join(dir, "missing.md")).
			ExitsWith(2).WritesStderrContaining("missing.md"),
		// Other files are still rendered.
		ThatSnudown(filepath.Join(dir, "missing.md"), a, filepath.Join(dir, "missing2.md")).
			ExitsWith(2).
			WritesStdout("<p><a href=\"/a\">x</a></p>\n").
			WritesStderrContaining("multiple errors: "),

		ThatSnudown("-config", cfg).WithStdin("/u/me").
			WritesStdout("<p><a href=\"/u/me\" rel=\"nofollow\" target=\"_top\">/u/me</a></p>\n"),
		// Flags override the config file.
		ThatSnudown("-config", cfg, "-nofollow=false").WithStdin("/u/me").
			WritesStdout("<p><a href=\"/u/me\" target=\"_top\">/u/me</a></p>\n"),
		ThatSnudown("-config", badCfg).
			ExitsWith(2).WritesStderrContaining(badCfg+": "),
	)
}
