package md_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	. "src.snudown.dev/pkg/md"
)

var tocTests = []struct {
	name string
	in   string
	opts Options
	want string
}{
	{
		name: "no headers",
		in:   "text",
		opts: Options{EnableTOC: true},
		want: "<p>text</p>\n",
	},
	{
		name: "nested headers and plain text entries",
		in:   "# *A* `b` &amp; <i>\n\n> ## B",
		opts: Options{EnableTOC: true},
		want: "<div class=\"toc\">\n<ul>\n" +
			"<li>\n<a href=\"#toc_0\">A b &amp; &lt;i&gt;</a>\n</li>\n" +
			"<li>\n<a href=\"#toc_1\">B</a>\n</li>\n" +
			"</ul>\n</div>\n\n" +
			"<h1 id=\"toc_0\"><em>A</em> <code>b</code> &amp; &lt;i&gt;</h1>\n\n" +
			"<blockquote>\n<h2 id=\"toc_1\">B</h2>\n</blockquote>\n",
	},
	{
		name: "escaped prefix",
		in:   "# X",
		opts: Options{EnableTOC: true, TOCIDPrefix: `a"`},
		want: "<div class=\"toc\">\n<ul>\n<li>\n<a href=\"#a&quot;toc_0\">X</a>\n</li>\n</ul>\n</div>\n\n" +
			"<h1 id=\"a&quot;toc_0\">X</h1>\n",
	},
	{
		name: "headers without ids when disabled",
		in:   "# X",
		opts: Options{TOCIDPrefix: "p_"},
		want: "<h1>X</h1>\n",
	},
}

func TestRender_TOC(t *testing.T) {
	for _, tc := range tocTests {
		t.Run(tc.name, func(t *testing.T) {
			got := Render(tc.in, tc.opts)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_ConcurrentTOC(t *testing.T) {
	const n = 8
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "# Header %d\n\ntext *%d*\n\n", i, i)
	}
	in := sb.String()
	opts := make([]Options, n)
	want := make([]string, n)
	for i := range opts {
		opts[i] = Options{EnableTOC: true, TOCIDPrefix: fmt.Sprintf("p%d_", i)}
		want[i] = Render(in, opts[i])
	}

	got := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if s := Render(in, opts[i]); s != want[i] {
					got[i] = s
					return
				}
			}
			got[i] = want[i]
		}(i)
	}
	wg.Wait()

	for i := range got {
		if diff := cmp.Diff(want[i], got[i]); diff != "" {
			t.Errorf("render %d (-want +got):\n%s", i, diff)
		}
	}
	if !strings.Contains(want[0], `<h1 id="p0_toc_19">`) {
		t.Errorf("ids do not restart at 0 for each render: %q", want[0])
	}
}
