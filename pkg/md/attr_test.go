package md

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var filterTagTests = []struct {
	in     string
	want   *Tag
	wantOK bool
}{
	{`<table scope="foo">`, &Tag{Name: "table", Attrs: []Attr{{"scope", "foo"}}}, true},
	{`<TABLE SCOPE="foo">`, &Tag{Name: "table", Attrs: []Attr{{"scope", "foo"}}}, true},
	{`</td>`, &Tag{Name: "td", Closing: true}, true},
	{`<th colspan='2' onclick="x">`, &Tag{Name: "th", Attrs: []Attr{{"colspan", "2"}}}, true},
	{`<table/>`, &Tag{Name: "table"}, true},
	{`<caption scope="a" scope="b">`,
		&Tag{Name: "caption", Attrs: []Attr{{"scope", "a"}, {"scope", "b"}}}, true},
	{`<script>`, nil, false},
	{`<tablex>`, nil, false},
	{`<table-x>`, nil, false},
	{`<>`, nil, false},
}

func TestFilterTag(t *testing.T) {
	for _, tc := range filterTagTests {
		got, ok := filterTag([]byte(tc.in))
		if ok != tc.wantOK {
			t.Errorf("filterTag(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("filterTag(%q) (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestTagString(t *testing.T) {
	tag := &Tag{Name: "td", Attrs: []Attr{{"scope", `'a"`}}}
	if got, want := tag.String(), `<td scope="&#39;a&quot;">`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
