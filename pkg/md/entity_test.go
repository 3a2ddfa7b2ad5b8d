package md

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var checkEntityTests = []struct {
	in      string
	wantLen int
	wantOut string
}{
	{"&amp;", 5, "&amp;"},
	{"&frac12;aaa", 8, "&frac12;"},
	{"&apos;", 6, "&apos;"},
	{"&#99;", 5, "&#99;"},
	{"&#X7E;", 6, "&#x7E;"},
	{"&#x10FFFF;", 10, "&#x10FFFF;"},
	{"&#x110000;", 0, ""},
	{"&#9999999999;", 0, ""},
	{"&#xD800;", 0, ""},
	{"&#11;", 0, ""},
	{"&foobar;", 0, ""},
	{"&nbsp", 0, ""},
	{"&;", 0, ""},
	{"&#;", 0, ""},
	{"&#x;", 0, ""},
	{"&", 0, ""},
}

func TestCheckEntity(t *testing.T) {
	for _, tc := range checkEntityTests {
		n, out := checkEntity([]byte(tc.in))
		assert.Equal(t, tc.wantLen, n, "length for %q", tc.in)
		assert.Equal(t, tc.wantOut, out, "output for %q", tc.in)
	}
}
