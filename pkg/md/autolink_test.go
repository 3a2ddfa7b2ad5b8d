package md

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeLink(t *testing.T) {
	for _, link := range []string{
		"http://x", "HTTPS://x", "/a", "//a", "#a", "mailto:a@b.com", "steam://run", "ts3server://x",
	} {
		assert.True(t, isSafeLink([]byte(link)), "%q should be safe", link)
	}
	for _, link := range []string{
		"", "/", "javascript:alert(1)", "http://", "http:// x", "data:text/html",
	} {
		assert.False(t, isSafeLink([]byte(link)), "%q should not be safe", link)
	}
}

func TestAutolinkDelim(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foo.com/bar).", "foo.com/bar"},
		{"foo.com/(bar)", "foo.com/(bar)"},
		{"foo.com?a&amp;", "foo.com?a"},
		{"foo.com<b>", "foo.com"},
		{"foo.com/\"", "foo.com/"},
		{"...", ""},
	}
	for _, tc := range tests {
		end := autolinkDelim([]byte(tc.in), len(tc.in))
		assert.Equal(t, tc.want, tc.in[:end], "input %q", tc.in)
	}
}

func TestCheckDomain(t *testing.T) {
	assert.Equal(t, 10, checkDomain([]byte("reddit.com/"), false))
	assert.Equal(t, 0, checkDomain([]byte("localhost/"), false))
	assert.Equal(t, 9, checkDomain([]byte("localhost/"), true))
	assert.Equal(t, 0, checkDomain([]byte("-foo.com"), true))
}

func TestAutolinkSubreddit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/r/test", "/r/test"},
		{"/r/a", ""},
		{"/r/abcdefghijklmnopqrstuvwxy", ""},
		{"/r/t:time", "/r/t:time"},
		{"/r/reddit.com", "/r/reddit.com"},
		{"/r/a_b+c_d", "/r/a_b+c_d"},
		{"/r/test+", "/r/test"},
		{"/r/all-minus-x", "/r/all-minus-x"},
	}
	for _, tc := range tests {
		// The trigger is the second '/', after "/r".
		link, _, _ := autolinkSubreddit([]byte(tc.in), 2, 2)
		assert.Equal(t, tc.want, string(link), "input %q", tc.in)
	}
}
