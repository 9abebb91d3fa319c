package httpx

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimit(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", DefaultLimit},
		{"limit=5", 5},
		{"limit=100", 100},
		{"limit=500", MaxLimit},
		{"limit=0", DefaultLimit},
		{"limit=-3", DefaultLimit},
		{"limit=abc", DefaultLimit},
	}
	for _, c := range cases {
		r := httptest.NewRequest("GET", "/orders?"+c.query, nil)
		assert.Equal(t, c.want, ParseLimit(r), "query %q", c.query)
	}
}

func TestParseCursor(t *testing.T) {
	cases := []struct {
		query string
		want  int64
	}{
		{"", 0},
		{"cursor=42", 42},
		{"cursor=-1", 0},
		{"cursor=abc", 0},
	}
	for _, c := range cases {
		r := httptest.NewRequest("GET", "/orders?"+c.query, nil)
		assert.Equal(t, c.want, ParseCursor(r), "query %q", c.query)
	}
}
