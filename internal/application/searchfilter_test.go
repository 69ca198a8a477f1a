package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blakemcanally/pr-status-watcher/internal/application"
)

func TestEscapeSearchValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "octocat", want: "octocat"},
		{in: `a"b`, want: `a\"b`},
		{in: `a\b`, want: `a\\b`},
		{in: `\"`, want: `\\\"`},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, application.EscapeSearchValue(tt.in), "input %q", tt.in)
	}
}

func TestSearchFilters(t *testing.T) {
	assert.Equal(t, "author:octocat type:pr state:open", application.AuthoredFilter("octocat"))
	assert.Equal(t, "review-requested:octocat type:pr state:open", application.ReviewRequestedFilter("octocat"))
	assert.Equal(t, `author:x\" is:merged type:pr state:open`, application.AuthoredFilter(`x" is:merged`))
}
