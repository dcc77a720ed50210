package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestToGraphQLRequest will test function ToGraphQLRequest
func TestToGraphQLRequest(t *testing.T) {
	request := ContributionQuery{Username: "octocat", Year: 2025}.ToGraphQLRequest()

	assert.Equal(t, map[string]string{
		"login": "octocat",
		"from":  "2025-01-01T00:00:00Z",
		"to":    "2025-12-31T23:59:59Z",
	}, request.Variables)

	// the document itself is fixed, only the variables change
	assert.True(t, strings.Contains(request.Query, "contributionCalendar"))
	assert.True(t, strings.Contains(request.Query, "pullRequestContributionsByRepository"))

	// out-of-range years are passed through untouched, upstream decides
	past := ContributionQuery{Username: "octocat", Year: 1803}.ToGraphQLRequest()
	assert.Equal(t, "1803-01-01T00:00:00Z", past.Variables["from"])
}
