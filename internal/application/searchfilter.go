package application

import "strings"

// searchValueReplacer escapes the characters that would end or break a quoted
// search qualifier value.
var searchValueReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EscapeSearchValue escapes backslashes and double quotes in a user-supplied
// value before it is embedded in a search filter string.
func EscapeSearchValue(v string) string {
	return searchValueReplacer.Replace(v)
}

// AuthoredFilter returns the search filter for open PRs authored by user.
func AuthoredFilter(user string) string {
	return "author:" + EscapeSearchValue(user) + " type:pr state:open"
}

// ReviewRequestedFilter returns the search filter for open PRs awaiting user's review.
func ReviewRequestedFilter(user string) string {
	return "review-requested:" + EscapeSearchValue(user) + " type:pr state:open"
}
