package gitmeta

import (
	"regexp"
	"strings"
)

var scpPrefix = regexp.MustCompile(`^git@([^:]+):`)

// NormalizeURL reduces a remote URL to host/owner/repo form: the trailing
// .git suffix is dropped, SCP-style git@host: prefixes become host/, and a
// leading http(s):// scheme is stripped. An empty URL normalizes to "".
func NormalizeURL(url string) string {
	if url == "" {
		return ""
	}
	url = strings.TrimSuffix(url, ".git")
	url = scpPrefix.ReplaceAllString(url, "$1/")
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	return url
}

// DetectProvider classifies a remote URL as github, gitlab or bitbucket by
// case-insensitive substring match, in that priority. Unknown or empty URLs
// yield "".
func DetectProvider(url string) string {
	lower := strings.ToLower(url)
	switch {
	case lower == "":
		return ""
	case strings.Contains(lower, "github.com"):
		return "github"
	case strings.Contains(lower, "gitlab.com"):
		return "gitlab"
	case strings.Contains(lower, "bitbucket.org"):
		return "bitbucket"
	default:
		return ""
	}
}
