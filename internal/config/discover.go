package config

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Repository is a GitHub org/name pair discovered from a git remote.
type Repository struct {
	Organization string
	Name         string
}

// remotePatterns match the two URL shapes git produces for github.com
// remotes: git@github.com:org/repo.git and https://github.com/org/repo.
var remotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^git@github\.com:([^/]+)/(.+?)(?:\.git)?/?$`),
	regexp.MustCompile(`^(?:https?|ssh)://(?:[^@/]+@)?github\.com/([^/]+)/(.+?)(?:\.git)?/?$`),
}

// DiscoverRepository resolves the GitHub organization and repository from
// the origin remote of the current clone.
func DiscoverRepository(ctx context.Context) (*Repository, error) {
	out, err := exec.CommandContext(ctx, "git", "remote", "get-url", "origin").Output()
	if err != nil {
		return nil, fmt.Errorf("reading origin remote: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(out)))
}

// ParseRemoteURL extracts the organization and repository from a GitHub
// remote URL in ssh or https form.
func ParseRemoteURL(url string) (*Repository, error) {
	for _, p := range remotePatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return &Repository{Organization: m[1], Name: m[2]}, nil
		}
	}
	return nil, fmt.Errorf("remote %q is not a recognizable github.com URL", url)
}
