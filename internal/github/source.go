package github

import (
	"context"
	"fmt"
	"regexp"
)

var shorthandPattern = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9-]{0,38})?)/([A-Za-z0-9._-]+)$`)

// ParseShorthand splits an "owner/repo" clone source. Anything that looks
// like a URL or a path is not shorthand.
func ParseShorthand(source string) (owner, repo string, ok bool) {
	m := shorthandPattern.FindStringSubmatch(source)
	if m == nil || m[2] == "." || m[2] == ".." {
		return "", "", false
	}
	return m[1], m[2], true
}

// ResolveCloneURL turns "owner/repo" into the repository's clone URL.
// Other sources are returned unchanged.
func ResolveCloneURL(ctx context.Context, client GitHubClient, source string) (string, error) {
	owner, repo, ok := ParseShorthand(source)
	if !ok {
		return source, nil
	}

	repository, err := client.GetRepository(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	if repository.CloneURL == "" {
		return "", fmt.Errorf("repository %s/%s has no clone URL", owner, repo)
	}
	return repository.CloneURL, nil
}
