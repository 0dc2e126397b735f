// Package gitmeta reads version metadata from the repository the pipeline
// runs in. It is a convenience layer only: every value it produces can be
// supplied explicitly by the operator instead.
package gitmeta

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// Head describes the current checkout.
type Head struct {
	// ShortSHA is the abbreviated commit hash, usable as a version tag.
	ShortSHA string
	// Branch is the checked-out branch name, empty on a detached HEAD.
	Branch string
}

// Resolve opens the repository containing dir and reads its HEAD.
func Resolve(dir string) (Head, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Head{}, fmt.Errorf("failed to open git repository at %s: %w", dir, err)
	}
	ref, err := repo.Head()
	if err != nil {
		return Head{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	h := Head{ShortSHA: ref.Hash().String()[:7]}
	if ref.Name().IsBranch() {
		h.Branch = ref.Name().Short()
	}
	return h, nil
}

// ReleaseArgs renders the release-tracking build parameters for a version.
// The builder forwards them only to services that track releases.
func (h Head) ReleaseArgs(version string) map[string]string {
	return map[string]string{
		"RELEASE_VERSION": version,
		"RELEASE_SHA":     h.ShortSHA,
		"RELEASE_BRANCH":  h.Branch,
	}
}
