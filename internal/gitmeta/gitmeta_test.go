package gitmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"gotest.tools/v3/assert"
)

func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	assert.NilError(t, err)
	wt, err := repo.Worktree()
	assert.NilError(t, err)

	assert.NilError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("universe\n"), 0o644))
	_, err = wt.Add("README.md")
	assert.NilError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	assert.NilError(t, err)
	return dir, hash.String()
}

func TestResolveReadsHead(t *testing.T) {
	dir, sha := initRepo(t)
	head, err := Resolve(dir)
	assert.NilError(t, err)
	assert.Equal(t, head.ShortSHA, sha[:7])
	assert.Equal(t, head.Branch, "master")
}

func TestResolveDetectsRepoFromSubdirectory(t *testing.T) {
	dir, sha := initRepo(t)
	sub := filepath.Join(dir, "play")
	assert.NilError(t, os.MkdirAll(sub, 0o755))

	head, err := Resolve(sub)
	assert.NilError(t, err)
	assert.Equal(t, head.ShortSHA, sha[:7])
}

func TestResolveOutsideRepositoryFails(t *testing.T) {
	_, err := Resolve(t.TempDir())
	assert.Assert(t, err != nil)
}

func TestReleaseArgs(t *testing.T) {
	head := Head{ShortSHA: "abc1234", Branch: "main"}
	assert.DeepEqual(t, head.ReleaseArgs("v1.2.3"), map[string]string{
		"RELEASE_VERSION": "v1.2.3",
		"RELEASE_SHA":     "abc1234",
		"RELEASE_BRANCH":  "main",
	})
}
