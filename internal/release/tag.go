package release

import (
	"log/slog"

	git "github.com/go-git/go-git/v5"

	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/logfields"
)

// Tagger creates a version-control tag for a released version.
type Tagger interface {
	CreateTag(name string) error
}

// GitTagger creates lightweight tags in the repository at repoPath via go-git.
type GitTagger struct {
	repoPath string
}

// NewGitTagger creates a tagger rooted at repoPath ("." for the working dir).
func NewGitTagger(repoPath string) *GitTagger {
	return &GitTagger{repoPath: repoPath}
}

// CreateTag tags the current HEAD with name.
func (t *GitTagger) CreateTag(name string) error {
	repo, err := git.PlainOpen(t.repoPath)
	if err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "open git repository %s", t.repoPath)
	}
	head, err := repo.Head()
	if err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "resolve HEAD")
	}
	if _, err := repo.CreateTag(name, head.Hash(), nil); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "create tag %s", name)
	}
	slog.Info("Tag created", slog.String("tag", name), logfields.Path(t.repoPath))
	return nil
}
