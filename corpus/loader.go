package corpus

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// documentGlob matches document files under a role root, at any depth.
const documentGlob = "**/*.md"

// Loader reads every recognized document under the configured role roots.
type Loader struct {
	root   string
	roots  map[Role]string
	logger *slog.Logger
}

// NewLoader creates a Loader rooted at root. roots maps each document role to
// its subdirectory relative to root (e.g. RoleChapter -> "chapters").
func NewLoader(root string, roots map[Role]string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{root: root, roots: roots, logger: logger}
}

// Load discovers and parses every document. Files load in parallel, one
// goroutine per file; the ID-uniqueness check runs only after all loads have
// completed. Any failure is fatal: Load returns either a complete corpus or
// a *CorpusError, never a partial result.
func (l *Loader) Load() (*Corpus, error) {
	type target struct {
		role Role
		abs  string
		rel  string
	}

	var targets []target
	roles := make([]Role, 0, len(l.roots))
	for role := range l.roots {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	for _, role := range roles {
		dir := filepath.Join(l.root, l.roots[role])
		if _, err := os.Stat(dir); err != nil {
			return nil, &CorpusError{Op: "discover", Path: dir, Err: err}
		}

		matches, err := doublestar.Glob(os.DirFS(dir), documentGlob)
		if err != nil {
			return nil, &CorpusError{Op: "discover", Path: dir, Err: err}
		}
		sort.Strings(matches)

		for _, m := range matches {
			targets = append(targets, target{
				role: role,
				abs:  filepath.Join(dir, filepath.FromSlash(m)),
				rel:  filepath.Join(l.roots[role], filepath.FromSlash(m)),
			})
		}
	}

	l.logger.Debug("discovered documents", slog.Int("count", len(targets)))

	docs := make([]*Document, len(targets))
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt target) {
			defer wg.Done()

			content, err := os.ReadFile(tgt.abs)
			if err != nil {
				errs[i] = &CorpusError{Op: "read", Path: tgt.rel, Err: err}
				return
			}
			docs[i] = ParseDocument(DocumentID(tgt.abs), tgt.role, filepath.ToSlash(tgt.rel), content)
		}(i, tgt)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	corpus, err := New(docs)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("corpus loaded", slog.Int("documents", corpus.Len()))
	return corpus, nil
}

// AssetExists reports whether the named asset file exists under dir. Paths
// are resolved relative to dir; directories do not count as assets.
func AssetExists(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
	return err == nil && info.Mode().IsRegular()
}
