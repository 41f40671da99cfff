package entry_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ganot/entreate/internal/domain/journal"
	"github.com/ganot/entreate/internal/repository"
)

// memStore is an in-memory entries directory. Directory keys end in "/" and
// "" is the entries dir itself.
type memStore struct {
	mu       sync.Mutex
	dirs     map[string]bool
	files    map[string][]byte
	unlisted map[string]bool
	forbid   map[string]bool
	failDir  map[string]error
	listed   []string
	creates  []string
}

func newMemStore(dirs ...string) *memStore {
	s := &memStore{
		dirs:     map[string]bool{},
		files:    map[string][]byte{},
		unlisted: map[string]bool{},
		forbid:   map[string]bool{},
		failDir:  map[string]error{},
	}
	for _, d := range dirs {
		s.mkdirAll(d)
	}
	return s
}

func (s *memStore) mkdirAll(dir string) {
	s.dirs[""] = true
	for dir != "" {
		s.dirs[dir] = true
		dir = parent(dir)
	}
}

func parent(p string) string {
	trimmed := strings.TrimSuffix(p, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return ""
	}
	return trimmed[:i+1]
}

func base(p string) string {
	return strings.TrimPrefix(p, parent(p))
}

func (s *memStore) ListDir(ctx context.Context, dir string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listed = append(s.listed, dir)
	if s.forbid[dir] {
		return nil, repository.ErrForbidden
	}
	if !s.dirs[dir] {
		return nil, repository.ErrNotFound
	}
	var names []string
	for d := range s.dirs {
		if d != "" && parent(d) == dir {
			names = append(names, base(d))
		}
	}
	for f := range s.files {
		if parent(f) == dir {
			names = append(names, base(f))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *memStore) CreateDir(ctx context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, dir)
	if s.forbid[dir] {
		return repository.ErrForbidden
	}
	if err := s.failDir[dir]; err != nil {
		return err
	}
	if s.dirs[dir] || s.unlisted[dir] {
		return repository.ErrConflict
	}
	s.mkdirAll(dir)
	return nil
}

func (s *memStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return data, nil
}

func (s *memStore) WriteFile(ctx context.Context, path string, data []byte, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[path]; ok && !overwrite {
		return repository.ErrConflict
	}
	s.mkdirAll(parent(path))
	s.files[path] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listed)
}

// memJournal is an in-memory db record.
type memJournal struct {
	mu      sync.Mutex
	db      journal.DB
	loads   int
	loadErr error
	onLoad  func(n int, db *journal.DB)
}

func (j *memJournal) Load(ctx context.Context) (*journal.DB, error) {
	j.mu.Lock()
	j.loads++
	n := j.loads
	if j.onLoad != nil {
		j.onLoad(n, &j.db)
	}
	err := j.loadErr
	db := j.db
	j.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &db, nil
}

func (j *memJournal) Save(ctx context.Context, db *journal.DB) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.db = *db
	return nil
}

func (j *memJournal) lastID() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.LastID
}
