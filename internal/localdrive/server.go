// Package localdrive serves a directory tree over the subset of the gemdrive
// protocol the drive client uses. The tree lives in any afs storage, which
// makes file:// roots usable offline and mem:// roots usable in tests.
package localdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

const (
	tsvSuffix    = ".gemdrive-ls.tsv"
	jsonSuffix   = ".gemdrive-ls.json"
	maxFileBytes = 32 << 20
)

// Options configures a Server.
type Options struct {
	// Token, when set, must accompany every request as a bearer token or an
	// access_token query parameter.
	Token  string
	Logger *slog.Logger
}

// Server is an http.Handler exposing one afs directory.
type Server struct {
	fs     afs.Service
	root   string
	token  string
	logger *slog.Logger
	router chi.Router

	// writes serialises existence checks with creates so a directory PUT
	// fails if and only if the directory was already there.
	writes sync.Mutex
}

// New creates a server rooted at root, an afs URL or a local path.
func New(ctx context.Context, root string, opts Options) (*Server, error) {
	if url.Scheme(root, "") == "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", root, err)
		}
		root = url.ToFileURL(abs)
	}

	s := &Server{
		fs:     afs.New(),
		root:   strings.TrimSuffix(root, "/"),
		token:  opts.Token,
		logger: opts.Logger,
	}
	ok, err := s.fs.Exists(ctx, s.root)
	if err != nil {
		return nil, fmt.Errorf("checking root %s: %w", s.root, err)
	}
	if !ok {
		if err := s.fs.Create(ctx, s.root, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("creating root %s: %w", s.root, err)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.auth)
	r.Get("/*", s.handleGet)
	r.Put("/*", s.handlePut)
	r.Delete("/*", s.handleDelete)
	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := r.URL.Query().Get("access_token")
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
		if token != s.token {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rel, err := cleanPath(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(rel, tsvSuffix):
		s.list(w, r, strings.TrimSuffix(rel, tsvSuffix), writeTSV)
	case strings.HasSuffix(rel, jsonSuffix):
		s.list(w, r, strings.TrimSuffix(rel, jsonSuffix), writeJSON)
	case rel == "" || strings.HasSuffix(rel, "/"):
		http.Error(w, "directories are read through their listing", http.StatusBadRequest)
	default:
		s.download(w, r, rel)
	}
}

type child struct {
	name    string
	modTime time.Time
	size    int64
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, dir string, write func(io.Writer, []child) error) {
	if dir != "" && !strings.HasSuffix(dir, "/") {
		http.Error(w, "listing path must name a directory", http.StatusBadRequest)
		return
	}
	target := s.resolve(dir)

	objects, ok, err := s.listObjects(r.Context(), target)
	if err != nil {
		s.fail(w, "list", target, err)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	children := make([]child, 0, len(objects))
	for _, o := range objects {
		if url.Path(strings.TrimSuffix(o.URL(), "/")) == url.Path(target) || o.Name() == "" {
			continue
		}
		name := o.Name()
		if o.IsDir() {
			name += "/"
		}
		children = append(children, child{name: name, modTime: o.ModTime(), size: o.Size()})
	}
	sort.Slice(children, func(i, j int) bool { return children[i].name < children[j].name })

	var buf bytes.Buffer
	if err := write(&buf, children); err != nil {
		s.fail(w, "encode listing", target, err)
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) listObjects(ctx context.Context, target string) ([]storage.Object, bool, error) {
	ok, err := s.fs.Exists(ctx, target)
	if err != nil || !ok {
		return nil, false, err
	}
	obj, err := s.fs.Object(ctx, target)
	if err != nil {
		return nil, false, err
	}
	if !obj.IsDir() {
		return nil, false, nil
	}
	objects, err := s.fs.List(ctx, target)
	if err != nil {
		return nil, false, err
	}
	return objects, true, nil
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, rel string) {
	target := s.resolve(rel)
	ok, err := s.fs.Exists(r.Context(), target)
	if err != nil {
		s.fail(w, "stat", target, err)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, err := s.fs.DownloadWithURL(r.Context(), target)
	if err != nil {
		s.fail(w, "download", target, err)
		return
	}
	_, _ = w.Write(data)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	rel, err := cleanPath(chi.URLParam(r, "*"))
	if err != nil || rel == "" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	if strings.HasSuffix(rel, "/") {
		s.makeDir(w, r, rel)
		return
	}
	s.upload(w, r, rel)
}

func (s *Server) makeDir(w http.ResponseWriter, r *http.Request, rel string) {
	ctx := r.Context()
	target := s.resolve(rel)

	s.writes.Lock()
	defer s.writes.Unlock()

	exists, err := s.fs.Exists(ctx, target)
	if err != nil {
		s.fail(w, "stat", target, err)
		return
	}
	if exists {
		http.Error(w, "already exists", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("recursive") != "true" {
		parent, err := s.fs.Exists(ctx, s.resolve(parentDir(rel)))
		if err != nil {
			s.fail(w, "stat", target, err)
			return
		}
		if !parent {
			http.NotFound(w, r)
			return
		}
	}
	if err := s.fs.Create(ctx, target, file.DefaultDirOsMode, true); err != nil {
		s.fail(w, "mkdir", target, err)
		return
	}
	s.debug("created directory", rel)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, rel string) {
	ctx := r.Context()
	target := s.resolve(rel)

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFileBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	s.writes.Lock()
	defer s.writes.Unlock()

	exists, err := s.fs.Exists(ctx, target)
	if err != nil {
		s.fail(w, "stat", target, err)
		return
	}
	if exists && r.URL.Query().Get("overwrite") != "true" {
		http.Error(w, "already exists", http.StatusBadRequest)
		return
	}
	parent := s.resolve(parentDir(rel))
	if ok, _ := s.fs.Exists(ctx, parent); !ok {
		if err := s.fs.Create(ctx, parent, file.DefaultDirOsMode, true); err != nil {
			s.fail(w, "mkdir", parent, err)
			return
		}
	}
	if exists {
		if err := s.fs.Delete(ctx, target); err != nil {
			s.fail(w, "replace", target, err)
			return
		}
	}
	if err := s.fs.Upload(ctx, target, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		s.fail(w, "upload", target, err)
		return
	}
	s.debug("wrote file", rel)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	rel, err := cleanPath(chi.URLParam(r, "*"))
	if err != nil || rel == "" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	target := s.resolve(rel)

	s.writes.Lock()
	defer s.writes.Unlock()

	exists, err := s.fs.Exists(r.Context(), target)
	if err != nil {
		s.fail(w, "stat", target, err)
		return
	}
	if !exists {
		http.NotFound(w, r)
		return
	}
	if err := s.fs.Delete(r.Context(), target); err != nil {
		s.fail(w, "delete", target, err)
		return
	}
	s.debug("deleted", rel)
}

func (s *Server) resolve(rel string) string {
	rel = strings.TrimSuffix(rel, "/")
	if rel == "" {
		return s.root
	}
	return url.Join(s.root, rel)
}

func (s *Server) fail(w http.ResponseWriter, op, target string, err error) {
	if s.logger != nil {
		s.logger.Error("local drive failure", "op", op, "target", target, "error", err)
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) debug(msg, rel string) {
	if s.logger != nil {
		s.logger.Debug(msg, "path", rel)
	}
}

var errBadPath = errors.New("invalid path")

// cleanPath validates a request path relative to the root. Directory paths
// keep their trailing slash.
func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	for _, seg := range strings.Split(strings.TrimSuffix(p, "/"), "/") {
		if seg == "." || seg == ".." || strings.Contains(seg, "\\") {
			return "", errBadPath
		}
	}
	if strings.Contains(strings.TrimSuffix(p, "/"), "//") {
		return "", errBadPath
	}
	return p, nil
}

func parentDir(rel string) string {
	trimmed := strings.TrimSuffix(rel, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return ""
	}
	return trimmed[:i+1]
}
