package namespace

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittodav/pkg/repository"
	"github.com/marmos91/dittodav/pkg/repository/memory"
)

const (
	testRootPath = "/default-domain/workspaces"
	testRootURL  = "/dav/workspaces"
)

// fixedNow is the clock of every test backend.
var fixedNow = time.UnixMilli(1700000000000)

// countingSession counts the reads the resolver issues.
type countingSession struct {
	repository.Session
	calls atomic.Int64
}

func (s *countingSession) Exists(ctx context.Context, ref repository.Ref) (bool, error) {
	s.calls.Add(1)
	return s.Session.Exists(ctx, ref)
}

func (s *countingSession) Get(ctx context.Context, ref repository.Ref) (*repository.Node, error) {
	s.calls.Add(1)
	return s.Session.Get(ctx, ref)
}

func (s *countingSession) Children(ctx context.Context, ref repository.Ref) ([]*repository.Node, error) {
	s.calls.Add(1)
	return s.Session.Children(ctx, ref)
}

// recordingMetrics keeps what the backend reports.
type recordingMetrics struct {
	mu          sync.Mutex
	operations  map[string]int
	failures    map[string]int
	hits        int
	misses      int
	strategies  map[string]int
	lastEntries int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		operations: map[string]int{},
		failures:   map[string]int{},
		strategies: map[string]int{},
	}
}

func (m *recordingMetrics) RecordOperation(op string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[op]++
	if err != nil {
		m.failures[op]++
	}
}

func (m *recordingMetrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) RecordResolution(strategy string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies[strategy]++
}

func (m *recordingMetrics) SetCacheEntries(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastEntries = n
}

type fixture struct {
	ctx     context.Context
	repo    *memory.MemoryRepository
	admin   repository.Session
	session *countingSession
	metrics *recordingMetrics
	backend *Backend
}

// newFixture creates a memory repository holding the backend root
// (Domain/WorkspaceRoot) and a backend acting as alice.
func newFixture(t *testing.T, configure ...func(*Config)) *fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := memory.NewMemoryRepository(ctx, memory.Config{})
	require.NoError(t, err)
	admin := repo.Open("admin")
	_, err = repository.EnsurePath(ctx, admin, testRootPath, repository.TypeDomain, repository.TypeWorkspaceRoot)
	require.NoError(t, err)

	f := &fixture{ctx: ctx, repo: repo, admin: admin}
	f.session, f.metrics, f.backend = f.open(t, "alice", configure...)
	return f
}

// open creates another backend over the same repository.
func (f *fixture) open(t *testing.T, principal string, configure ...func(*Config)) (*countingSession, *recordingMetrics, *Backend) {
	t.Helper()
	cfg := Config{Name: "workspaces", RootPath: testRootPath, RootURL: testRootURL}
	for _, c := range configure {
		c(&cfg)
	}

	session := &countingSession{Session: f.repo.Open(principal)}
	m := newRecordingMetrics()
	backend, err := New(session, cfg, Dependencies{
		Metrics: m,
		Now:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return session, m, backend
}

// grant replaces the root ACL.
func (f *fixture) grant(t *testing.T, aces ...repository.ACE) {
	t.Helper()
	require.NoError(t, f.repo.SetACL(f.ctx, repository.PathRef("/"), aces))
}

// mustCreate creates a node directly in the repository, bypassing the
// backend and its cache.
func (f *fixture) mustCreate(t *testing.T, parentPath string, spec repository.NodeSpec) *repository.Node {
	t.Helper()
	node, err := f.admin.Create(f.ctx, repository.PathRef(parentPath), spec)
	require.NoError(t, err)
	return node
}

func (f *fixture) mustFolder(t *testing.T, parentPath, name string) *repository.Node {
	t.Helper()
	return f.mustCreate(t, parentPath, repository.NodeSpec{Name: name, Type: repository.TypeFolder})
}

func (f *fixture) mustFile(t *testing.T, parentPath, name, filename, content string) *repository.Node {
	t.Helper()
	return f.mustCreate(t, parentPath, repository.NodeSpec{
		Name:    name,
		Type:    repository.TypeFile,
		Payload: repository.NewPayload(filename, "", []byte(content)),
	})
}

// mustTrash soft-deletes a node directly in the repository.
func (f *fixture) mustTrash(t *testing.T, node *repository.Node) {
	t.Helper()
	_, err := f.admin.SetLifecycleState(f.ctx, node.Ref(), repository.StateDeleted)
	require.NoError(t, err)
}

// get loads a node by repository path through the admin session.
func (f *fixture) get(t *testing.T, p string) *repository.Node {
	t.Helper()
	node, err := f.admin.Get(f.ctx, repository.PathRef(p))
	require.NoError(t, err)
	return node
}

func (f *fixture) childNames(t *testing.T, p string) []string {
	t.Helper()
	children, err := f.admin.Children(f.ctx, repository.PathRef(p))
	require.NoError(t, err)
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name)
	}
	return names
}

// loc builds a client location under the backend root URL.
func loc(parts ...string) string {
	if len(parts) == 0 {
		return testRootURL
	}
	return testRootURL + "/" + strings.Join(parts, "/")
}

// rpath builds a repository path under the backend root path.
func rpath(parts ...string) string {
	if len(parts) == 0 {
		return testRootPath
	}
	return testRootPath + "/" + strings.Join(parts, "/")
}
