package testutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/orchestrator"
	"github.com/amphitheatre-app/playbooks/internal/scm"
)

// SyncCall records one SyncActor invocation.
type SyncCall struct {
	PlaybookID string
	Actor      string
	Request    api.Synchronization
}

// FakeOrchestrator is an in-memory orchestrator.Interface. Unknown playbooks
// answer with a 404 HTTPError like the real server. The *Err fields inject
// failures into the matching operation.
type FakeOrchestrator struct {
	mu        sync.Mutex
	playbooks map[string]*api.PlaybookSpec
	logs      map[string][]api.LogEvent

	Created []api.PlaybookPayload
	Started []string
	Deleted []string
	Syncs   []SyncCall
	Calls   []string

	// HoldLogs keeps log streams open after their events until the caller
	// goes away, like a live feed.
	HoldLogs bool

	GetErr    error
	CreateErr error
	DeleteErr error
	StartErr  error
	SyncErr   error
	LogsErr   error
}

var _ orchestrator.Interface = (*FakeOrchestrator)(nil)

// NewFakeOrchestrator creates a fake seeded with playbooks.
func NewFakeOrchestrator(playbooks ...*api.PlaybookSpec) *FakeOrchestrator {
	f := &FakeOrchestrator{
		playbooks: make(map[string]*api.PlaybookSpec),
		logs:      make(map[string][]api.LogEvent),
	}
	for _, p := range playbooks {
		f.playbooks[p.ID] = p
	}
	return f
}

// AddLogs queues log lines for an actor of a playbook.
func (f *FakeOrchestrator) AddLogs(playbookID, actor string, lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range lines {
		f.logs[playbookID+"/"+actor] = append(f.logs[playbookID+"/"+actor], api.LogEvent{Message: line})
	}
}

// Playbook returns a stored playbook.
func (f *FakeOrchestrator) Playbook(id string) (*api.PlaybookSpec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playbooks[id]
	return p, ok
}

// CallCount returns how many times method was invoked.
func (f *FakeOrchestrator) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *FakeOrchestrator) record(method string) {
	f.Calls = append(f.Calls, method)
}

func notFound(id string) error {
	return &orchestrator.HTTPError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("playbook %s not found", id)}
}

// GetPlaybook implements orchestrator.Interface.
func (f *FakeOrchestrator) GetPlaybook(_ context.Context, id string) (*api.PlaybookSpec, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetPlaybook")

	if f.GetErr != nil {
		return nil, f.GetErr
	}
	p, ok := f.playbooks[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *p
	return &cp, nil
}

// CreatePlaybook implements orchestrator.Interface. The created playbook
// gets a single character named after the preface.
func (f *FakeOrchestrator) CreatePlaybook(_ context.Context, payload api.PlaybookPayload) (*api.PlaybookSpec, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreatePlaybook")

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.Created = append(f.Created, payload)

	p := &api.PlaybookSpec{
		ID:          uuid.NewString(),
		Title:       payload.Title,
		Description: payload.Description,
		Preface:     payload.Preface,
		Characters:  []api.Character{{Meta: api.CharacterMeta{Name: payload.Preface.Name}}},
	}
	f.playbooks[p.ID] = p
	cp := *p
	return &cp, nil
}

// DeletePlaybook implements orchestrator.Interface.
func (f *FakeOrchestrator) DeletePlaybook(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeletePlaybook")

	if _, ok := f.playbooks[id]; !ok {
		return notFound(id)
	}
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.playbooks, id)
	f.Deleted = append(f.Deleted, id)
	return nil
}

// StartPlaybook implements orchestrator.Interface.
func (f *FakeOrchestrator) StartPlaybook(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("StartPlaybook")

	if _, ok := f.playbooks[id]; !ok {
		return notFound(id)
	}
	if f.StartErr != nil {
		return f.StartErr
	}
	f.Started = append(f.Started, id)
	return nil
}

// SyncActor implements orchestrator.Interface.
func (f *FakeOrchestrator) SyncActor(_ context.Context, playbookID, name string, req api.Synchronization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SyncActor")

	if f.SyncErr != nil {
		return f.SyncErr
	}
	f.Syncs = append(f.Syncs, SyncCall{PlaybookID: playbookID, Actor: name, Request: req})
	return nil
}

// ActorLogs implements orchestrator.Interface.
func (f *FakeOrchestrator) ActorLogs(ctx context.Context, playbookID, name string) (orchestrator.LogStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ActorLogs")

	if f.LogsErr != nil {
		return nil, f.LogsErr
	}
	events := append([]api.LogEvent(nil), f.logs[playbookID+"/"+name]...)
	return NewFakeLogStream(ctx, f.HoldLogs, events...), nil
}

// FakeLogStream replays events. When hold is set it blocks after the last
// event until ctx is done or the stream is closed.
type FakeLogStream struct {
	ctx    context.Context
	events []api.LogEvent
	hold   bool
	closed chan struct{}
	once   sync.Once
	mu     sync.Mutex
}

// NewFakeLogStream creates a stream over events.
func NewFakeLogStream(ctx context.Context, hold bool, events ...api.LogEvent) *FakeLogStream {
	return &FakeLogStream{ctx: ctx, events: events, hold: hold, closed: make(chan struct{})}
}

// Next implements orchestrator.LogStream.
func (s *FakeLogStream) Next() (api.LogEvent, error) {
	s.mu.Lock()
	if len(s.events) > 0 {
		ev := s.events[0]
		s.events = s.events[1:]
		s.mu.Unlock()
		return ev, nil
	}
	s.mu.Unlock()

	if !s.hold {
		return api.LogEvent{}, io.EOF
	}
	select {
	case <-s.ctx.Done():
		return api.LogEvent{}, s.ctx.Err()
	case <-s.closed:
		return api.LogEvent{}, io.EOF
	}
}

// Close implements orchestrator.LogStream.
func (s *FakeLogStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// Closed reports whether Close was called.
func (s *FakeLogStream) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// FakeSCM is an in-memory scm.Client keyed by "owner/repo", reference and path.
type FakeSCM struct {
	mu           sync.Mutex
	repositories map[string]*api.SCMRepository
	contents     map[string]*api.Content
	trees        map[string]*api.Tree

	Calls []string
	// Recursive records the flag of the last GetTree call.
	Recursive bool

	Err error
}

var _ scm.Client = (*FakeSCM)(nil)

// NewFakeSCM creates an empty fake.
func NewFakeSCM() *FakeSCM {
	return &FakeSCM{
		repositories: make(map[string]*api.SCMRepository),
		contents:     make(map[string]*api.Content),
		trees:        make(map[string]*api.Tree),
	}
}

func scmKey(repo, ref, path string) string {
	return repo + "@" + ref + ":" + path
}

// AddRepository registers repository metadata.
func (f *FakeSCM) AddRepository(repo string, meta api.SCMRepository) *FakeSCM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repositories[repo] = &meta
	return f
}

// AddContent registers a file.
func (f *FakeSCM) AddContent(repo, ref, path string, data []byte) *FakeSCM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents[scmKey(repo, ref, path)] = &api.Content{Path: path, Data: data, Sha: "sha-" + path, BlobID: "blob-" + path}
	return f
}

// AddTree registers a directory listing.
func (f *FakeSCM) AddTree(repo, ref, path string, tree api.Tree) *FakeSCM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trees[scmKey(repo, ref, path)] = &tree
	return f
}

// FindRepository implements scm.Client.
func (f *FakeSCM) FindRepository(_ context.Context, repo string) (*api.SCMRepository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "FindRepository")

	if f.Err != nil {
		return nil, f.Err
	}
	r, ok := f.repositories[repo]
	if !ok {
		return nil, fmt.Errorf("repository %s: %w", repo, scm.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

// FindContent implements scm.Client.
func (f *FakeSCM) FindContent(_ context.Context, repo, path, ref string) (*api.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "FindContent")

	if f.Err != nil {
		return nil, f.Err
	}
	c, ok := f.contents[scmKey(repo, ref, path)]
	if !ok {
		return nil, fmt.Errorf("content %s: %w", scmKey(repo, ref, path), scm.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

// GetTree implements scm.Client.
func (f *FakeSCM) GetTree(_ context.Context, repo, ref, path string, recursive bool) (*api.Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "GetTree")
	f.Recursive = recursive

	if f.Err != nil {
		return nil, f.Err
	}
	t, ok := f.trees[scmKey(repo, ref, path)]
	if !ok {
		return nil, fmt.Errorf("tree %s: %w", scmKey(repo, ref, path), scm.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}
