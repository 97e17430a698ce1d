package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/codeoverview/internal/overview"
	"github.com/dshills/codeoverview/internal/providers"
	"github.com/dshills/codeoverview/internal/store"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, p providers.Prompt) (providers.Completion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, p.User)
	if g.err != nil {
		return providers.Completion{}, g.err
	}
	return providers.Completion{Text: g.reply, TokensUsed: 7}, nil
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type memStore struct {
	mu        sync.Mutex
	docs      map[string]overview.Document
	createErr error
	getErr    error
	updateErr error
	updates   int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]overview.Document)}
}

func (s *memStore) Create(_ context.Context, doc overview.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.docs[doc.ID]; ok {
		return errors.New("document already exists")
	}
	s.docs[doc.ID] = doc
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (overview.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return overview.Document{}, s.getErr
	}
	doc, ok := s.docs[id]
	if !ok {
		return overview.Document{}, store.ErrNotFound
	}
	return doc, nil
}

func (s *memStore) UpdateChatHistory(_ context.Context, id string, turns []overview.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	doc := s.docs[id]
	doc.ID = id
	doc.ChatHistory = append([]overview.Turn(nil), turns...)
	s.docs[id] = doc
	return nil
}

func (s *memStore) get(id string) (overview.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	return doc, ok
}
