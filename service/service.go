package service

import (
	"context"
	"io"
	"sync"
	"time"

	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/logger"
	"scanmyride/pkg/models"
	"scanmyride/storage"
)

type IServiceManager interface {
	Open(ctx context.Context, clientID string) *Workspace
	Close(clientID string)
	Public(uniqueID string) *PublicView
	PublicURL(uniqueID string) string
}

type Options struct {
	PublicBaseURL string
	Retry         RetryPolicy
	StickerScale  int
}

// Workspace bundles the state of one client: its persisted store, its session
// and its fleet, all talking to the API with that client's token.
type Workspace struct {
	Store   *storage.ClientStore
	Session *Session
	Fleet   *Fleet

	api  *apiclient.Client
	opts Options
	log  logger.ILogger
}

// Admin returns a fresh admin view bound to this client's token.
func (w *Workspace) Admin() *AdminView {
	return NewAdminView(w.api, w.log)
}

// Sticker writes the print PNG of the current draft.
func (w *Workspace) Sticker(out io.Writer) (string, error) {
	return ExportSticker(out, w.opts.PublicBaseURL, w.Fleet.Draft(), w.opts.StickerScale)
}

type service struct {
	stg  storage.IStorage
	api  *apiclient.Client
	opts Options
	log  logger.ILogger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func New(stg storage.IStorage, api *apiclient.Client, opts Options, log logger.ILogger) IServiceManager {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.StickerScale < 1 {
		opts.StickerScale = 4
	}
	return &service{
		stg:        stg,
		api:        api,
		opts:       opts,
		log:        log,
		workspaces: make(map[string]*Workspace),
	}
}

// Open returns the workspace of clientID, creating it on first use. A new
// workspace starts bootstrapping its session in the background; callers wait
// on Session.Settled before deciding access.
func (s *service) Open(ctx context.Context, clientID string) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[clientID]; ok {
		return ws
	}

	log := s.log.With(logger.String("client_id", clientID))
	store := storage.NewClientStore(s.stg, clientID)
	api := s.api.WithTokens(store)
	session := NewSession(api, store, log)
	ws := &Workspace{
		Store:   store,
		Session: session,
		Fleet:   NewFleet(api, store, session, api.BaseURL(), log),
		api:     api,
		opts:    s.opts,
		log:     log,
	}
	s.workspaces[clientID] = ws

	go func() {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
		defer cancel()
		if err := session.Bootstrap(bctx); err != nil {
			log.Info("session bootstrap ended without a user", logger.Error(err))
		}
	}()
	return ws
}

func (s *service) Close(clientID string) {
	s.mu.Lock()
	delete(s.workspaces, clientID)
	s.mu.Unlock()
}

// Public returns an anonymous view of a shared profile.
func (s *service) Public(uniqueID string) *PublicView {
	return NewPublicView(s.api, uniqueID, s.opts.Retry, s.log)
}

func (s *service) PublicURL(uniqueID string) string {
	return models.PublicURL(s.opts.PublicBaseURL, uniqueID)
}
