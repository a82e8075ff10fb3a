package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/logger"
	"scanmyride/pkg/models"
)

const (
	MsgProfileNotFound = "This profile does not exist or is no longer public."
	MsgServerWaking    = "The server is taking longer than expected to wake up. Please refresh the page in a few seconds."
	MsgAdminFallback   = "Error fetching users"
)

type PublicAPI interface {
	PublicProfile(ctx context.Context, uniqueID string) (*models.VehicleProfile, error)
	SignGuestbook(ctx context.Context, uniqueID, name, message string) error
}

type ViewState int

const (
	StateLoading ViewState = iota
	StateSuccess
	StateError
)

func (s ViewState) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "loading"
	}
}

// RetryPolicy bounds the public fetch. MaxAttempts counts every request,
// the first one included.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 15, Interval: 2 * time.Second}
}

type PublicSnapshot struct {
	State    ViewState
	Profile  *models.VehicleProfile
	Message  string
	Attempts int
}

// PublicView is the read-only view of one public profile.
type PublicView struct {
	api      PublicAPI
	uniqueID string
	policy   RetryPolicy
	log      logger.ILogger

	wait func(ctx context.Context, d time.Duration) error
	now  func() time.Time

	mu       sync.Mutex
	state    ViewState
	profile  *models.VehicleProfile
	message  string
	attempts int
	started  bool
	posting  bool
}

func NewPublicView(api PublicAPI, uniqueID string, policy RetryPolicy, log logger.ILogger) *PublicView {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &PublicView{
		api:      api,
		uniqueID: uniqueID,
		policy:   policy,
		log:      log,
		wait:     sleepContext,
		now:      time.Now,
	}
}

// Load fetches the profile, retrying sequentially on a fixed interval. It runs
// once per view; a view in the error state stays there.
func (v *PublicView) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.started {
		v.mu.Unlock()
		return nil
	}
	v.started = true
	v.mu.Unlock()

	var lastErr error
	for attempt := 1; ; attempt++ {
		v.mu.Lock()
		v.attempts = attempt
		v.mu.Unlock()

		profile, err := v.api.PublicProfile(ctx, v.uniqueID)
		if err == nil {
			v.mu.Lock()
			v.state = StateSuccess
			v.profile = profile
			v.mu.Unlock()
			return nil
		}
		if ctx.Err() != nil {
			// Nobody is looking at this view any more.
			return ctx.Err()
		}
		lastErr = err
		if attempt >= v.policy.MaxAttempts {
			break
		}
		v.log.Debug("public profile fetch failed, retrying",
			logger.String("unique_id", v.uniqueID), logger.Int("attempt", attempt), logger.Error(err))
		if err := v.wait(ctx, v.policy.Interval); err != nil {
			return err
		}
	}

	msg := MsgServerWaking
	if apiclient.IsStatus(lastErr, http.StatusNotFound) {
		msg = MsgProfileNotFound
	}
	v.mu.Lock()
	v.state = StateError
	v.message = msg
	v.mu.Unlock()
	v.log.Warning("public profile unavailable",
		logger.String("unique_id", v.uniqueID), logger.Int("attempts", v.policy.MaxAttempts), logger.Error(lastErr))
	return fmt.Errorf("%w: %v", ErrProfileUnavailable, lastErr)
}

// SignGuestbook posts a visitor message and puts it at the top of the local
// guestbook without refetching the profile.
func (v *PublicView) SignGuestbook(ctx context.Context, name, message string) (models.GuestbookEntry, error) {
	name, message = strings.TrimSpace(name), strings.TrimSpace(message)
	if message == "" {
		return models.GuestbookEntry{}, ErrEmptyMessage
	}

	v.mu.Lock()
	if v.state != StateSuccess {
		v.mu.Unlock()
		return models.GuestbookEntry{}, ErrNotLoaded
	}
	if v.posting {
		v.mu.Unlock()
		return models.GuestbookEntry{}, ErrBusy
	}
	v.posting = true
	v.mu.Unlock()

	err := v.api.SignGuestbook(ctx, v.uniqueID, name, message)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.posting = false
	if err != nil {
		return models.GuestbookEntry{}, fmt.Errorf("sign guestbook: %w", err)
	}
	if name == "" {
		name = models.AnonymousSigner
	}
	entry := models.GuestbookEntry{Name: name, Message: message, Date: v.now().UTC()}
	v.profile.Guestbook = append([]models.GuestbookEntry{entry}, v.profile.Guestbook...)
	return entry, nil
}

func (v *PublicView) Snapshot() PublicSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := PublicSnapshot{State: v.state, Message: v.message, Attempts: v.attempts}
	if v.profile != nil {
		p := v.profile.Clone()
		snap.Profile = &p
	}
	return snap
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
