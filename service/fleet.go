package service

import (
	"context"
	"fmt"
	"sync"

	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/logger"
	"scanmyride/pkg/models"
	"scanmyride/storage"
)

// NewDraftIndex marks a draft that is not in the fetched list yet.
const NewDraftIndex = -1

type FleetAPI interface {
	MyProfiles(ctx context.Context) ([]models.VehicleProfile, error)
	SaveProfile(ctx context.Context, form *apiclient.Form) (*models.VehicleProfile, error)
}

// Fleet is the profile form controller: the fetched profiles of one account and
// the draft being edited.
type Fleet struct {
	api     FleetAPI
	store   *storage.ClientStore
	session *Session
	apiBase string
	log     logger.ILogger

	mu       sync.Mutex
	profiles []models.VehicleProfile
	active   int
	draft    models.VehicleProfile
	pending  map[ImageField]models.PendingFile
	loaded   bool
	saving   bool
}

func NewFleet(api FleetAPI, store *storage.ClientStore, session *Session, apiBase string, log logger.ILogger) *Fleet {
	return &Fleet{
		api:     api,
		store:   store,
		session: session,
		apiBase: apiBase,
		log:     log,
		active:  NewDraftIndex,
		draft:   models.NewBlankProfile(),
	}
}

// LoadFleet fetches the account's profiles and restores the last selected one.
func (f *Fleet) LoadFleet(ctx context.Context) error {
	profiles, err := f.api.MyProfiles(ctx)
	if err != nil {
		return f.fail(ctx, "load fleet", err)
	}
	last, _, err := f.store.Get(ctx, storage.KeyLastProfileID)
	if err != nil {
		f.log.Warning("failed to read last profile id", logger.Error(err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = profiles
	f.loaded = true
	f.pending = nil
	if len(profiles) == 0 {
		f.active = NewDraftIndex
		f.draft = models.NewBlankProfile()
		return nil
	}
	idx := indexByUniqueID(profiles, last)
	if last == "" || idx < 0 {
		idx = 0
	}
	f.active = idx
	f.draft = profiles[idx].Clone()
	return nil
}

// SwitchProfile makes profiles[index] the draft. It never touches the network
// beyond remembering the choice in client storage.
func (f *Fleet) SwitchProfile(ctx context.Context, index int) error {
	f.mu.Lock()
	if index < 0 || index >= len(f.profiles) {
		f.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrProfileIndex, index)
	}
	f.active = index
	f.draft = f.profiles[index].Clone()
	f.pending = nil
	uniqueID := f.draft.UniqueID
	f.mu.Unlock()

	f.rememberSelection(ctx, uniqueID)
	return nil
}

// AddNewCar resets the draft to the blank template.
func (f *Fleet) AddNewCar() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = NewDraftIndex
	f.draft = models.NewBlankProfile()
	f.pending = nil
}

func (f *Fleet) UpdateField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft := f.draft.Clone()
	if err := setField(&draft, name, value); err != nil {
		return err
	}
	f.draft = draft
	return nil
}

// AttachImage selects a local file for one of the image fields, replacing any
// earlier selection.
func (f *Fleet) AttachImage(field ImageField, file models.PendingFile) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %s", ErrImageField, field)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		f.pending = make(map[ImageField]models.PendingFile)
	}
	f.pending[field] = file
	return nil
}

// Submit saves the draft, then refetches the fleet and reselects the saved
// profile by its uniqueId. A failed save leaves every piece of state, pending
// files included, as it was.
func (f *Fleet) Submit(ctx context.Context) (*models.VehicleProfile, error) {
	f.mu.Lock()
	if f.saving {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	f.saving = true
	draft := f.draft.Clone()
	pending := make(map[ImageField]models.PendingFile, len(f.pending))
	for k, v := range f.pending {
		pending[k] = v
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.saving = false
		f.mu.Unlock()
	}()

	form, err := BuildProfileForm(draft, pending)
	if err != nil {
		return nil, fmt.Errorf("build profile form: %w", err)
	}
	saved, err := f.api.SaveProfile(ctx, form)
	if err != nil {
		return nil, f.fail(ctx, "save profile", err)
	}

	profiles, err := f.api.MyProfiles(ctx)
	if err != nil {
		// The save went through: keep its identity so a retry updates
		// instead of creating a second profile.
		f.mu.Lock()
		f.draft.ID = saved.ID
		f.draft.UniqueID = saved.UniqueID
		f.pending = nil
		f.mu.Unlock()
		return nil, f.fail(ctx, "refresh fleet", err)
	}

	idx := indexByUniqueID(profiles, saved.UniqueID)
	if idx < 0 {
		f.log.Warning("saved profile missing from refreshed fleet", logger.String("unique_id", saved.UniqueID))
		profiles = append(profiles, *saved)
		idx = len(profiles) - 1
	}

	f.mu.Lock()
	f.profiles = profiles
	f.loaded = true
	f.active = idx
	f.draft = profiles[idx].Clone()
	f.pending = nil
	result := f.draft.Clone()
	f.mu.Unlock()

	f.rememberSelection(ctx, saved.UniqueID)
	f.log.Info("profile saved", logger.String("unique_id", saved.UniqueID), logger.Int("index", idx))
	return &result, nil
}

func (f *Fleet) Draft() models.VehicleProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Clone()
}

func (f *Fleet) Profiles() []models.VehicleProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.VehicleProfile, len(f.profiles))
	for i, p := range f.profiles {
		out[i] = p.Clone()
	}
	return out
}

func (f *Fleet) ActiveIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *Fleet) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *Fleet) Saving() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saving
}

// Previews resolves each image field of the draft to a loadable URL. A pending
// local selection wins over the stored value.
func (f *Fleet) Previews() map[ImageField]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[ImageField]string, len(ImageFields))
	for _, field := range ImageFields {
		img := imageOf(f.draft, field)
		if file, ok := f.pending[field]; ok {
			img = models.PendingImage(file)
		}
		if url := img.Preview(f.apiBase); url != "" {
			out[field] = url
		}
	}
	return out
}

func (f *Fleet) Pending() []ImageField {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ImageField
	for _, field := range ImageFields {
		if _, ok := f.pending[field]; ok {
			out = append(out, field)
		}
	}
	return out
}

func (f *Fleet) rememberSelection(ctx context.Context, uniqueID string) {
	if uniqueID == "" {
		return
	}
	if err := f.store.Set(ctx, storage.KeyLastProfileID, uniqueID); err != nil {
		f.log.Warning("failed to persist last profile id", logger.Error(err))
	}
}

// fail turns an auth rejection into a cleared session.
func (f *Fleet) fail(ctx context.Context, op string, err error) error {
	if apiclient.IsUnauthorized(err) && f.session != nil {
		if lerr := f.session.Logout(ctx); lerr != nil {
			f.log.Error("failed to clear session", logger.Error(lerr))
		}
		return ErrSessionExpired
	}
	return fmt.Errorf("%s: %w", op, err)
}

func indexByUniqueID(profiles []models.VehicleProfile, uniqueID string) int {
	if uniqueID == "" {
		return -1
	}
	for i, p := range profiles {
		if p.UniqueID == uniqueID {
			return i
		}
	}
	return -1
}
