package service

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/logger"
	"scanmyride/pkg/models"
	"scanmyride/storage"
	"scanmyride/storage/memory"
)

// fakeAPI stands in for the backend. Sequenced errors are consumed one call at
// a time; once exhausted the plain value/error fields apply.
type fakeAPI struct {
	mu sync.Mutex

	loginRes *models.AuthResponse
	loginErr error

	me      *models.User
	meErr   error
	meCalls int

	profiles      [][]models.VehicleProfile
	profilesErr   []error
	profilesCalls int

	saveRes   *models.VehicleProfile
	saveErr   error
	saveBlock chan struct{}
	forms     []*apiclient.Form

	public      *models.VehicleProfile
	publicErrs  []error
	publicCalls int

	signErr error
	signed  []string

	admin    *models.AdminSummary
	adminErr error
}

func statusErr(status int, msg string) error {
	return &apiclient.StatusError{Method: http.MethodGet, Path: "/test", Status: status, Message: msg}
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) Me(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	return f.me, f.meErr
}

func (f *fakeAPI) MyProfiles(ctx context.Context) ([]models.VehicleProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.profilesCalls
	f.profilesCalls++
	if i < len(f.profilesErr) && f.profilesErr[i] != nil {
		return nil, f.profilesErr[i]
	}
	if len(f.profiles) == 0 {
		return nil, nil
	}
	if i >= len(f.profiles) {
		i = len(f.profiles) - 1
	}
	return f.profiles[i], nil
}

func (f *fakeAPI) SaveProfile(ctx context.Context, form *apiclient.Form) (*models.VehicleProfile, error) {
	if f.saveBlock != nil {
		<-f.saveBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forms = append(f.forms, form)
	return f.saveRes, f.saveErr
}

func (f *fakeAPI) PublicProfile(ctx context.Context, uniqueID string) (*models.VehicleProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.publicCalls
	f.publicCalls++
	if i < len(f.publicErrs) {
		return nil, f.publicErrs[i]
	}
	p := f.public.Clone()
	return &p, nil
}

func (f *fakeAPI) SignGuestbook(ctx context.Context, uniqueID, name, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signErr != nil {
		return f.signErr
	}
	f.signed = append(f.signed, name+": "+message)
	return nil
}

func (f *fakeAPI) AdminUsers(ctx context.Context) (*models.AdminSummary, error) {
	return f.admin, f.adminErr
}

func newStore(t *testing.T) *storage.ClientStore {
	t.Helper()
	return storage.NewClientStore(memory.New(), "test-client")
}

func nop() logger.ILogger {
	return logger.NewNop()
}

func formValue(form *apiclient.Form, name string) (string, bool) {
	for _, f := range form.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func car(id, uniqueID, name string) models.VehicleProfile {
	p := models.NewBlankProfile()
	p.ID = models.ID(id)
	p.UniqueID = uniqueID
	p.CarName = name
	return p
}
