package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"scanmyride/pkg/models"
	"scanmyride/storage"
)

func newFleet(t *testing.T, api *fakeAPI) (*Fleet, *storage.ClientStore, *Session) {
	t.Helper()
	store := newStore(t)
	if api.loginRes == nil {
		api.loginRes = &models.AuthResponse{Token: "tok", User: models.User{ID: "1", Name: "Ana"}}
	}
	session := NewSession(api, store, nop())
	if _, err := session.Login(context.Background(), "ana@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return NewFleet(api, store, session, "http://api.test", nop()), store, session
}

func TestLoadFleetRestoresLastProfile(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{profiles: [][]models.VehicleProfile{{car("p1", "u1", "Supra"), car("p2", "u2", "GTR")}}}
	f, store, _ := newFleet(t, api)
	store.Set(ctx, storage.KeyLastProfileID, "u2")

	if err := f.LoadFleet(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.ActiveIndex() != 1 || f.Draft().CarName != "GTR" {
		t.Fatalf("expected GTR at index 1, got %d %q", f.ActiveIndex(), f.Draft().CarName)
	}
}

func TestLoadFleetFallsBackToFirst(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{profiles: [][]models.VehicleProfile{{car("p1", "u1", "Supra"), car("p2", "u2", "GTR")}}}
	f, store, _ := newFleet(t, api)
	store.Set(ctx, storage.KeyLastProfileID, "deleted")

	if err := f.LoadFleet(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.ActiveIndex() != 0 || f.Draft().UniqueID != "u1" {
		t.Fatalf("expected the first profile, got %d", f.ActiveIndex())
	}
}

func TestLoadFleetEmptyGivesBlankDraft(t *testing.T) {
	f, _, _ := newFleet(t, &fakeAPI{})
	if err := f.LoadFleet(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	d := f.Draft()
	if f.ActiveIndex() != NewDraftIndex || d.ThemeColor != models.DefaultThemeColor || !d.IsPublic || d.HasPublicURL() {
		t.Fatalf("expected a blank draft, got %d %+v", f.ActiveIndex(), d)
	}
}

func TestLoadFleetUnauthorizedClearsSession(t *testing.T) {
	api := &fakeAPI{profilesErr: []error{statusErr(401, "Token is not valid")}}
	f, _, session := newFleet(t, api)

	err := f.LoadFleet(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if session.State().Authenticated() {
		t.Fatal("expected the session to be cleared")
	}
}

func TestSwitchProfileIsLocal(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{profiles: [][]models.VehicleProfile{{car("p1", "u1", "Supra"), car("p2", "u2", "GTR")}}}
	f, store, _ := newFleet(t, api)
	f.LoadFleet(ctx)
	f.AttachImage(ImageCar, models.PendingFile{Name: "a.png", Data: []byte("x")})
	calls := api.profilesCalls

	if err := f.SwitchProfile(ctx, 1); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if api.profilesCalls != calls {
		t.Fatal("switching must not refetch")
	}
	if f.Draft().UniqueID != "u2" || len(f.Pending()) != 0 {
		t.Fatalf("unexpected draft %q, pending %v", f.Draft().UniqueID, f.Pending())
	}
	if last, _, _ := store.Get(ctx, storage.KeyLastProfileID); last != "u2" {
		t.Fatalf("expected last profile u2, got %q", last)
	}
	if err := f.SwitchProfile(ctx, 5); !errors.Is(err, ErrProfileIndex) {
		t.Fatalf("expected ErrProfileIndex, got %v", err)
	}
}

func TestAddNewCarResetsDraft(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{profiles: [][]models.VehicleProfile{{car("p1", "u1", "Supra")}}}
	f, _, _ := newFleet(t, api)
	f.LoadFleet(ctx)
	f.AttachImage(ImageProfile, models.PendingFile{Name: "me.png"})

	f.AddNewCar()
	if f.ActiveIndex() != NewDraftIndex || f.Draft().CarName != "" || f.Draft().ID != "" || len(f.Pending()) != 0 {
		t.Fatalf("expected a blank draft, got %+v", f.Draft())
	}
	if len(f.Profiles()) != 1 {
		t.Fatal("the fetched fleet must be kept")
	}
}

func TestAddNewCarThenSwitchBackRestoresProfile(t *testing.T) {
	ctx := context.Background()
	saved := car("p1", "u1", "Supra")
	saved.Details = models.CarDetails{Specs: models.Specs{HP: "320", Engine: "2JZ"}, YoutubeLink: "https://youtu.be/x"}
	saved.City = "Osaka"
	api := &fakeAPI{profiles: [][]models.VehicleProfile{{saved, car("p2", "u2", "GTR")}}}
	f, _, _ := newFleet(t, api)
	f.LoadFleet(ctx)

	f.AddNewCar()
	for name, value := range map[string]string{"carName": "LEAK", "city": "Nowhere", "specs.hp": "999", "specs.engine": "V8"} {
		if err := f.UpdateField(name, value); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if err := f.SwitchProfile(ctx, 0); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if got := f.Draft(); !reflect.DeepEqual(got, saved) {
		t.Fatalf("expected %+v, got %+v", saved, got)
	}
	if got := f.Profiles()[0]; !reflect.DeepEqual(got, saved) {
		t.Fatalf("the fetched profile changed: %+v", got)
	}
}

func TestLoadFleetRefetchesEveryTime(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{profiles: [][]models.VehicleProfile{
		{car("p1", "u1", "Supra")},
		{car("p1", "u1", "Supra"), car("p2", "u2", "GTR")},
	}}
	f, _, _ := newFleet(t, api)

	if err := f.LoadFleet(ctx); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := f.LoadFleet(ctx); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if api.profilesCalls != 2 || len(f.Profiles()) != 2 {
		t.Fatalf("expected the second fetch to be used, got %d calls and %d profiles", api.profilesCalls, len(f.Profiles()))
	}
	if f.Draft().UniqueID != "u1" {
		t.Fatalf("expected the first profile to stay selected, got %q", f.Draft().UniqueID)
	}
}

func TestUpdateField(t *testing.T) {
	f, _, _ := newFleet(t, &fakeAPI{})

	if err := f.UpdateField("carName", "Supra"); err != nil {
		t.Fatalf("carName: %v", err)
	}
	if err := f.UpdateField("showPhone", "false"); err != nil {
		t.Fatalf("showPhone: %v", err)
	}
	if err := f.UpdateField("specs.hp", "320"); err != nil {
		t.Fatalf("specs.hp: %v", err)
	}
	d := f.Draft()
	c, _ := d.Car()
	if d.CarName != "Supra" || d.ShowPhone || c.Specs.HP != "320" {
		t.Fatalf("unexpected draft %+v", d)
	}

	if err := f.UpdateField("bloodGroup", "Z+"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if err := f.UpdateField("isPublic", "maybe"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if err := f.UpdateField("__v", "1"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	f.UpdateField("profileType", "business")
	f.UpdateField("workDetails", "Detailing studio")
	if err := f.UpdateField("specs.hp", "1"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected specs to be refused on a business profile, got %v", err)
	}
	f.UpdateField("profileType", "portfolio")
	if work, _ := f.Draft().Work(); work != "Detailing studio" {
		t.Fatalf("expected work details to carry over, got %q", work)
	}
}

func TestSubmitCreatesAndReselects(t *testing.T) {
	ctx := context.Background()
	saved := car("p9", "u9", "Civic")
	api := &fakeAPI{
		profiles: [][]models.VehicleProfile{nil, {car("p1", "u1", "Supra"), saved}},
		saveRes:  &saved,
	}
	f, store, _ := newFleet(t, api)
	f.LoadFleet(ctx)
	f.UpdateField("carName", "Civic")
	f.AttachImage(ImageCar, models.PendingFile{Name: "civic.jpg", ContentType: "image/jpeg", Data: []byte("jpg")})

	got, err := f.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.UniqueID != "u9" || f.ActiveIndex() != 1 {
		t.Fatalf("expected the saved profile at index 1, got %q at %d", got.UniqueID, f.ActiveIndex())
	}
	form := api.forms[0]
	if _, ok := formValue(form, "id"); ok {
		t.Fatal("a new profile must not send an id")
	}
	if v, _ := formValue(form, "carName"); v != "Civic" {
		t.Fatalf("expected carName Civic, got %q", v)
	}
	if len(form.Files) != 1 || form.Files[0].Field != "carImage" {
		t.Fatalf("expected the car image to be uploaded, got %+v", form.Files)
	}
	if len(f.Pending()) != 0 {
		t.Fatal("expected pending files to be cleared")
	}
	if last, _, _ := store.Get(ctx, storage.KeyLastProfileID); last != "u9" {
		t.Fatalf("expected last profile u9, got %q", last)
	}
}

func TestSubmitUpdateSendsID(t *testing.T) {
	ctx := context.Background()
	existing := car("p1", "u1", "Supra")
	api := &fakeAPI{profiles: [][]models.VehicleProfile{{existing}}, saveRes: &existing}
	f, _, _ := newFleet(t, api)
	f.LoadFleet(ctx)

	if _, err := f.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id, ok := formValue(api.forms[0], "id"); !ok || id != "p1" {
		t.Fatalf("expected id p1, got %q", id)
	}
	if uid, _ := formValue(api.forms[0], "uniqueId"); uid != "u1" {
		t.Fatalf("expected uniqueId u1, got %q", uid)
	}
}

func TestSubmitFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		profiles: [][]models.VehicleProfile{{car("p1", "u1", "Supra"), car("p2", "u2", "GTR")}},
		saveErr:  statusErr(500, "Server Error"),
	}
	f, _, session := newFleet(t, api)
	f.LoadFleet(ctx)
	f.SwitchProfile(ctx, 1)
	f.UpdateField("city", "Osaka")
	f.AttachImage(ImageQrLogo, models.PendingFile{Name: "logo.png"})

	if _, err := f.Submit(ctx); err == nil {
		t.Fatal("expected an error")
	}
	if f.ActiveIndex() != 1 || f.Draft().City != "Osaka" || len(f.Pending()) != 1 || len(f.Profiles()) != 2 {
		t.Fatalf("expected state to be untouched, got index %d draft %+v", f.ActiveIndex(), f.Draft())
	}
	if f.Saving() {
		t.Fatal("expected the in-flight flag to be released")
	}
	if !session.State().Authenticated() {
		t.Fatal("a server error must not end the session")
	}
}

func TestSubmitUnauthorizedClearsSession(t *testing.T) {
	api := &fakeAPI{saveErr: statusErr(401, "Token is not valid")}
	f, _, session := newFleet(t, api)

	if _, err := f.Submit(context.Background()); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if session.State().Authenticated() {
		t.Fatal("expected the session to be cleared")
	}
}

func TestSubmitRefetchFailureKeepsSavedIdentity(t *testing.T) {
	ctx := context.Background()
	saved := car("p9", "u9", "Civic")
	api := &fakeAPI{
		profilesErr: []error{nil, statusErr(503, "")},
		saveRes:     &saved,
	}
	f, _, _ := newFleet(t, api)
	f.LoadFleet(ctx)
	f.AttachImage(ImageCar, models.PendingFile{Name: "civic.jpg"})

	if _, err := f.Submit(ctx); err == nil {
		t.Fatal("expected the refetch error")
	}
	d := f.Draft()
	if d.ID != "p9" || d.UniqueID != "u9" || len(f.Pending()) != 0 {
		t.Fatalf("expected the draft to adopt the saved identity, got %+v", d)
	}
}

func TestSubmitWhileSavingIsBusy(t *testing.T) {
	ctx := context.Background()
	saved := car("p1", "u1", "Supra")
	api := &fakeAPI{saveRes: &saved, saveBlock: make(chan struct{}), profiles: [][]models.VehicleProfile{{saved}}}
	f, _, _ := newFleet(t, api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.Submit(ctx)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for !f.Saving() {
		if time.Now().After(deadline) {
			t.Fatal("first submit never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := f.Submit(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(api.saveBlock)
	wg.Wait()
	if len(api.forms) != 1 {
		t.Fatalf("expected exactly one save, got %d", len(api.forms))
	}
}

func TestPreviewsPreferPendingFiles(t *testing.T) {
	ctx := context.Background()
	p := car("p1", "u1", "Supra")
	p.CarImage = models.ParseImage("uploads/supra.png")
	p.ProfileImage = models.ParseImage("https://cdn.test/me.png")
	f, _, _ := newFleet(t, &fakeAPI{profiles: [][]models.VehicleProfile{{p}}})
	f.LoadFleet(ctx)

	previews := f.Previews()
	if previews[ImageCar] != "http://api.test/uploads/supra.png" || previews[ImageProfile] != "https://cdn.test/me.png" {
		t.Fatalf("unexpected previews %v", previews)
	}
	if _, ok := previews[ImageQrLogo]; ok {
		t.Fatal("expected no preview for an empty image")
	}

	f.AttachImage(ImageCar, models.PendingFile{Name: "new.png", ContentType: "image/png", Data: []byte("hi")})
	if got := f.Previews()[ImageCar]; got != "data:image/png;base64,aGk=" {
		t.Fatalf("expected the pending file to win, got %q", got)
	}
	if err := f.AttachImage("coverImage", models.PendingFile{}); !errors.Is(err, ErrImageField) {
		t.Fatalf("expected ErrImageField, got %v", err)
	}
}
