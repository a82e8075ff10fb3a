package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scanmyride/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, logger.NewNop())
}

func TestClientAttachesToken(t *testing.T) {
	var gotToken, gotContentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(AuthHeader)
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"id":"u1","name":"Ana","email":"ana@example.com","role":"member"}`))
	})
	c = c.WithTokens(TokenFunc(func(context.Context) (string, error) { return "tok-1", nil }))

	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotToken != "tok-1" {
		t.Fatalf("expected token tok-1, got %q", gotToken)
	}
	if gotContentType != "" {
		t.Fatalf("expected no content type on GET, got %q", gotContentType)
	}
	if user.Name != "Ana" || user.ID != "u1" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestClientWithoutTokenIsAnonymous(t *testing.T) {
	var sawHeader bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header[http.CanonicalHeaderKey(AuthHeader)]
		w.Write([]byte(`{}`))
	})
	c = c.WithTokens(TokenFunc(func(context.Context) (string, error) { return "", nil }))

	if _, err := c.PublicProfile(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawHeader {
		t.Fatal("expected no auth header for an empty token")
	}
}

func TestLoginSendsJSON(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"token":"t","user":{"_id":"42","name":"Ana","role":"admin"}}`))
	})

	res, err := c.Login(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["email"] != "ana@example.com" || body["password"] != "secret" {
		t.Fatalf("unexpected body %v", body)
	}
	if res.Token != "t" || res.User.ID != "42" || !res.User.IsAdmin() {
		t.Fatalf("unexpected response %+v", res)
	}
}

func TestStatusErrorCarriesBackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"msg":"User already exists"}`))
	})

	_, err := c.Register(context.Background(), "Ana", "ana@example.com", "secret")
	if err == nil {
		t.Fatal("expected an error")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusBadRequest {
		t.Fatalf("expected a 400 StatusError, got %v", err)
	}
	if got := Message(err, "fallback"); got != "User already exists" {
		t.Fatalf("expected backend message, got %q", got)
	}
	if IsUnauthorized(err) {
		t.Fatal("400 is not an auth failure")
	}
}

func TestMessageFallsBack(t *testing.T) {
	if got := Message(errors.New("dial tcp: refused"), "Error fetching users"); got != "Error fetching users" {
		t.Fatalf("expected fallback, got %q", got)
	}
	err := newStatusError("GET", "/x", http.StatusForbidden, []byte(`{"errors":[{"msg":"a"},{"msg":"b"}]}`))
	if got := Message(err, "x"); got != "a; b" {
		t.Fatalf("expected joined validation messages, got %q", got)
	}
	if !IsUnauthorized(err) {
		t.Fatal("expected 403 to count as unauthorized")
	}
}

func TestPostMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("carName"); got != "Supra" {
			t.Errorf("expected carName Supra, got %q", got)
		}
		f, hdr, err := r.FormFile("carImage")
		if err != nil {
			t.Errorf("missing file: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "car.png" || string(data) != "png-bytes" {
			t.Errorf("unexpected file %s %q", hdr.Filename, data)
		}
		w.Write([]byte(`{"_id":"p1","uniqueId":"u1","carName":"Supra"}`))
	})

	form := &Form{}
	form.Add("carName", "Supra")
	form.AddFile("carImage", "car.png", "image/png", []byte("png-bytes"))
	p, err := c.SaveProfile(context.Background(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UniqueID != "u1" || p.ID != "p1" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()
	c := New(srv.URL, 50*time.Millisecond, logger.NewNop())

	_, err := c.AdminUsers(context.Background())
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Fatalf("expected a transport error, got status %d", se.Status)
	}
}
