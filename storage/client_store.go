package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"scanmyride/pkg/models"
)

const (
	KeyToken         = "token"
	KeyUser          = "user"
	KeyLastProfileID = "lastProfileId"
)

// ClientStore is the state of one client (one chat, one browser).
type ClientStore struct {
	stg      IClientStateStorage
	clientID string
}

func NewClientStore(stg IStorage, clientID string) *ClientStore {
	return &ClientStore{stg: stg.ClientState(), clientID: clientID}
}

func (s *ClientStore) ClientID() string {
	return s.clientID
}

func (s *ClientStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.stg.Get(ctx, s.clientID, key)
}

func (s *ClientStore) Set(ctx context.Context, key, value string) error {
	return s.stg.Set(ctx, s.clientID, key, value)
}

func (s *ClientStore) Remove(ctx context.Context, keys ...string) error {
	return s.stg.Delete(ctx, s.clientID, keys...)
}

// Token reads the persisted token so that it can be used as the token source of
// the API client.
func (s *ClientStore) Token(ctx context.Context) (string, error) {
	token, _, err := s.Get(ctx, KeyToken)
	return token, err
}

func (s *ClientStore) User(ctx context.Context) (*models.User, error) {
	raw, ok, err := s.Get(ctx, KeyUser)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &user, nil
}

func (s *ClientStore) SetUser(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyUser, string(data))
}
