package service

import (
	"context"
	"sync"

	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/logger"
	"scanmyride/pkg/models"
)

type AdminAPI interface {
	AdminUsers(ctx context.Context) (*models.AdminSummary, error)
}

// AdminView loads the admin aggregate once. It has no mutations.
type AdminView struct {
	api AdminAPI
	log logger.ILogger

	mu      sync.Mutex
	state   ViewState
	summary *models.AdminSummary
	message string
}

func NewAdminView(api AdminAPI, log logger.ILogger) *AdminView {
	return &AdminView{api: api, log: log}
}

func (v *AdminView) Load(ctx context.Context) error {
	summary, err := v.api.AdminUsers(ctx)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state = StateError
		v.message = apiclient.Message(err, MsgAdminFallback)
		v.log.Warning("admin summary unavailable", logger.Error(err))
		return err
	}
	v.state = StateSuccess
	v.summary = summary
	return nil
}

func (v *AdminView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *AdminView) Summary() *models.AdminSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.summary
}

func (v *AdminView) Message() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.message
}
