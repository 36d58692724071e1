package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

type fakeSettingsRepo struct {
	values   map[string][]byte
	getErr   error
	upserted map[string][]byte
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{
		values:   map[string][]byte{},
		upserted: map[string][]byte{},
	}
}

func (f *fakeSettingsRepo) Get(_ context.Context, companyID, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	value, ok := f.values[companyID+"/"+key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return value, nil
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, companyID, key string, value []byte) error {
	f.upserted[companyID+"/"+key] = value
	return nil
}

func (f *fakeSettingsRepo) ListByCompany(context.Context, string) ([]domain.SystemSetting, error) {
	return nil, nil
}

func TestEventEnabledDefaultsToTrueWhenSettingAbsent(t *testing.T) {
	svc := NewSettingsService(newFakeSettingsRepo(), nil, zap.NewNop())

	assert.True(t, svc.EventEnabled(context.Background(), "company-1", events.EventTicketCreated))
}

func TestEventEnabledDefaultsToTrueOnReadFailure(t *testing.T) {
	repo := newFakeSettingsRepo()
	repo.getErr = assert.AnError
	svc := NewSettingsService(repo, nil, zap.NewNop())

	assert.True(t, svc.EventEnabled(context.Background(), "company-1", events.EventTicketCreated))
}

func TestEventEnabledDefaultsToTrueOnMalformedToggleMap(t *testing.T) {
	repo := newFakeSettingsRepo()
	repo.values["company-1/"+domain.SettingKeyEventsToN8N] = []byte(`"not a map"`)
	svc := NewSettingsService(repo, nil, zap.NewNop())

	assert.True(t, svc.EventEnabled(context.Background(), "company-1", events.EventTicketCreated))
}

func TestEventEnabledReadsToggleMap(t *testing.T) {
	repo := newFakeSettingsRepo()
	repo.values["company-1/"+domain.SettingKeyEventsToN8N] = []byte(
		`{"ticket_created": false, "message_created": true}`)
	svc := NewSettingsService(repo, nil, zap.NewNop())

	assert.False(t, svc.EventEnabled(context.Background(), "company-1", events.EventTicketCreated))
	assert.True(t, svc.EventEnabled(context.Background(), "company-1", events.EventMessageCreated))
	// Event types absent from the map stay enabled.
	assert.True(t, svc.EventEnabled(context.Background(), "company-1", events.EventTicketAssigned))
}

func TestSetRejectsInvalidJSON(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo, nil, zap.NewNop())

	err := svc.Set(context.Background(), "company-1", "sla_config", []byte(`{broken`))
	require.Error(t, err)
	assert.Empty(t, repo.upserted)
}

func TestSetStoresValidJSON(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo, nil, zap.NewNop())

	err := svc.Set(context.Background(), "company-1", "sla_config", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(repo.upserted["company-1/sla_config"]))
}

func TestToggleKeyMapsDotsToUnderscores(t *testing.T) {
	assert.Equal(t, "ticket_created", toggleKey(events.EventTicketCreated))
	assert.Equal(t, "message_created", toggleKey(events.EventMessageCreated))
}
