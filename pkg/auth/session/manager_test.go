package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "cp:session:access:" + accessID
}

func newTestManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}, store
}

func TestGenerateStoresToken(t *testing.T) {
	m, store := newTestManager()

	token, err := m.Generate(context.Background(), "access-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, store.values["cp:session:access:access-1"])
}

func TestRotateIssuesNewSessionAndDropsOld(t *testing.T) {
	m, store := newTestManager()

	token, err := m.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	newID, newToken, err := m.Rotate(context.Background(), "access-1", token)
	require.NoError(t, err)
	assert.NotEmpty(t, newID)
	assert.NotEqual(t, token, newToken)
	assert.NotContains(t, store.values, "cp:session:access:access-1")
	assert.Equal(t, newToken, store.values["cp:session:access:"+newID])
}

func TestRotateRejectsWrongToken(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	_, _, err = m.Rotate(context.Background(), "access-1", "not-the-token")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRotateRejectsUnknownSession(t *testing.T) {
	m, _ := newTestManager()

	_, _, err := m.Rotate(context.Background(), "missing", "whatever")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRevokeAndHasSession(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	ok, err := m.HasSession(context.Background(), "access-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Revoke(context.Background(), "access-1"))

	ok, err = m.HasSession(context.Background(), "access-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
