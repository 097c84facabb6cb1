package redis

import (
	"testing"

	"github.com/campuspool/campuspool-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilders(t *testing.T) {
	c := &Client{}

	assert.Equal(t, "cp:rate_limit:login", c.RateLimitKey("login"))
	assert.Equal(t, "cp:session:access:abc", c.AccessSessionKey("abc"))
}

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "cp:session:access", c.buildKey("session", "", "access"))
}

func TestOptionsFromConfigRequiresURLOrAddress(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 5})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 5, opts.PoolSize)
}
