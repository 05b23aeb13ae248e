package installations

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCapabilityToken(expiresIn time.Duration) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString(
		[]byte(fmt.Sprintf(`{"exp":%d}`, time.Now().Add(expiresIn).Unix())))
	return header + "." + payload + ".c2ln"
}

func fakeServices(capToken string) *Services {
	return &Services{
		NumInst:      "12345",
		Alias:        gofakeit.Company(),
		Status:       "E",
		Panel:        "SDVFAST",
		SIM:          gofakeit.Numerify("##########"),
		Capabilities: capToken,
		Services: []Service{
			{IDService: 11, Active: true, Visible: true, Request: "ARM"},
			{IDService: 31, Active: true, Visible: true, Request: "EST"},
		},
	}
}

func TestMemoryCache_MissWhenEmpty(t *testing.T) {
	c := NewMemoryCache(0)

	_, err := c.Get(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestMemoryCache_PutThenGet(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()
	svc := fakeServices(fakeCapabilityToken(time.Hour))

	require.NoError(t, c.Put(ctx, "12345", svc))

	got, err := c.Get(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, svc.Panel, got.Panel)
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestMemoryCache_ExpiresAfterTTL(t *testing.T) {
	c := NewMemoryCache(540 * time.Second)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "12345", fakeServices(fakeCapabilityToken(time.Hour))))

	start := time.Now()
	c.now = func() time.Time { return start.Add(539 * time.Second) }
	_, err := c.Get(ctx, "12345")
	require.NoError(t, err)

	c.now = func() time.Time { return start.Add(541 * time.Second) }
	_, err = c.Get(ctx, "12345")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestMemoryCache_ExpiredCapabilityTokenEvicts(t *testing.T) {
	// Entry is within TTL but its capability token already expired, so it is
	// useless for panel calls and must not be served.
	c := NewMemoryCache(0)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "12345", fakeServices(fakeCapabilityToken(-time.Minute))))

	_, err := c.Get(ctx, "12345")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestMemoryCache_EmptyCapabilityTokenEvicts(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "12345", fakeServices("")))

	_, err := c.Get(ctx, "12345")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_InvalidateAll(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "12345", fakeServices(fakeCapabilityToken(time.Hour))))
	require.NoError(t, c.Put(ctx, "67890", fakeServices(fakeCapabilityToken(time.Hour))))

	require.NoError(t, c.InvalidateAll(ctx))

	_, err := c.Get(ctx, "12345")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "67890")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, int64(2), c.Stats().Evictions)
}

func TestMemoryCache_SetTTL(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "12345", fakeServices(fakeCapabilityToken(time.Hour))))

	start := time.Now()
	c.now = func() time.Time { return start.Add(10 * time.Second) }

	c.SetTTL(5 * time.Second)
	_, err := c.Get(ctx, "12345")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Stats(t *testing.T) {
	c := NewMemoryCache(540 * time.Second)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "12345", fakeServices(fakeCapabilityToken(time.Hour))))
	require.NoError(t, c.Put(ctx, "67890", fakeServices(fakeCapabilityToken(-time.Minute))))

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 540*time.Second, stats.TTL)
	require.Len(t, stats.Entries, 2)

	valid := map[string]bool{}
	for _, e := range stats.Entries {
		valid[e.InstallationID] = e.Valid
	}
	assert.True(t, valid["12345"])
	assert.False(t, valid["67890"], "entry with expired capability token is not valid")
}

func TestMemoryCache_Invalidate(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "12345", fakeServices(fakeCapabilityToken(time.Hour))))

	require.NoError(t, c.Invalidate(ctx, "12345"))

	_, err := c.Get(ctx, "12345")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
