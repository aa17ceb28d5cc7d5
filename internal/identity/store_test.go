package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jainjy/servo-sub017/internal/domain"
	"github.com/jainjy/servo-sub017/internal/identity"
)

func backends(t *testing.T) map[string]identity.Backend {
	t.Helper()
	mr := miniredis.RunT(t)
	rb := identity.NewRedisBackend(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(func() { _ = rb.Close() })
	require.NoError(t, rb.Ping(context.Background()))
	return map[string]identity.Backend{
		"memory": identity.NewMemoryBackend(),
		"redis":  rb,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := identity.ForSession(b, "sid-1")

			id, err := s.Load(ctx)
			require.NoError(t, err)
			assert.False(t, id.Authenticated())

			want := domain.StoredIdentity{Token: "tok", Email: "a@b.com", FirstName: "Marie", LastName: "Curie"}
			require.NoError(t, s.SignIn(ctx, want))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			other, err := identity.ForSession(b, "sid-2").Load(ctx)
			require.NoError(t, err)
			assert.False(t, other.Authenticated(), "sessions must not share identity")

			want.Phone = "0692000000"
			require.NoError(t, s.SaveProfile(ctx, want))
			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "0692000000", got.Phone)
			assert.Equal(t, "tok", got.Token)

			require.NoError(t, s.SignOut(ctx))
			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, domain.StoredIdentity{}, got)
		})
	}
}

func TestLoadRejectsCorruptUserData(t *testing.T) {
	ctx := context.Background()
	b := identity.NewMemoryBackend()
	require.NoError(t, b.Session("sid").Set(ctx, domain.KeyUserData, "{not json"))

	_, err := identity.ForSession(b, "sid").Load(ctx)
	assert.Error(t, err)
}

func TestRedisKeysAreNamespaced(t *testing.T) {
	mr := miniredis.RunT(t)
	rb := identity.NewRedisBackend(mr.Addr(), "", 0, 0)
	defer rb.Close()

	require.NoError(t, rb.Session("abc").Set(context.Background(), domain.KeyAuthToken, "tok"))
	v, err := mr.Get("servo:session:abc:auth-token")
	require.NoError(t, err)
	assert.Equal(t, "tok", v)
}
