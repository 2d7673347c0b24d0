package idola

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuthKey(t *testing.T) {
	require.Equal(t, "0ce84d8d01f2c7b6e0882b784429c54d280ea2d9", AuthKey("abc", "def"))
	require.Equal(t, "cf292a9907f0e6fec965f1564e5ee410a32af4ea", AuthKey(testTokenKey, testSessionKey))
	require.Equal(t, AuthKey("abc", "def"), AuthKey("abc", "def"))
	require.NotEqual(t, AuthKey("abc", "def"), AuthKey("abc", "deg"))
}

func TestStartHandshake(t *testing.T) {
	f := newFakeUpstream(t)
	client := newTestClient(t, f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := client.LatestEventID(ctx, KindArena)
	require.ErrorIs(t, err, ErrNotLoggedIn)
	require.True(t, NeedsRelogin(err))

	err = client.Start(ctx)
	require.Nil(t, err)

	session := client.Session()
	require.Equal(t, StateLoggedIn, session.State)
	require.Equal(t, "res-1", session.ResourceVersion)
	require.Equal(t, testSessionKey, session.SessionKey)
	require.Equal(t, AuthKey(testTokenKey, testSessionKey), session.AuthKey)
	require.Equal(t, FormatAppVersion("1.0.0", testSecret), session.AppVersion)
	require.Equal(t, "rk-3", session.RetransKey)

	eventId, err := client.LatestEventID(ctx, KindArena)
	require.Nil(t, err)
	require.Equal(t, int64(11), eventId)
	require.Equal(t, "rk-4", client.Session().RetransKey)
}

func TestStartRejectsStaleVersion(t *testing.T) {
	f := newFakeUpstream(t)
	client := newTestClient(t, f, nil)
	client.versions = StaticVersion{Version: "0.9.0", Secret: testSecret}

	err := client.Start(context.Background())
	require.NotNil(t, err)

	var statusErr StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, 426, statusErr.Code)
	require.Equal(t, StateUninitialized, client.Session().State)
}

func TestSessionInvalidation(t *testing.T) {
	f := newFakeUpstream(t)
	client := newTestClient(t, f, nil)

	ctx := context.Background()
	require.Nil(t, client.Start(ctx))

	f.mutex.Lock()
	f.rejectNext = true
	f.mutex.Unlock()

	_, err := client.LatestEventID(ctx, KindRaidSuppression)
	require.ErrorIs(t, err, ErrSessionInvalid)
	require.Equal(t, StateUninitialized, client.Session().State)

	_, err = client.LatestEventID(ctx, KindRaidSuppression)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	require.Nil(t, client.Start(ctx))
	eventId, err := client.LatestEventID(ctx, KindRaidSuppression)
	require.Nil(t, err)
	require.Equal(t, int64(22), eventId)
}

func TestConcurrentCallsAreSerialized(t *testing.T) {
	f := newFakeUpstream(t)
	f.pages[KindArena][0] = rows(1, 20)
	client := newTestClient(t, f, nil)

	ctx := context.Background()
	require.Nil(t, client.Start(ctx))

	wg := sync.WaitGroup{}
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.FetchRankingPage(ctx, KindArena, 11, 0)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.Nil(t, err)
	}
	require.Equal(t, 16, f.callCount("/ant/offsetranking"))
}
