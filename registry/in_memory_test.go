package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tradefleet/core"
	"github.com/hupe1980/tradefleet/internal/testutil"
)

// Interface compliance (compile-time assertion)
var _ core.SessionRegistry = (*InMemoryRegistry)(nil)

func creds(accountID string) core.Credentials {
	return core.Credentials{
		AccountID:      accountID,
		GuardToken:     "guard",
		OAuthToken:     "oauth",
		SharedSecret:   "shared",
		IdentitySecret: "identity",
	}
}

func TestLogin_Success(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.OpenSessionFn = func(context.Context, string, string) (core.SessionHandle, error) {
		return &testutil.FakeHandle{Account: "bot-1"}, nil
	}

	r := NewInMemoryRegistry(transport)
	require.NoError(t, r.Login(context.Background(), creds("bot-1")))

	sess, err := r.Get("bot-1")
	require.NoError(t, err)
	assert.Equal(t, "bot-1", sess.AccountID)
	assert.Equal(t, "identity", sess.IdentitySecret)
	assert.NotNil(t, sess.Handle)
}

func TestLogin_AuthFailureInsertsNothing(t *testing.T) {
	handle := &testutil.FakeHandle{Account: "bot-1"}
	transport := testutil.NewFakeTransport()
	transport.OpenSessionFn = func(context.Context, string, string) (core.SessionHandle, error) {
		// Partially opened resource returned alongside the error.
		return handle, errors.New("bad oauth token")
	}

	r := NewInMemoryRegistry(transport)
	err := r.Login(context.Background(), creds("bot-1"))

	var authErr *core.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "bot-1", authErr.AccountID)
	assert.True(t, handle.Closed(), "partially opened handle must be released")

	_, err = r.Get("bot-1")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestLogin_ReplaceClosesPriorSession(t *testing.T) {
	first := &testutil.FakeHandle{Account: "bot-1"}
	second := &testutil.FakeHandle{Account: "bot-1"}
	handles := []core.SessionHandle{first, second}

	transport := testutil.NewFakeTransport()
	transport.OpenSessionFn = func(context.Context, string, string) (core.SessionHandle, error) {
		h := handles[0]
		handles = handles[1:]
		return h, nil
	}

	r := NewInMemoryRegistry(transport)
	require.NoError(t, r.Login(context.Background(), creds("bot-1")))
	require.NoError(t, r.Login(context.Background(), creds("bot-1")))

	assert.True(t, first.Closed())
	assert.False(t, second.Closed())

	sess, err := r.Get("bot-1")
	require.NoError(t, err)
	assert.Same(t, second, sess.Handle)
}

func TestLogoff(t *testing.T) {
	handle := &testutil.FakeHandle{Account: "bot-1"}
	transport := testutil.NewFakeTransport()
	transport.OpenSessionFn = func(context.Context, string, string) (core.SessionHandle, error) {
		return handle, nil
	}

	r := NewInMemoryRegistry(transport)
	require.NoError(t, r.Login(context.Background(), creds("bot-1")))
	require.NoError(t, r.Logoff(context.Background(), "bot-1"))

	assert.True(t, handle.Closed())
	_, err := r.Get("bot-1")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	// Logging off again is a no-op.
	require.NoError(t, r.Logoff(context.Background(), "bot-1"))
}

func TestGet_NotFound(t *testing.T) {
	r := NewInMemoryRegistry(testutil.NewFakeTransport())
	_, err := r.Get("ghost")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestWithAccount_NoSession(t *testing.T) {
	r := NewInMemoryRegistry(testutil.NewFakeTransport())
	err := r.WithAccount(context.Background(), "ghost", func(*core.BotSession) error {
		t.Fatal("fn must not run without a session")
		return nil
	})
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestWithAccount_SerializesPerAccount(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.OpenSessionFn = func(context.Context, string, string) (core.SessionHandle, error) {
		return &testutil.FakeHandle{Account: "bot-1"}, nil
	}

	r := NewInMemoryRegistry(transport)
	require.NoError(t, r.Login(context.Background(), creds("bot-1")))

	var mu sync.Mutex
	var windows []testutil.CallWindow

	run := func(name string) {
		_ = r.WithAccount(context.Background(), "bot-1", func(*core.BotSession) error {
			start := time.Now()
			time.Sleep(20 * time.Millisecond)
			mu.Lock()
			windows = append(windows, testutil.CallWindow{Name: name, Start: start, End: time.Now()})
			mu.Unlock()
			return nil
		})
	}

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			run(name)
		}(name)
	}
	wg.Wait()

	require.Len(t, windows, 3)
	for i := 0; i < len(windows); i++ {
		for j := i + 1; j < len(windows); j++ {
			assert.Falsef(t, windows[i].Overlaps(windows[j]),
				"sections %s and %s overlap", windows[i].Name, windows[j].Name)
		}
	}
}

func TestWithAccount_CancelledWhileWaiting(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.OpenSessionFn = func(context.Context, string, string) (core.SessionHandle, error) {
		return &testutil.FakeHandle{Account: "bot-1"}, nil
	}

	r := NewInMemoryRegistry(transport)
	require.NoError(t, r.Login(context.Background(), creds("bot-1")))

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = r.WithAccount(context.Background(), "bot-1", func(*core.BotSession) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.WithAccount(ctx, "bot-1", func(*core.BotSession) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestAccountsAreIndependent(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.OpenSessionFn = func(context.Context, string, string) (core.SessionHandle, error) {
		return &testutil.FakeHandle{}, nil
	}

	r := NewInMemoryRegistry(transport)
	require.NoError(t, r.Login(context.Background(), creds("bot-1")))
	require.NoError(t, r.Login(context.Background(), creds("bot-2")))

	// Holding bot-1 must not block bot-2.
	release := make(chan struct{})
	holding := make(chan struct{})
	go func() {
		_ = r.WithAccount(context.Background(), "bot-1", func(*core.BotSession) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	done := make(chan error, 1)
	go func() {
		done <- r.WithAccount(context.Background(), "bot-2", func(*core.BotSession) error { return nil })
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bot-2 section blocked behind bot-1")
	}
	close(release)
}
