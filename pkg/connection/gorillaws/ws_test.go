package gorillaws

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romaninsh/surreal.go/internal/fakesdb"
	"github.com/romaninsh/surreal.go/pkg/connection"
	"github.com/romaninsh/surreal.go/pkg/constants"
	"github.com/romaninsh/surreal.go/pkg/logger"
	"github.com/romaninsh/surreal.go/pkg/models"
)

func startServer(t *testing.T) *fakesdb.Server {
	t.Helper()

	srv := fakesdb.NewServer(models.CborCodec{})
	require.NoError(t, srv.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func dial(t *testing.T, srv *fakesdb.Server) *WebSocketConnection {
	t.Helper()

	u, err := url.ParseRequestURI(srv.URL())
	require.NoError(t, err)

	conf := connection.NewConfig(u)
	conf.Codec = models.CborCodec{}
	conf.Logger = logger.New(slog.NewTextHandler(os.Stdout, nil))

	ws := New(conf)
	require.NoError(t, ws.Connect(context.Background()))
	t.Cleanup(func() { _ = ws.Close(context.Background()) })
	return ws
}

func TestSendReceivesCorrelatedReply(t *testing.T) {
	srv := startServer(t)
	srv.AddStubResponse(fakesdb.StubResponse{
		Matcher: fakesdb.RequestMatcher{Method: "select"},
		Result:  []any{map[string]any{"name": "doc"}},
	})

	ws := dial(t, srv)

	rows, err := connection.Send[[]map[string]any](context.Background(), ws, "select", "person")
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Len(t, *rows, 1)
	assert.Equal(t, "doc", (*rows)[0]["name"])
}

func TestServerErrorSurfacesAsRPCError(t *testing.T) {
	srv := startServer(t)
	srv.AddStubResponse(fakesdb.StubResponse{
		Matcher: fakesdb.RequestMatcher{Method: "query"},
		Error:   &connection.RPCError{Code: -32000, Message: "table does not exist"},
	})

	ws := dial(t, srv)

	_, err := connection.Send[any](context.Background(), ws, "query", "SELECT * FROM missing")
	require.Error(t, err)

	var rpcErr *connection.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32000, rpcErr.Code)
}

func TestOutOfOrderRepliesCorrelate(t *testing.T) {
	srv := startServer(t)
	srv.AddStubResponse(fakesdb.StubResponse{
		Matcher: fakesdb.RequestMatcher{Method: "slow"},
		Result:  "slow-result",
		Delay:   200 * time.Millisecond,
	})
	srv.AddStubResponse(fakesdb.StubResponse{
		Matcher: fakesdb.RequestMatcher{Method: "fast"},
		Result:  "fast-result",
	})

	ws := dial(t, srv)

	var wg sync.WaitGroup
	wg.Add(2)

	var slowRes, fastRes *string
	var slowErr, fastErr error

	go func() {
		defer wg.Done()
		slowRes, slowErr = connection.Send[string](context.Background(), ws, "slow")
	}()
	// Give the slow request a head start so its reply arrives last.
	time.Sleep(50 * time.Millisecond)
	go func() {
		defer wg.Done()
		fastRes, fastErr = connection.Send[string](context.Background(), ws, "fast")
	}()

	wg.Wait()

	require.NoError(t, slowErr)
	require.NoError(t, fastErr)
	require.NotNil(t, slowRes)
	require.NotNil(t, fastRes)
	assert.Equal(t, "slow-result", *slowRes)
	assert.Equal(t, "fast-result", *fastRes)
}

func TestCancelledCallLeavesConnectionUsable(t *testing.T) {
	srv := startServer(t)
	srv.AddStubResponse(fakesdb.StubResponse{
		Matcher: fakesdb.RequestMatcher{Method: "slow"},
		Result:  "late",
		Delay:   300 * time.Millisecond,
	})

	ws := dial(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := ws.Send(ctx, "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrTimeout)

	// Wait for the late reply to land; it must be discarded silently.
	time.Sleep(400 * time.Millisecond)

	res, err := ws.Send(context.Background(), "ping")
	require.NoError(t, err)
	assert.Nil(t, res.Error)
	assert.False(t, ws.IsClosed())
}

func TestCloseFailsEveryPendingCall(t *testing.T) {
	srv := startServer(t)
	srv.AddStubResponse(fakesdb.StubResponse{
		Matcher: fakesdb.RequestMatcher{Method: "slow"},
		Result:  "never",
		Delay:   5 * time.Second,
	})

	ws := dial(t, srv)

	const pending = 5
	errs := make(chan error, pending)
	for i := 0; i < pending; i++ {
		go func() {
			_, err := ws.Send(context.Background(), "slow")
			errs <- err
		}()
	}

	// Let the requests reach the wire before tearing down.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, ws.Close(context.Background()))

	for i := 0; i < pending; i++ {
		select {
		case err := <-errs:
			assert.ErrorIs(t, err, constants.ErrConnectionClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("pending call was not drained on close")
		}
	}
	assert.True(t, ws.IsClosed())
}

func TestDroppedConnectionFailsPendingCalls(t *testing.T) {
	srv := startServer(t)
	srv.AddStubResponse(fakesdb.StubResponse{
		Matcher: fakesdb.RequestMatcher{Method: "slow"},
		Result:  "never",
		Delay:   5 * time.Second,
	})

	ws := dial(t, srv)

	errCh := make(chan error, 1)
	go func() {
		_, err := ws.Send(context.Background(), "slow")
		errCh <- err
	}()

	time.Sleep(100 * time.Millisecond)
	srv.DropAllConnections()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, constants.ErrConnectionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("pending call was not drained after connection drop")
	}

	require.Eventually(t, ws.IsClosed, time.Second, 10*time.Millisecond)
}

func TestSendAfterCloseFailsImmediately(t *testing.T) {
	srv := startServer(t)
	ws := dial(t, srv)

	require.NoError(t, ws.Close(context.Background()))

	_, err := ws.Send(context.Background(), "ping")
	assert.ErrorIs(t, err, constants.ErrConnectionClosed)
}

func TestLiveNotificationsAreRouted(t *testing.T) {
	srv := startServer(t)
	ws := dial(t, srv)

	id, err := uuid.NewV4()
	require.NoError(t, err)
	liveID := models.UUID{UUID: id}

	ch, err := ws.LiveNotifications(liveID.String())
	require.NoError(t, err)

	srv.PushNotification(liveID, "CREATE", map[string]any{"name": "doc"})

	select {
	case notification := <-ch:
		require.NotNil(t, notification.ID)
		assert.Equal(t, liveID.String(), notification.ID.String())
		assert.Equal(t, "CREATE", notification.Action)

		obj, ok := models.As[map[string]any](notification.Result)
		require.True(t, ok)
		assert.Equal(t, "doc", obj["name"])
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
}

func TestDuplicateLiveNotificationRegistrationFails(t *testing.T) {
	srv := startServer(t)
	ws := dial(t, srv)

	_, err := ws.LiveNotifications("lq-1")
	require.NoError(t, err)

	_, err = ws.LiveNotifications("lq-1")
	assert.ErrorIs(t, err, constants.ErrIDInUse)
}
