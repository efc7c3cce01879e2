// Package connection defines the transport contract shared by the
// WebSocket engines: the Connection interface, the wire envelope types,
// and the request correlator that pairs each asynchronous reply with the
// caller that issued it.
package connection

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/romaninsh/surreal.go/internal/codec"
	"github.com/romaninsh/surreal.go/pkg/constants"
	"github.com/romaninsh/surreal.go/pkg/logger"
)

// Connection is one physical transport plus its background receive loop.
type Connection interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error

	// Send issues one RPC call and blocks until its correlated reply
	// arrives, the context ends, or the connection dies.
	Send(ctx context.Context, method string, params ...any) (*RPCResponse, error)

	// IsClosed reports whether the connection is disconnected, enabling
	// the consumer to trigger a reconnect.
	IsClosed() bool

	// LiveNotifications returns the channel carrying server-pushed
	// events for the given live query id.
	LiveNotifications(liveQueryID string) (chan Notification, error)

	Codec() codec.Codec
}

// Config carries everything a transport needs to dial.
type Config struct {
	// URL is the endpoint as given by the caller.
	URL url.URL
	// BaseURL is scheme://host with the scheme already rewritten to
	// ws/wss; the transport appends /rpc.
	BaseURL string
	Codec   codec.Codec
	Logger  logger.Logger
	// Timeout bounds each individual RPC call. Zero disables the
	// built-in deadline; callers then control it via context.
	Timeout time.Duration
}

// NewConfig builds a Config from an endpoint URL, rewriting http(s)
// schemes to their WebSocket counterparts.
func NewConfig(u *url.URL) *Config {
	scheme := u.Scheme
	switch scheme {
	case constants.HTTPScheme:
		scheme = constants.WebsocketScheme
	case constants.HTTPSecureScheme:
		scheme = constants.SecureWebsocketScheme
	}

	return &Config{
		URL:     *u,
		BaseURL: fmt.Sprintf("%s://%s", scheme, u.Host),
		Timeout: constants.DefaultWSTimeout * time.Second,
	}
}

// notificationBufferSize is how many undelivered live query events may
// queue per channel before further events are dropped.
const notificationBufferSize = 64

// Toolkit is the state shared by every transport implementation: the
// dial target, the wire codec, the correlator and the live notification
// routing table. Embedded by the concrete engines.
type Toolkit struct {
	BaseURL    string
	WireCodec  codec.Codec
	Logger     logger.Logger
	Correlator *Correlator

	notificationChannels     map[string]chan Notification
	notificationChannelsLock sync.RWMutex
}

func NewToolkit(conf *Config) Toolkit {
	log := conf.Logger
	if log == nil {
		log = logger.Discard()
	}
	return Toolkit{
		BaseURL:              conf.BaseURL,
		WireCodec:            conf.Codec,
		Logger:               log,
		Correlator:           NewCorrelator(),
		notificationChannels: make(map[string]chan Notification),
	}
}

func (tk *Toolkit) Codec() codec.Codec {
	return tk.WireCodec
}

func (tk *Toolkit) PreConnectionChecks() error {
	if tk.BaseURL == "" {
		return constants.ErrNoBaseURL
	}
	if tk.WireCodec == nil {
		return constants.ErrNoCodec
	}
	return nil
}

func (tk *Toolkit) LiveNotifications(liveQueryID string) (chan Notification, error) {
	tk.notificationChannelsLock.Lock()
	defer tk.notificationChannelsLock.Unlock()

	if _, ok := tk.notificationChannels[liveQueryID]; ok {
		return nil, fmt.Errorf("%w: %v", constants.ErrIDInUse, liveQueryID)
	}

	ch := make(chan Notification, notificationBufferSize)
	tk.notificationChannels[liveQueryID] = ch
	return ch, nil
}

func (tk *Toolkit) GetNotificationChannel(id string) (chan Notification, bool) {
	tk.notificationChannelsLock.RLock()
	defer tk.notificationChannelsLock.RUnlock()
	ch, ok := tk.notificationChannels[id]
	return ch, ok
}

func (tk *Toolkit) RemoveNotificationChannel(id string) {
	tk.notificationChannelsLock.Lock()
	defer tk.notificationChannelsLock.Unlock()
	delete(tk.notificationChannels, id)
}

// DispatchNotification routes an id-less frame's payload to the live
// query channel it belongs to. Unroutable notifications are dropped with
// a debug log; they are not an error.
func (tk *Toolkit) DispatchNotification(result []byte) {
	if result == nil {
		tk.Logger.Debug("dropping frame with neither id nor result")
		return
	}

	var notification Notification
	if err := tk.WireCodec.Unmarshal(result, &notification); err != nil {
		tk.Logger.Error("error decoding notification", "error", err)
		return
	}

	if notification.ID == nil {
		tk.Logger.Debug("notification did not contain an 'id' field")
		return
	}

	ch, ok := tk.GetNotificationChannel(notification.ID.String())
	if !ok {
		tk.Logger.Debug("no channel registered for live query", "id", notification.ID.String())
		return
	}

	// The read loop must never block on a consumer that stopped reading;
	// a full buffer drops the event instead.
	select {
	case ch <- notification:
	default:
		tk.Logger.Debug("dropping live query notification, consumer is not reading", "id", notification.ID.String())
	}
}
