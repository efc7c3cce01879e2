package constants

const (
	// CloseMessageCode is the WebSocket close code sent on a clean shutdown.
	CloseMessageCode = 1000
	// DefaultWSTimeout is the default per-call timeout for RPC requests.
	DefaultWSTimeout = 30 // seconds

	OneSecondToNanoSecond = 1_000_000_000
)

var (
	WebsocketScheme       = "ws"
	SecureWebsocketScheme = "wss"
	HTTPScheme            = "http"
	HTTPSecureScheme      = "https"
)
