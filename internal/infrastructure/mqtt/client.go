package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/hearthline/hearth-core/internal/infrastructure/config"
)

const (
	// connectTimeout bounds the initial broker handshake.
	connectTimeout = 10 * time.Second

	// ackTimeout bounds every publish, subscribe, and unsubscribe ack.
	ackTimeout = 5 * time.Second

	// disconnectQuiesceMs is how long Close lets in-flight work drain.
	disconnectQuiesceMs = 1000

	keepAlive = 60 * time.Second
	maxQoS    = 2
)

// MessageHandler receives one message. Paho invokes handlers on its own
// goroutines; a returned error is logged and the message is still acked.
type MessageHandler func(topic string, payload []byte) error

// Logger is the logging surface the client needs. logging.Logger
// satisfies it.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client is a connection to the broker. It restores tracked
// subscriptions after a reconnect and keeps the retained system status
// topic current, including a broker-side LWT for unexpected drops.
//
// All methods are safe for concurrent use.
type Client struct {
	paho pahomqtt.Client
	cfg  config.MQTTConfig

	mu           sync.RWMutex
	connected    bool
	subs         map[string]subscription
	onConnect    func()
	onDisconnect func(error)
	logger       Logger
}

// Connect dials the configured broker and blocks until the connection
// is up or the attempt times out. The returned client reconnects on its
// own afterwards.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{cfg: cfg, subs: make(map[string]subscription)}

	opts := newClientOptions(cfg)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.connectionUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.connectionDown(err) })

	c.paho = pahomqtt.NewClient(opts)
	if err := wait(c.paho.Connect(), connectTimeout, ErrConnectionFailed); err != nil {
		return nil, err
	}

	// The OnConnect handler runs asynchronously; mark the client
	// connected now so it is usable as soon as Connect returns.
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	return c, nil
}

// newClientOptions translates the configuration into paho options,
// including auth, TLS, reconnect backoff, and the LWT.
func newClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second).
		SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	// The broker publishes the retained offline status itself when the
	// connection drops without a clean disconnect.
	opts.SetBinaryWill(Topics{}.SystemStatus(),
		statusPayload(cfg.Broker.ClientID, "offline", "unexpected_disconnect"), 1, true)

	return opts
}

// statusPayload renders a system status document for the retained
// status topic.
func statusPayload(clientID, status, reason string) []byte {
	doc := struct {
		Status    string `json:"status"`
		ClientID  string `json:"client_id"`
		Reason    string `json:"reason,omitempty"`
		Timestamp string `json:"timestamp"`
	}{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	payload, _ := json.Marshal(doc) //nolint:errcheck // fixed shape
	return payload
}

// connectionUp runs on every (re)connect: restore subscriptions,
// refresh the status topic, notify the callback.
func (c *Client) connectionUp() {
	c.mu.Lock()
	c.connected = true
	subs := make(map[string]subscription, len(c.subs))
	for topic, sub := range c.subs {
		subs[topic] = sub
	}
	notify := c.onConnect
	c.mu.Unlock()

	for topic, sub := range subs {
		c.paho.Subscribe(topic, sub.qos, c.dispatch(sub.handler))
	}
	c.paho.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true,
		statusPayload(c.cfg.Broker.ClientID, "online", ""))

	if notify != nil {
		notify()
	}
}

func (c *Client) connectionDown(err error) {
	c.mu.Lock()
	c.connected = false
	notify := c.onDisconnect
	c.mu.Unlock()

	if notify != nil {
		notify(err)
	}
}

// Close announces a graceful shutdown on the status topic and
// disconnects. Closing a never-connected client is a no-op.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}

	if c.IsConnected() {
		token := c.paho.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true,
			statusPayload(c.cfg.Broker.ClientID, "offline", "graceful_shutdown"))
		token.WaitTimeout(ackTimeout)
	}
	c.paho.Disconnect(disconnectQuiesceMs)

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	return nil
}

// HealthCheck reports whether the connection is currently up.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	up := c.connected
	c.mu.RUnlock()
	return up && c.paho.IsConnected()
}

// SetOnConnect registers a callback invoked on connect and reconnect.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	c.onConnect = fn
	c.mu.Unlock()
}

// SetOnDisconnect registers a callback invoked when the connection drops.
func (c *Client) SetOnDisconnect(fn func(error)) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

// SetLogger routes handler failures somewhere visible. Without one they
// are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) currentLogger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// dispatch adapts a MessageHandler for paho, containing panics and
// logging handler errors.
func (c *Client) dispatch(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if log := c.currentLogger(); log != nil {
					log.Error("message handler panicked", "topic", msg.Topic(), "panic", r)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if log := c.currentLogger(); log != nil {
				log.Warn("message handler failed", "topic", msg.Topic(), "error", err)
			}
		}
	}
}

// wait blocks on a paho token, folding timeouts and token errors into
// the given sentinel.
func wait(token pahomqtt.Token, timeout time.Duration, sentinel error) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: %w after %v", sentinel, ErrTimeout, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return nil
}

// validateTopicQoS applies the checks shared by publish and subscribe.
func validateTopicQoS(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	return nil
}
