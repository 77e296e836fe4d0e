package bridge

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/camlight/internal/logging"
)

// DefaultConnectTimeout bounds the initial broker connection
const DefaultConnectTimeout = 10 * time.Second

// Availability payloads published to the state topic
const (
	StateOnline  = "online"
	StateOffline = "offline"
)

// Message is re-exported for handlers
type Message = mqtt.Message

// MessageHandler is the subscription callback signature
type MessageHandler = mqtt.MessageHandler

// ClientAPI is the broker surface the bridge needs.
// It lets tests drive the bridge without a live broker.
type ClientAPI interface {
	Subscribe(topic string, cb MessageHandler) error
	Publish(topic string, payload []byte, retain bool) error
	Disconnect()
}

// MQTTOptions configures a broker connection
type MQTTOptions struct {
	// Broker is a URL such as "tcp://broker:1883", "ssl://broker:8883" or "ws://broker/mqtt".
	// A bare host:port means tcp. Credentials in the URL are used unless Username is set.
	Broker   string
	ClientID string
	Username string
	Password string

	// StateTopic gets a retained StateOnline on every connect and StateOffline as last will.
	// Empty disables availability reporting.
	StateTopic string

	ConnectTimeout time.Duration
}

// MQTTClient wraps a paho client. Subscriptions are restored after a reconnect.
type MQTTClient struct {
	cli  mqtt.Client
	opts MQTTOptions
	log  *zap.Logger

	mu   sync.Mutex
	subs map[string]MessageHandler
}

// DialMQTT connects to the broker described by opts
func DialMQTT(opts MQTTOptions) (*MQTTClient, error) {
	server, user, secure, err := brokerAddress(opts.Broker)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.ClientID = "camlight-" + uuid.NewString()[:8]
	}
	if opts.Username == "" && user != nil {
		opts.Username = user.Username()
		opts.Password, _ = user.Password()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}

	c := &MQTTClient{
		opts: opts,
		log:  logging.Named("mqtt"),
		subs: make(map[string]MessageHandler),
	}

	po := mqtt.NewClientOptions()
	po.AddBroker(server)
	po.SetClientID(opts.ClientID)
	po.SetAutoReconnect(true)
	po.SetConnectTimeout(opts.ConnectTimeout)
	if opts.Username != "" {
		po.SetUsername(opts.Username)
		po.SetPassword(opts.Password)
	}
	if secure {
		po.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	if opts.StateTopic != "" {
		po.SetWill(opts.StateTopic, StateOffline, 1, true)
	}
	po.SetOnConnectHandler(func(mqtt.Client) {
		c.log.Info("MQTT connected", zap.String("broker", server), zap.String("client_id", opts.ClientID))
		go c.restore()
	})
	po.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.log.Warn("MQTT connection lost", zap.Error(err))
	})

	c.cli = mqtt.NewClient(po)
	token := c.cli.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout) {
		return nil, fmt.Errorf("connecting to %s: timed out after %s", server, opts.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", server, err)
	}
	return c, nil
}

// restore republishes availability and re-subscribes after a (re)connect
func (c *MQTTClient) restore() {
	if c.opts.StateTopic != "" {
		if err := c.Publish(c.opts.StateTopic, []byte(StateOnline), true); err != nil {
			c.log.Warn("Failed to publish availability", zap.Error(err))
		}
	}

	c.mu.Lock()
	subs := make(map[string]MessageHandler, len(c.subs))
	for topic, cb := range c.subs {
		subs[topic] = cb
	}
	c.mu.Unlock()

	for topic, cb := range subs {
		if err := c.subscribe(topic, cb); err != nil {
			c.log.Error("Failed to restore subscription", zap.String("topic", topic), zap.Error(err))
		}
	}
}

// Subscribe registers cb for topic at QoS 1
func (c *MQTTClient) Subscribe(topic string, cb MessageHandler) error {
	if err := c.subscribe(topic, cb); err != nil {
		return err
	}
	c.mu.Lock()
	c.subs[topic] = cb
	c.mu.Unlock()
	return nil
}

func (c *MQTTClient) subscribe(topic string, cb MessageHandler) error {
	t := c.cli.Subscribe(topic, 1, cb)
	if !t.WaitTimeout(c.opts.ConnectTimeout) {
		return fmt.Errorf("subscribe %s: timed out", topic)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	c.log.Info("MQTT subscribed", zap.String("topic", topic))
	return nil
}

// Publish sends payload to topic at QoS 1
func (c *MQTTClient) Publish(topic string, payload []byte, retain bool) error {
	t := c.cli.Publish(topic, 1, retain, payload)
	if !t.WaitTimeout(c.opts.ConnectTimeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Disconnect marks the bridge offline and closes the connection
func (c *MQTTClient) Disconnect() {
	if c.opts.StateTopic != "" {
		_ = c.Publish(c.opts.StateTopic, []byte(StateOffline), true)
	}
	c.cli.Disconnect(250)
	c.log.Info("MQTT disconnected")
}

// brokerAddress converts a broker URL into the paho server form
func brokerAddress(raw string) (server string, user *url.Userinfo, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, false, fmt.Errorf("mqtt broker address is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "tcp://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, false, fmt.Errorf("invalid mqtt broker %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", nil, false, fmt.Errorf("invalid mqtt broker %q: missing host", raw)
	}

	switch u.Scheme {
	case "tcp", "mqtt":
		server = "tcp://" + withPort(u, "1883")
	case "ssl", "tls", "mqtts":
		server = "ssl://" + withPort(u, "8883")
		secure = true
	case "ws", "wss":
		server = u.Scheme + "://" + u.Host + u.Path
		secure = u.Scheme == "wss"
	default:
		return "", nil, false, fmt.Errorf("unsupported mqtt broker scheme %q", u.Scheme)
	}
	return server, u.User, secure, nil
}

func withPort(u *url.URL, port string) string {
	if u.Port() != "" {
		return u.Host
	}
	return u.Host + ":" + port
}
