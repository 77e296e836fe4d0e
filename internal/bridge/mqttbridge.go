package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/camlight/internal/lighting"
	"github.com/muurk/camlight/internal/logging"
	"github.com/muurk/camlight/internal/metrics"
	"github.com/muurk/camlight/internal/status"
)

// DefaultQueueSize is how many commands may wait per device
const DefaultQueueSize = 8

// Topic leaves under "<prefix>/<device>/"
const (
	TopicSet    = "set"
	TopicResult = "result"
	TopicStatus = "status"
)

// MsgQueueFull is published as the result of a command dropped because the device queue is full
const MsgQueueFull = "command queue full"

// MQTTBridge routes commands from "<prefix>/<device>/set" to registered devices.
// Each device gets one worker goroutine so its commands run in arrival order.
type MQTTBridge struct {
	client    ClientAPI
	prefix    string
	devices   *Registry
	queueSize int
	log       *zap.Logger

	mu      sync.Mutex
	queues  map[string]chan string
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// NewMQTTBridge creates a bridge publishing under prefix
func NewMQTTBridge(client ClientAPI, prefix string, devices *Registry) *MQTTBridge {
	return &MQTTBridge{
		client:    client,
		prefix:    strings.Trim(prefix, "/"),
		devices:   devices,
		queueSize: DefaultQueueSize,
		log:       logging.Named("bridge.mqtt"),
		queues:    make(map[string]chan string),
	}
}

// SetQueueSize changes the per-device queue length. Call before Start.
func (b *MQTTBridge) SetQueueSize(n int) {
	if n > 0 {
		b.queueSize = n
	}
}

// Topic returns "<prefix>/<device>/<leaf>"
func (b *MQTTBridge) Topic(device, leaf string) string {
	return b.prefix + "/" + device + "/" + leaf
}

// Start subscribes to the command topics. Commands run under ctx until Stop.
func (b *MQTTBridge) Start(ctx context.Context) error {
	b.mu.Lock()
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.mu.Unlock()

	return b.client.Subscribe(b.prefix+"/+/"+TopicSet, b.onMessage)
}

// Stop refuses new commands and waits for queued ones to finish.
// When ctx ends first, in-flight commands are cancelled.
func (b *MQTTBridge) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.stopped || b.cancel == nil {
		b.stopped = true
		b.mu.Unlock()
		return nil
	}
	b.stopped = true
	for _, q := range b.queues {
		close(q)
	}
	cancel := b.cancel
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	defer cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

// StatusReporter publishes a device's status updates to its retained status topic
func (b *MQTTBridge) StatusReporter(device string) status.Reporter {
	topic := b.Topic(device, TopicStatus)
	return status.ReporterFunc(func(u status.Update) {
		b.publishJSON(topic, u, true)
	})
}

func (b *MQTTBridge) onMessage(_ mqtt.Client, msg Message) {
	device, ok := deviceFromTopic(b.prefix, msg.Topic())
	if !ok {
		return
	}
	// A retained command would replay on every reconnect
	if msg.Retained() {
		b.log.Warn("Ignoring retained command", zap.String("topic", msg.Topic()))
		return
	}

	cmd, ok := b.devices.Get(device)
	if !ok {
		metrics.BridgeCommands.WithLabelValues("mqtt", "unknown_device").Inc()
		b.log.Warn("Command for unknown device", zap.String("device", device))
		return
	}

	raw := string(msg.Payload())
	if !b.enqueue(device, cmd, raw) {
		metrics.BridgeCommands.WithLabelValues("mqtt", "queue_full").Inc()
		b.log.Warn("Dropping command", zap.String("device", device), zap.String("command", raw))
		b.publishJSON(b.Topic(device, TopicResult), lighting.Failed(MsgQueueFull), false)
		return
	}
	metrics.BridgeCommands.WithLabelValues("mqtt", "accepted").Inc()
}

func (b *MQTTBridge) enqueue(device string, cmd Commander, raw string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped || b.ctx == nil {
		return false
	}

	q, ok := b.queues[device]
	if !ok {
		q = make(chan string, b.queueSize)
		b.queues[device] = q
		b.wg.Add(1)
		go b.worker(b.ctx, device, cmd, q)
	}

	select {
	case q <- raw:
		return true
	default:
		return false
	}
}

func (b *MQTTBridge) worker(ctx context.Context, device string, cmd Commander, queue <-chan string) {
	defer b.wg.Done()
	for raw := range queue {
		b.log.Debug("Handling command", zap.String("device", device), zap.String("command", raw))
		res := cmd.HandleCommand(ctx, raw)
		b.publishJSON(b.Topic(device, TopicResult), res, false)
	}
}

func (b *MQTTBridge) publishJSON(topic string, v any, retain bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.log.Error("Failed to encode payload", zap.String("topic", topic), zap.Error(err))
		return
	}
	if err := b.client.Publish(topic, payload, retain); err != nil {
		b.log.Warn("Publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

// deviceFromTopic extracts <device> from "<prefix>/<device>/set"
func deviceFromTopic(prefix, topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return "", false
	}
	device, ok := strings.CutSuffix(rest, "/"+TopicSet)
	if !ok || device == "" || strings.Contains(device, "/") {
		return "", false
	}
	return device, true
}
