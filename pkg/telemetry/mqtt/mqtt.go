// Package mqtt bridges EL_STATE_CH element state-change events onto a
// cloud MQTT broker, grounded on the teacher's pkg/transport/mqtt client
// setup but repurposed from a bidirectional gateway transport into a
// one-way "phone home" telemetry sink appropriate for an embedded node.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/models/ctl"
	"github.com/meshx-project/meshx/pkg/models/hsl"
	"github.com/meshx-project/meshx/pkg/models/lc"
	"github.com/meshx-project/meshx/pkg/models/level"
	"github.com/meshx-project/meshx/pkg/models/lightness"
	"github.com/meshx-project/meshx/pkg/models/location"
	"github.com/meshx-project/meshx/pkg/models/onoff"
	"github.com/meshx-project/meshx/pkg/models/power"
	"github.com/meshx-project/meshx/pkg/models/property"
	"github.com/meshx-project/meshx/pkg/models/xyl"
)

// stateChangeKeys is every family adapter's EL_STATE_CH key; the bridge
// subscribes to each so telemetry covers every model regardless of which
// families a given node composes.
var stateChangeKeys = []bus.EventKey{
	onoff.StateChangeKey, level.StateChangeKey, power.StateChangeKey, location.StateChangeKey,
	property.StateChangeKey, lightness.StateChangeKey, ctl.StateChangeKey, hsl.StateChangeKey,
	xyl.StateChangeKey, lc.StateChangeKey,
}

// Config configures the telemetry bridge.
type Config struct {
	BrokerURL      string        `yaml:"broker_url"`
	NodeID         string        `yaml:"node_id"`
	QOS            byte          `yaml:"qos"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BrokerURL:      "tcp://localhost:1883",
		QOS:            0,
		ConnectTimeout: 10 * time.Second,
	}
}

// event is the JSON envelope published to the broker.
type event struct {
	Key  bus.EventKey `json:"key"`
	Data any          `json:"data"`
}

// Bridge publishes every EL_STATE_CH event to
// meshx/<node-id>/elements/<key> on an MQTT broker, where <key> is the
// family-wide state-change key, not an element address. It never
// subscribes to anything back from the broker; the node has no remote
// control surface through this package.
type Bridge struct {
	cfg    Config
	bus    *bus.Bus
	log    *logger.Logger
	client paho.Client

	mu   sync.Mutex
	subs []bus.Handle
}

// NewBridge constructs a Bridge that will publish b's state-change events
// once Connect succeeds.
func NewBridge(cfg Config, b *bus.Bus) *Bridge {
	return &Bridge{cfg: cfg, bus: b, log: logger.Global()}
}

// Connect dials the broker and subscribes to every known family's
// EL_STATE_CH key.
func (br *Bridge) Connect() error {
	opts := paho.NewClientOptions().
		AddBroker(br.cfg.BrokerURL).
		SetClientID(fmt.Sprintf("meshx-%s", br.cfg.NodeID)).
		SetConnectTimeout(br.cfg.ConnectTimeout).
		SetAutoReconnect(true)

	br.client = paho.NewClient(opts)
	if token := br.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: mqtt connect: %v", meshxerr.ErrPlatform, token.Error())
	}

	br.mu.Lock()
	defer br.mu.Unlock()
	for _, key := range stateChangeKeys {
		k := key
		h := br.bus.Subscribe(bus.ElStateCh, k, func(data any) error {
			return br.publish(k, data)
		})
		br.subs = append(br.subs, h)
	}
	return nil
}

func (br *Bridge) publish(key bus.EventKey, data any) error {
	payload, err := json.Marshal(event{Key: key, Data: data})
	if err != nil {
		return fmt.Errorf("marshal telemetry event: %w", err)
	}
	// EL_STATE_CH's key is a family-wide state-change code, not a specific
	// element address (NotifyElementStateChange publishes the same key for
	// every element composing that family); the topic segment is keyed by
	// that code accordingly.
	topic := fmt.Sprintf("meshx/%s/elements/%d", br.cfg.NodeID, key)
	token := br.client.Publish(topic, br.cfg.QOS, false, payload)
	if !token.WaitTimeout(br.cfg.ConnectTimeout) {
		return fmt.Errorf("%w: publish to %s timed out", meshxerr.ErrTimeout, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: publish to %s: %v", meshxerr.ErrPlatform, topic, err)
	}
	return nil
}

// Close unsubscribes from the bus and disconnects from the broker.
func (br *Bridge) Close() error {
	br.mu.Lock()
	defer br.mu.Unlock()
	for i, key := range stateChangeKeys {
		if i < len(br.subs) {
			br.bus.Unsubscribe(bus.ElStateCh, key, br.subs[i])
		}
	}
	if br.client != nil {
		br.client.Disconnect(250)
	}
	return nil
}
