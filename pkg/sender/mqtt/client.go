package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"weldgateway/pkg/runtime"
	"weldgateway/pkg/utils/uuidutil"

	"k8s.io/klog/v2"
)

const (
	defaultTopicFormat = "weldgateway/%s/events"
	disconnectWait     = 2000
)

var _ runtime.Sender = (*Client)(nil)

// Config describes a plain MQTT broker.
type Config struct {
	Broker   string
	Topic    string
	Username string
	Password string
	ClientID string
}

// DefaultTopic is used when the connection string names none.
func DefaultTopic(device string) string {
	return fmt.Sprintf(defaultTopicFormat, device)
}

func (c Config) ClientOptions(reconnectPeriod time.Duration) *paho.ClientOptions {
	clientID := c.ClientID
	if len(clientID) == 0 {
		clientID = "weldgateway-" + uuidutil.ShortUUID()
	}
	opts := paho.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(reconnectPeriod).
		SetMaxReconnectInterval(reconnectPeriod)
	if len(c.Username) > 0 {
		opts.SetUsername(c.Username)
		opts.SetPassword(c.Password)
	}
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		klog.V(2).InfoS("Lost mqtt connection", "broker", c.Broker, "err", err)
	})
	return opts
}

// Client publishes every payload to one topic at QoS 1.
type Client struct {
	cfg            Config
	client         paho.Client
	publishTimeout time.Duration
}

func NewClient(cfg Config, publishTimeout, reconnectPeriod time.Duration) *Client {
	client := paho.NewClient(cfg.ClientOptions(reconnectPeriod))
	token := client.Connect()
	go func() {
		if token.Wait() && token.Error() != nil {
			klog.V(1).InfoS("Failed to connect mqtt broker", "broker", cfg.Broker, "err", token.Error())
		}
	}()
	return &Client{cfg: cfg, client: client, publishTimeout: publishTimeout}
}

func (c *Client) Send(ctx context.Context, payload []byte) error {
	if !c.client.IsConnectionOpen() {
		return errors.Errorf("mqtt broker %s not connected", c.cfg.Broker)
	}
	token := c.client.Publish(c.cfg.Topic, 1, false, payload)
	timeout := c.publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !token.WaitTimeout(timeout) {
		return errors.Errorf("publish to %s timed out after %s", c.cfg.Topic, timeout)
	}
	return errors.Wrap(token.Error(), "publish to mqtt broker")
}

func (c *Client) Close(_ context.Context) error {
	c.client.Disconnect(disconnectWait)
	return nil
}
