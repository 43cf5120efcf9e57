package iothub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"weldgateway/pkg/runtime"
	"weldgateway/pkg/utils/uuidutil"

	"k8s.io/klog/v2"
)

const (
	apiVersion     = "2021-04-12"
	mqttsPort      = 8883
	tokenLifetime  = time.Hour
	disconnectWait = 2000
)

var _ runtime.Sender = (*Client)(nil)

// Config is one device identity taken from an IoT Hub connection string.
type Config struct {
	HostName        string `mapstructure:"HostName"`
	DeviceID        string `mapstructure:"DeviceId"`
	SharedAccessKey string `mapstructure:"SharedAccessKey"`
}

// Client publishes device-to-cloud messages to IoT Hub over MQTT.
type Client struct {
	cfg            Config
	client         mqtt.Client
	publishTimeout time.Duration
}

func (c Config) brokerURL() string {
	return fmt.Sprintf("ssl://%s:%d", c.HostName, mqttsPort)
}

func (c Config) username() string {
	return fmt.Sprintf("%s/%s/?api-version=%s", c.HostName, c.DeviceID, apiVersion)
}

// Topic is the device-to-cloud topic for one message. Content type and
// encoding are set as system properties so routing can read the body.
func (c Config) Topic(messageID string) string {
	return fmt.Sprintf("devices/%s/messages/events/$.ct=%s&$.ce=utf-8&$.mid=%s",
		c.DeviceID, url.QueryEscape("application/json"), messageID)
}

// ClientOptions builds the paho options. The SAS token is minted again on
// every connect and reconnect.
func (c Config) ClientOptions(reconnectPeriod time.Duration) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(c.brokerURL()).
		SetClientID(c.DeviceID).
		SetProtocolVersion(4).
		SetCleanSession(false).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(reconnectPeriod).
		SetMaxReconnectInterval(reconnectPeriod)
	opts.SetCredentialsProvider(func() (string, string) {
		token, err := SharedAccessSignature(c.HostName, c.DeviceID, c.SharedAccessKey, time.Now().Add(tokenLifetime))
		if err != nil {
			klog.V(1).InfoS("Failed to generate sas token", "deviceId", c.DeviceID, "err", err)
		}
		return c.username(), token
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		klog.V(2).InfoS("Lost iothub connection", "host", c.HostName, "deviceId", c.DeviceID, "err", err)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		klog.V(2).InfoS("Succeed to connect iothub", "host", c.HostName, "deviceId", c.DeviceID)
	})
	return opts
}

// NewClient starts connecting in the background and returns immediately; a
// device whose hub is unreachable still gets polled.
func NewClient(cfg Config, publishTimeout, reconnectPeriod time.Duration) (*Client, error) {
	if _, err := SharedAccessSignature(cfg.HostName, cfg.DeviceID, cfg.SharedAccessKey, time.Now()); err != nil {
		return nil, err
	}
	client := mqtt.NewClient(cfg.ClientOptions(reconnectPeriod))
	token := client.Connect()
	go func() {
		if token.Wait() && token.Error() != nil {
			klog.V(1).InfoS("Failed to connect iothub", "host", cfg.HostName, "deviceId", cfg.DeviceID, "err", token.Error())
		}
	}()
	return &Client{cfg: cfg, client: client, publishTimeout: publishTimeout}, nil
}

func (c *Client) Send(ctx context.Context, payload []byte) error {
	if !c.client.IsConnectionOpen() {
		return errors.Errorf("iothub %s not connected", c.cfg.HostName)
	}
	token := c.client.Publish(c.cfg.Topic(uuidutil.MessageID()), 1, false, payload)
	timeout := c.publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !token.WaitTimeout(timeout) {
		return errors.Errorf("publish to iothub %s timed out after %s", c.cfg.HostName, timeout)
	}
	return errors.Wrap(token.Error(), "publish to iothub")
}

func (c *Client) Close(_ context.Context) error {
	c.client.Disconnect(disconnectWait)
	return nil
}
