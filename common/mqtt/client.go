package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickfirstaid/common/config"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// ErrNotConnected is returned by Publish while the broker link is down.
var ErrNotConnected = errors.New("mqtt: not connected")

// Client is a publish-only MQTT connection with auto-reconnect.
type Client struct {
	conn   paho.Client
	broker string
	logger *zap.Logger
}

// NewClient connects to cfg.Broker and fails if the first connect does not
// finish within connectTimeout.
func NewClient(cfg *config.MQTTConfig, logger *zap.Logger) (*Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(paho.Client) {
			logger.Info("MQTT connected", zap.String("broker", cfg.Broker))
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("MQTT connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	conn := paho.NewClient(opts)
	token := conn.Connect()
	if !token.WaitTimeout(connectTimeout) {
		conn.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	return &Client{conn: conn, broker: cfg.Broker, logger: logger}, nil
}

// Publish sends payload and waits for the broker to acknowledge it or for ctx
// to end, whichever comes first.
func (c *Client) Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	if !c.conn.IsConnectionOpen() {
		return ErrNotConnected
	}
	token := c.conn.Publish(topic, qos, retained, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish %s: %w", topic, ctx.Err())
	}
}

// Disconnect gives in-flight messages 250ms before closing.
func (c *Client) Disconnect() {
	c.conn.Disconnect(250)
	c.logger.Info("MQTT disconnected", zap.String("broker", c.broker))
}

func (c *Client) IsConnected() bool {
	return c.conn.IsConnectionOpen()
}
