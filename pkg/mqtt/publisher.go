// Package mqtt provides the MQTT transport for outbound commands.
package mqtt

import (
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/linkerbot/hand-publisher/pkg/config"
	customlog "github.com/linkerbot/hand-publisher/pkg/log"
)

// Publisher delivers command payloads to an MQTT broker.
type Publisher struct {
	client         paho.Client
	qos            byte
	publishTimeout time.Duration
	logger         customlog.Logger
}

// NewPublisher connects to the broker from cfg. A connection that cannot be
// established within the configured timeout is an error; the process must
// not start ticking against a dead broker.
func NewPublisher(cfg config.MQTTConfig, logger customlog.Logger) (*Publisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "hand-publisher"
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerAddress).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)

	logger.Infof("Connecting to MQTT broker %s...", cfg.BrokerAddress)
	token := client.Connect()
	if !token.WaitTimeout(time.Duration(cfg.ConnectTimeoutMs) * time.Millisecond) {
		return nil, errors.Errorf("timed out connecting to MQTT broker %s", cfg.BrokerAddress)
	}
	if err := token.Error(); err != nil {
		return nil, errors.WithMessagef(err, "unable to connect to MQTT broker %s", cfg.BrokerAddress)
	}
	logger.Infof("Connected to MQTT broker %s", cfg.BrokerAddress)

	return &Publisher{
		client:         client,
		qos:            cfg.QoS,
		publishTimeout: time.Duration(cfg.PublishTimeoutMs) * time.Millisecond,
		logger:         logger,
	}, nil
}

// Publish sends the payload to the topic. The send is not retried here; the
// caller decides what a failed publish means.
func (p *Publisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(p.publishTimeout) {
		return errors.Errorf("timed out publishing to topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return errors.WithMessagef(err, "unable to publish to topic %s", topic)
	}
	return nil
}

// Close disconnects from the broker, allowing a short drain for in-flight work.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
