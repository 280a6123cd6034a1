package events

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const transitionTopic = "player/transitions"

// MQTTPublisher mirrors activation transitions onto an MQTT broker so that
// player devices beyond the browser surface can react to schedule changes.
type MQTTPublisher struct {
	client mqtt.Client
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

func NewMQTTPublisher(brokerURL, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTTPublisher{client: client}, nil
}

// Run forwards events from ch to the broker until the channel closes.
// Intended to run in its own goroutine over a Bus subscription.
func (p *MQTTPublisher) Run(ch <-chan Event) {
	for ev := range ch {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode transition event")
			continue
		}
		token := p.client.Publish(transitionTopic, 1, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Warn().Err(token.Error()).Str("topic", transitionTopic).
				Msg("failed to publish transition event")
		}
	}
}

// Close disconnects from the broker, allowing 250ms for in-flight work.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
