package mix

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/eclipse/paho.mqtt.golang"
)

// ControlMessage addresses a single mixer or channel parameter by path,
// e.g. {"path": "channel/3/fader", "value": 0.5}.
type ControlMessage struct {
	Path  string  `json:"path"`
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
}

// Control bridges MQTT control messages onto mixer and channel parameters.
// Channels are addressed as "channel/<index+1>".
type Control struct {
	config Config
	client mqtt.Client
	mixer  *Mixer
}

// NewControl creates an instance of a Control bridge.
func NewControl(config Config, client mqtt.Client, mixer *Mixer) *Control {
	c := new(Control)
	c.config = config
	c.client = client
	c.mixer = mixer
	return c
}

func (c *Control) handleControlMessages(client mqtt.Client, msg mqtt.Message) {
	var message ControlMessage
	if err := json.Unmarshal(msg.Payload(), &message); err != nil {
		log.Printf("Bad control message on %s: %v", msg.Topic(), err)
		return
	}

	if err := c.Apply(message); err != nil {
		log.Printf("Control message failed: %v", err)
	}
}

// Apply routes one control message to its target parameter.
func (c *Control) Apply(message ControlMessage) error {
	parts := strings.Split(message.Path, "/")
	switch {
	case message.Path == "crossfader":
		c.mixer.SetCrossfader(message.Value)
		return nil
	case message.Path == "cueA":
		c.mixer.SetCueA(message.Value != 0)
		return nil
	case message.Path == "cueB":
		c.mixer.SetCueB(message.Value != 0)
		return nil
	case len(parts) == 3 && parts[0] == "channel":
		number, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("mix: bad channel number %q", parts[1])
		}
		channel, err := c.mixer.ChannelAt(number - 1)
		if err != nil {
			return err
		}
		return c.applyChannel(channel, parts[2], message)
	}
	return fmt.Errorf("mix: unknown control path %q", message.Path)
}

func (c *Control) applyChannel(channel *Channel, param string, message ControlMessage) error {
	switch param {
	case "enabled":
		channel.SetEnabled(message.Value != 0)
	case "cue":
		channel.SetCueActive(message.Value != 0)
	case "fader":
		channel.SetFader(message.Value)
	case "crossfadeGroup":
		group, err := ParseCrossfadeGroup(message.Text)
		if err != nil {
			return err
		}
		channel.SetCrossfadeGroup(group)
	case "blendMode":
		return channel.SetBlendMode(message.Text)
	case "reset":
		if device := channel.Device(); device != nil {
			device.ResetCrash()
			log.Printf("Pattern reset on channel [%s]", channel.Label())
		}
	default:
		return fmt.Errorf("mix: unknown channel parameter %q", param)
	}
	return nil
}

// Subscribe attaches the control handler to the configured topic.
func (c *Control) Subscribe() {
	topic := c.config.Mqtt.Topics.Control
	if topic == "" {
		return
	}
	if token := c.client.Subscribe(topic, 0, c.handleControlMessages); token.Wait() && token.Error() != nil {
		log.Println(token.Error())
	}
}
