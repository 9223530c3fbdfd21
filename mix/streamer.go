package mix

import (
	"log"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
)

// Streamer drives the mixer's frame loop and streams the composited RGB
// frames to an ledrx device over MQTT.
type Streamer struct {
	config  Config
	client  mqtt.Client
	mixer   *Mixer
	control *Control
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(config Config, client mqtt.Client, mixer *Mixer) *Streamer {
	s := new(Streamer)
	s.config = config
	s.client = client
	s.mixer = mixer
	s.control = NewControl(config, client, mixer)

	mixer.SetErrorHandler(s.publishStatus)

	return s
}

// Subscribe attaches the control bridge to the broker.
func (s *Streamer) Subscribe() {
	s.control.Subscribe()
}

// SendFrame sends a frame as binary over MQTT to an ledrx device.
func (s *Streamer) SendFrame(f *Frame) {
	b, _ := f.MarshalBinary()
	token := s.client.Publish(s.config.Mqtt.Topics.Stream, 2, false, b)
	token.Wait()
}

func (s *Streamer) publishStatus(message string) {
	log.Println(message)
	if s.config.Mqtt.Topics.Status != "" {
		s.client.Publish(s.config.Mqtt.Topics.Status, 0, false, message)
	}
}

// Run advances the mixer at the configured frame rate and sends each
// composited frame, forever.
func (s *Streamer) Run() {
	frameRate := s.config.Mixer.FrameRate
	if frameRate <= 0 {
		frameRate = 30.0
	}
	interval := time.Duration(float64(time.Second) / frameRate)

	publishTimer := time.NewTicker(interval)
	last := time.Now()
	for {
		now := <-publishTimer.C
		deltaMs := float64(now.Sub(last)) / float64(time.Millisecond)
		last = now
		f := s.mixer.Advance(deltaMs)
		s.SendFrame(f)
	}
}
