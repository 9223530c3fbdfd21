package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"gopkg.in/yaml.v2"

	"github.com/matt-g-everett/ledmix/api"
	"github.com/matt-g-everett/ledmix/mix"
	"github.com/matt-g-everett/ledmix/mix/pattern"
)

type app struct {
	Config   mix.Config
	Client   mqtt.Client
	Mixer    *mix.Mixer
	Streamer *mix.Streamer
}

func newApp() *app {
	a := new(app)
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Println("Connected")
	a.Streamer.Subscribe()
}

func (a *app) run() {
	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		panic(token.Error())
	}
	a.Streamer.Run()
}

func (a *app) readConfig(configPath string) {
	f, err := os.Open(configPath)
	if err != nil {
		panic(err)
	}

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&a.Config)
	if err != nil {
		panic(err)
	}
}

// buildMixer assembles the startup mix described in the config: groups
// first so channels can attach to them, then channels with their patterns,
// blends and routing.
func (a *app) buildMixer() {
	cfg := a.Config.Mixer
	a.Mixer = mix.NewMixer(cfg.Pixels, cfg.FocusChannelOnCue)

	groups := make(map[string]*mix.Group)
	for _, label := range cfg.Groups {
		groups[label] = a.Mixer.AddGroup(label)
	}

	for _, cc := range cfg.Channels {
		c := a.Mixer.AddChannel(cc.Label)
		if cc.Group != "" {
			g, found := groups[cc.Group]
			if !found {
				log.Printf("Unknown group %q for channel %q", cc.Group, cc.Label)
			} else if err := g.AddMember(c); err != nil {
				log.Println(err)
			}
		}
		if cc.Pattern != "" {
			p, err := pattern.New(cc.Pattern)
			if err != nil {
				log.Println(err)
			} else {
				c.SetPattern(p)
			}
		}
		if cc.Blend != "" {
			if err := c.SetBlendMode(cc.Blend); err != nil {
				log.Println(err)
			}
		}
		if cc.Fader > 0 {
			c.SetFader(cc.Fader)
		}
		if cc.CrossfadeGroup != "" {
			g, err := mix.ParseCrossfadeGroup(cc.CrossfadeGroup)
			if err != nil {
				log.Println(err)
			} else {
				c.SetCrossfadeGroup(g)
			}
		}
		if cc.Enabled != nil {
			c.SetEnabled(*cc.Enabled)
		}
	}
}

func main() {
	mqtt.ERROR = log.New(os.Stdout, "", 0)

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	flag.Parse()

	rand.Seed(time.Now().UTC().UnixNano())

	// Read the config
	a := newApp()
	a.readConfig(*configPath)
	log.Printf("Config: %+v", a.Config)

	a.buildMixer()

	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID("ledmix").
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(a.handleOnConnect)
	client := mqtt.NewClient(options)

	a.Client = client
	a.Streamer = mix.NewStreamer(a.Config, client, a.Mixer)

	go api.NewApi(a.Mixer).Serve()

	a.run()
}
