package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/matt-g-everett/ledmix/mix"
)

// ChannelStatus is the diagnostics view of one mixer channel.
type ChannelStatus struct {
	Index          int     `json:"index"`
	Path           string  `json:"path"`
	Label          string  `json:"label"`
	Group          bool    `json:"group"`
	Enabled        bool    `json:"enabled"`
	CueActive      bool    `json:"cueActive"`
	Fader          float64 `json:"fader"`
	CrossfadeGroup string  `json:"crossfadeGroup"`
	BlendMode      string  `json:"blendMode"`
	Animating      bool    `json:"animating"`
	Crashed        bool    `json:"crashed"`
	CrashTrace     string  `json:"crashTrace,omitempty"`
}

// Api exposes mixer diagnostics over HTTP.
type Api struct {
	mixer *mix.Mixer
}

// NewApi creates an instance of an Api.
func NewApi(mixer *mix.Mixer) *Api {
	a := new(Api)
	a.mixer = mixer
	return a
}

func (a *Api) handleChannels(w http.ResponseWriter, r *http.Request) {
	channels := a.mixer.Channels()
	statuses := make([]ChannelStatus, 0, len(channels))
	for _, c := range channels {
		status := ChannelStatus{
			Index:          c.Index(),
			Path:           c.Path(),
			Label:          c.Label(),
			Group:          c.IsGroup(),
			Enabled:        c.Enabled(),
			CueActive:      c.CueActive(),
			Fader:          c.Fader(),
			CrossfadeGroup: c.CrossfadeGroup().String(),
			BlendMode:      c.BlendMode().Active().Name(),
			Animating:      c.Animating(),
		}
		if device := c.Device(); device != nil && device.Crashed() {
			status.Crashed = true
			status.CrashTrace = device.Crash().Trace()
		}
		statuses = append(statuses, status)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statuses)
}

// Serve exposes the diagnostics endpoints.
func (a *Api) Serve() {
	http.HandleFunc("/channels", a.handleChannels)

	log.Println("Listening...")
	http.ListenAndServe(":3000", nil)
}
