package mix

// ChannelConfig describes one channel in the startup mix.
type ChannelConfig struct {
	Label          string  `yaml:"label"`
	Group          string  `yaml:"group,omitempty"`
	Pattern        string  `yaml:"pattern,omitempty"`
	Blend          string  `yaml:"blend,omitempty"`
	Fader          float64 `yaml:"fader"`
	CrossfadeGroup string  `yaml:"crossfadeGroup,omitempty"`
	Enabled        *bool   `yaml:"enabled,omitempty"`
}

type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topics   struct {
			Stream  string `yaml:"stream"`
			Control string `yaml:"control"`
			Status  string `yaml:"status"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Mixer struct {
		Pixels            int             `yaml:"pixels"`
		FrameRate         float64         `yaml:"frameRate"`
		FocusChannelOnCue bool            `yaml:"focusChannelOnCue"`
		Groups            []string        `yaml:"groups,omitempty"`
		Channels          []ChannelConfig `yaml:"channels"`
	} `yaml:"mixer"`
}
