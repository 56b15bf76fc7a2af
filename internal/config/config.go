package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Game holds the rule parameters of the board engine. Defaults follow the
// classic chat-bot setup: a 50-tile track, six to enter the board, six
// grants an extra turn, game over on the first finisher.
type Game struct {
	TrackLength    int    `yaml:"track-length" env-default:"50"`
	SafeTiles      []int  `yaml:"safe-tiles"`
	SpecialTiles   []Leap `yaml:"special-tiles"`
	MaxPlayers     int    `yaml:"max-players" env-default:"6"`
	ExtraTurnValue int    `yaml:"extra-turn-value" env-default:"6"`
	// first-finisher: the session ends as soon as one player completes the
	// track. last-standing: play continues until one player remains.
	TerminationPolicy string `yaml:"termination-policy" env-default:"first-finisher"`
	TurnTimeoutSec    int    `yaml:"turn-timeout-sec" env-default:"0"`
	MaxSkips          int    `yaml:"max-skips" env-default:"3"`
}

// Leap is a special tile: landing on Tile shifts the token by Offset.
type Leap struct {
	Tile   int `yaml:"tile"`
	Offset int `yaml:"offset"`
}

const (
	PolicyFirstFinisher = "first-finisher"
	PolicyLastStanding  = "last-standing"
)

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) FirstFinisherWins() bool {
	return that.TerminationPolicy != PolicyLastStanding
}
