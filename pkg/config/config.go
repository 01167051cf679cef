package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chenBenjamin97/soccer-coach/pkg/pose"
	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
	"github.com/chenBenjamin97/soccer-coach/pkg/utils"
	"github.com/chenBenjamin97/soccer-coach/pkg/video"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

//EnvPrefix prefixes every environment override, "pose.backend" is read from SOCCER_POSE_BACKEND
const EnvPrefix = "SOCCER"

type Config struct {
	HTTP      HTTPConfig          `mapstructure:"http"`
	Directory DirectoryConfig     `mapstructure:"directory"`
	Video     VideoConfig         `mapstructure:"video"`
	Pose      PoseConfig          `mapstructure:"pose"`
	Upload    UploadConfig        `mapstructure:"upload"`
	Assess    AssessConfig        `mapstructure:"assess"`
	Log       LogConfig           `mapstructure:"log"`
	Drills    map[string][]string `mapstructure:"drills"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

//DirectoryConfig holds the data directories, all created at startup
type DirectoryConfig struct {
	Root   string `mapstructure:"root"`
	Source string `mapstructure:"source"` //uploaded videos
	Ready  string `mapstructure:"ready"`  //annotated videos
	Temp   string `mapstructure:"temp"`
}

type VideoConfig struct {
	Mode      string `mapstructure:"mode"`
	Codec     string `mapstructure:"codec"`
	QueueSize int    `mapstructure:"queue_size"`
}

type PoseConfig struct {
	Backend      string       `mapstructure:"backend"`
	Model        string       `mapstructure:"model"`
	Config       string       `mapstructure:"config"`
	InputSize    int          `mapstructure:"input_size"`
	Threshold    float64      `mapstructure:"threshold"`
	MinKeypoints int          `mapstructure:"min_keypoints"`
	Remote       RemoteConfig `mapstructure:"remote"`
}

type RemoteConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Rate         float64       `mapstructure:"rate"`
	Burst        int           `mapstructure:"burst"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	OpenTimeout  time.Duration `mapstructure:"open_timeout"`
}

//UploadConfig limits POST /api/Upload, Rate is uploads per second (0 disables the limit)
type UploadConfig struct {
	Rate     float64 `mapstructure:"rate"`
	Burst    int     `mapstructure:"burst"`
	MaxBytes int64   `mapstructure:"max_bytes"`
}

type AssessConfig struct {
	Seed int64 `mapstructure:"seed"` //0 seeds from the clock
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` //text or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")

	v.SetDefault("directory.root", "./data")
	v.SetDefault("directory.source", "./data/source")
	v.SetDefault("directory.ready", "./data/ready")
	v.SetDefault("directory.temp", "./data/temp")

	v.SetDefault("video.mode", string(video.ModeDetailed))
	v.SetDefault("video.codec", utils.DefaultCodec)
	v.SetDefault("video.queue_size", utils.DefaultQueueSize)

	v.SetDefault("pose.backend", string(pose.BackendDNN))
	v.SetDefault("pose.model", "./models/graph_opt.pb")
	v.SetDefault("pose.config", "")
	v.SetDefault("pose.input_size", 368)
	v.SetDefault("pose.threshold", 0.1)
	v.SetDefault("pose.min_keypoints", 4)
	v.SetDefault("pose.remote.url", "")
	v.SetDefault("pose.remote.timeout", "5s")
	v.SetDefault("pose.remote.rate", 0)
	v.SetDefault("pose.remote.burst", 1)
	v.SetDefault("pose.remote.min_requests", 5)
	v.SetDefault("pose.remote.failure_ratio", 0.6)
	v.SetDefault("pose.remote.open_timeout", "10s")

	v.SetDefault("upload.rate", 1)
	v.SetDefault("upload.burst", 3)
	v.SetDefault("upload.max_bytes", 200<<20)

	v.SetDefault("assess.seed", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	//registered per skill so a file overriding one skill keeps the others
	for skill, drills := range skills.DefaultDrills() {
		v.SetDefault("drills."+skill, drills)
	}
}

//Load reads the configuration. path is an explicit file; when empty config.yaml is looked up in
//the working directory and may be missing. Environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("Load: Could not read config file, got '%v'", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("Load: Could not decode config, got '%v'", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

//Validate checks the values that would otherwise only fail once a video is processed
func (c *Config) Validate() error {
	if _, err := video.ParseMode(c.Video.Mode); err != nil {
		return fmt.Errorf("video.mode: %w", err)
	}
	if len(c.Video.Codec) != 4 {
		return fmt.Errorf("video.codec: %q is not a fourcc", c.Video.Codec)
	}
	if _, err := pose.ParseBackend(c.Pose.Backend); err != nil {
		return fmt.Errorf("pose.backend: %w", err)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := skills.NewCatalog(c.Drills); err != nil {
		return fmt.Errorf("drills: %w", err)
	}
	if c.HTTP.Port == "" {
		return errors.New("http.port: missing")
	}
	return nil
}

//EnsureDirectories creates the root data directory and then every other configured directory
func (c *Config) EnsureDirectories(log logrus.FieldLogger) error {
	dirs := []string{c.Directory.Root, c.Directory.Source, c.Directory.Ready, c.Directory.Temp}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("EnsureDirectories: Error, got '%v'", err)
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("EnsureDirectories: Error creating '%s' directory, got '%v'", dir, err)
		}
		log.WithField("dir", dir).Info("created data directory")
	}
	return nil
}
