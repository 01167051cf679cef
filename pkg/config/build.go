package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/chenBenjamin97/soccer-coach/pkg/metrics"
	"github.com/chenBenjamin97/soccer-coach/pkg/pose"
	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
	"github.com/chenBenjamin97/soccer-coach/pkg/video"
	"github.com/sirupsen/logrus"
)

//NewLogger builds the process logger from the log section
func NewLogger(c LogConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	switch strings.ToLower(c.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("log.format: unknown format %q (text, json)", c.Format)
	}
	return log, nil
}

//NewSource builds the configured landmark source. A dnn backend whose model file is missing
//falls back to no detection, every frame is then reported as lacking a pose.
func NewSource(c PoseConfig, log logrus.FieldLogger) (pose.Source, error) {
	backend, err := pose.ParseBackend(c.Backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case pose.BackendRemote:
		return pose.NewRemoteSource(pose.RemoteConfig{
			URL:           c.Remote.URL,
			Timeout:       c.Remote.Timeout,
			RatePerSecond: c.Remote.Rate,
			Burst:         c.Remote.Burst,
			MinRequests:   c.Remote.MinRequests,
			FailureRatio:  c.Remote.FailureRatio,
			OpenTimeout:   c.Remote.OpenTimeout,
		}, log)
	case pose.BackendNone:
		return pose.NoDetection{}, nil
	}

	if _, err := os.Stat(c.Model); err != nil {
		log.WithError(err).WithField("model", c.Model).Warn("NewSource: pose model not available, landmarks will not be detected")
		return pose.NoDetection{}, nil
	}
	return pose.NewDNNSource(c.Model, c.Config,
		pose.WithInputSize(c.InputSize, c.InputSize),
		pose.WithThreshold(c.Threshold),
		pose.WithMinKeypoints(c.MinKeypoints),
	)
}

//NewAssessor builds the shared assessor with the configured drill catalog
func NewAssessor(c *Config) (*skills.Assessor, error) {
	catalog, err := skills.NewCatalog(c.Drills)
	if err != nil {
		return nil, err
	}
	return skills.NewAssessor(skills.WithCatalog(catalog), skills.WithRand(skills.NewRand(c.Assess.Seed))), nil
}

//NewPipeline builds a pipeline encoding in the temp directory and publishing into the ready directory. mode overrides video.mode when not empty.
func NewPipeline(c *Config, mode string, src pose.Source, a *skills.Assessor, log logrus.FieldLogger, m *metrics.Manager) (*video.Pipeline, error) {
	if mode == "" {
		mode = c.Video.Mode
	}
	parsed, err := video.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	return video.New(src, a,
		video.WithMode(parsed),
		video.WithCodec(c.Video.Codec),
		video.WithOutputDir(c.Directory.Ready),
		video.WithWorkDir(c.Directory.Temp),
		video.WithQueueSize(c.Video.QueueSize),
		video.WithLogger(log),
		video.WithMetrics(m),
	), nil
}
