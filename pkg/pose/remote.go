package pose

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gocv.io/x/gocv"
	"golang.org/x/time/rate"
)

//RemoteConfig configures a RemoteSource.
type RemoteConfig struct {
	//URL receives POSTed JPEG frames and answers with landmarks as JSON.
	URL     string
	Timeout time.Duration

	//RatePerSecond caps requests sent to the service; 0 disables the limit.
	RatePerSecond float64
	Burst         int

	//The breaker opens once MinRequests were made in the current interval
	//and at least FailureRatio of them failed, and stays open for OpenTimeout.
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

//remoteResponse is the body returned by the inference service.
type remoteResponse struct {
	Landmarks []Landmark `json:"landmarks"`
}

//RemoteSource asks an HTTP inference service for landmarks.
type RemoteSource struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
}

//NewRemoteSource creates a RemoteSource. log may be nil.
func NewRemoteSource(cfg RemoteConfig, log logrus.FieldLogger) (*RemoteSource, error) {
	if cfg.URL == "" {
		return nil, errors.New("pose: remote source needs a URL")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.6
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	log = log.WithField("component", "pose-remote")
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "pose-remote",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("pose inference circuit breaker state changed")
		},
	})

	return &RemoteSource{
		url:     cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		breaker: breaker,
		log:     log,
	}, nil
}

//Infer implements Source. Transport failures, bad status codes, undecodable
//bodies and an open breaker all wrap ErrInferenceUnavailable.
func (s *RemoteSource) Infer(ctx context.Context, rgb gocv.Mat) (*Frame, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrInferenceUnavailable, err)
	}

	body, err := encodeJPEG(rgb)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInferenceUnavailable, err)
	}

	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.post(ctx, body)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.WithError(err).Debug("inference request failed")
		return nil, fmt.Errorf("%w: %v", ErrInferenceUnavailable, err)
	}

	out := res.(*remoteResponse)
	landmarks := make([]Landmark, 0, len(out.Landmarks))
	for _, l := range out.Landmarks {
		if l.Name != "" {
			landmarks = append(landmarks, l)
		}
	}
	if len(landmarks) == 0 {
		return nil, nil
	}
	return &Frame{Landmarks: landmarks}, nil
}

func (s *RemoteSource) post(ctx context.Context, jpeg []byte) (*remoteResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(jpeg))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding inference response: %w", err)
	}
	return &out, nil
}

//encodeJPEG encodes an RGB frame. imencode expects BGR, hence the conversion.
func encodeJPEG(rgb gocv.Mat) ([]byte, error) {
	if rgb.Empty() {
		return nil, errors.New("empty frame")
	}

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, bgr)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	//the buffer lives in C memory until Close
	return bytes.Clone(buf.GetBytes()), nil
}

//Close drops idle connections.
func (s *RemoteSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
