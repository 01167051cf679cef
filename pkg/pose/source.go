package pose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

//ErrInferenceUnavailable is returned by a Source that could not run inference
//on a frame. Callers treat it as "no detection" for that frame.
var ErrInferenceUnavailable = errors.New("pose inference unavailable")

//Source detects body landmarks on a single RGB frame.
type Source interface {
	//Infer returns nil with a nil error when no person is detected.
	Infer(ctx context.Context, rgb gocv.Mat) (*Frame, error)
	Close() error
}

//Backend names a Source implementation in configuration.
type Backend string

const (
	BackendDNN    Backend = "dnn"
	BackendRemote Backend = "remote"
	BackendNone   Backend = "none"
)

//ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendDNN, BackendRemote, BackendNone:
		return b, nil
	case "":
		return BackendDNN, nil
	default:
		return "", fmt.Errorf("unknown pose backend %q", s)
	}
}

//NoDetection never detects anything. It backs the "none" backend and tests.
type NoDetection struct{}

func (NoDetection) Infer(context.Context, gocv.Mat) (*Frame, error) { return nil, nil }
func (NoDetection) Close() error                                    { return nil }
