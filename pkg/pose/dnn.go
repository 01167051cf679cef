package pose

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

//cocoParts is the keypoint order of OpenPose COCO models (graph_opt.pb and
//pose_iter_440000.caffemodel). Heatmap i of the network output is cocoParts[i].
var cocoParts = [...]Name{
	Nose, Neck,
	RightShoulder, RightElbow, RightWrist,
	LeftShoulder, LeftElbow, LeftWrist,
	RightHip, RightKnee, RightAnkle,
	LeftHip, LeftKnee, LeftAnkle,
	RightEye, LeftEye, RightEar, LeftEar,
}

//DNNSource runs an OpenPose style network through OpenCV's DNN module and
//keeps the strongest heatmap peak per keypoint.
type DNNSource struct {
	mu           sync.Mutex //gocv.Net is not safe for concurrent use
	net          gocv.Net
	inputSize    image.Point
	threshold    float32
	minKeypoints int
}

//DNNOption configures a DNNSource.
type DNNOption func(*DNNSource)

//WithInputSize sets the network input blob size (default 368x368).
func WithInputSize(width, height int) DNNOption {
	return func(s *DNNSource) {
		if width > 0 && height > 0 {
			s.inputSize = image.Pt(width, height)
		}
	}
}

//WithThreshold sets the minimum heatmap confidence of a keypoint (default 0.1).
func WithThreshold(t float64) DNNOption {
	return func(s *DNNSource) {
		if t > 0 {
			s.threshold = float32(t)
		}
	}
}

//WithMinKeypoints sets how many keypoints must be found to count as a detection (default 4).
func WithMinKeypoints(n int) DNNOption {
	return func(s *DNNSource) {
		if n > 0 {
			s.minKeypoints = n
		}
	}
}

//NewDNNSource loads the network at modelPath. configPath may be empty for
//single file formats such as TensorFlow .pb graphs.
func NewDNNSource(modelPath, configPath string, opts ...DNNOption) (*DNNSource, error) {
	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("pose: could not load model %q", modelPath)
	}

	s := &DNNSource{
		net:          net,
		inputSize:    image.Pt(368, 368),
		threshold:    0.1,
		minKeypoints: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

//Infer implements Source. rgb must be a 3 channel RGB frame.
func (s *DNNSource) Infer(ctx context.Context, rgb gocv.Mat) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rgb.Empty() {
		return nil, fmt.Errorf("%w: empty frame", ErrInferenceUnavailable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	//frame is already RGB, no channel swap
	blob := gocv.BlobFromImage(rgb, 1.0, s.inputSize, gocv.NewScalar(127.5, 127.5, 127.5, 0), false, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	prob := s.net.Forward("")
	defer prob.Close()

	size := prob.Size()
	if len(size) != 4 || size[1] < len(cocoParts) {
		return nil, fmt.Errorf("%w: unexpected network output shape %v", ErrInferenceUnavailable, size)
	}
	h, w := size[2], size[3]

	landmarks := make([]Landmark, 0, len(cocoParts))
	for i, name := range cocoParts {
		heatmap, err := prob.FromPtr(h, w, gocv.MatTypeCV32F, 0, i)
		if err != nil {
			return nil, fmt.Errorf("%w: heatmap %d: %v", ErrInferenceUnavailable, i, err)
		}
		_, conf, _, pt := gocv.MinMaxLoc(heatmap)
		heatmap.Close()

		if conf > s.threshold {
			landmarks = append(landmarks, Landmark{
				Name:       name,
				X:          float64(pt.X) / float64(w),
				Y:          float64(pt.Y) / float64(h),
				Visibility: float64(conf),
			})
		}
	}

	if len(landmarks) < s.minKeypoints {
		return nil, nil
	}
	return &Frame{Landmarks: landmarks}, nil
}

//Close releases the network.
func (s *DNNSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}
