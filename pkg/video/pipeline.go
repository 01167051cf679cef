package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chenBenjamin97/soccer-coach/pkg/metrics"
	"github.com/chenBenjamin97/soccer-coach/pkg/pose"
	"github.com/chenBenjamin97/soccer-coach/pkg/report"
	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
	"github.com/chenBenjamin97/soccer-coach/pkg/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

//Pipeline turns an input video into an annotated output video and a report
type Pipeline struct {
	source    pose.Source
	assessor  *skills.Assessor
	mode      Mode
	codec     string
	outputDir string
	workDir   string
	queueSize int
	log       logrus.FieldLogger
	metrics   *metrics.Manager

	open   func(path string) (Decoder, error)
	create func(path, codec string, props StreamProps) (Encoder, error)
}

//Option configures a Pipeline
type Option func(*Pipeline)

func WithMode(m Mode) Option {
	return func(p *Pipeline) {
		if m != "" {
			p.mode = m
		}
	}
}

//WithCodec sets the fourcc of the output container (default utils.DefaultCodec)
func WithCodec(fourcc string) Option {
	return func(p *Pipeline) {
		if len(fourcc) == 4 {
			p.codec = fourcc
		}
	}
}

//WithOutputDir sets where outputs go when Process gets no output path
func WithOutputDir(dir string) Option {
	return func(p *Pipeline) {
		if dir != "" {
			p.outputDir = dir
		}
	}
}

//WithWorkDir makes Process encode into dir and move the finished video to its output path,
//so the output path never holds a partial video
func WithWorkDir(dir string) Option {
	return func(p *Pipeline) {
		p.workDir = dir
	}
}

//WithQueueSize bounds the queues between decode, analyse and encode stages
func WithQueueSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

//New creates a Pipeline reading and writing files through OpenCV
func New(source pose.Source, assessor *skills.Assessor, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:    source,
		assessor:  assessor,
		mode:      ModeDetailed,
		codec:     utils.DefaultCodec,
		outputDir: os.TempDir(),
		queueSize: utils.DefaultQueueSize,
		log:       logrus.StandardLogger(),
		open:      OpenFile,
		create:    CreateFile,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.source == nil {
		p.source = pose.NoDetection{}
	}
	if p.assessor == nil {
		p.assessor = skills.NewAssessor()
	}
	return p
}

//Mode returns the feedback mode of the pipeline
func (p *Pipeline) Mode() Mode {
	return p.mode
}

//WorkDir returns the directory videos are encoded in before being moved to their output path
func (p *Pipeline) WorkDir() string {
	return p.workDir
}

//staticFeedback holds what rating modes compute once per video
type staticFeedback struct {
	ratings    skills.Ratings
	feedback   map[skills.Skill]skills.Entry
	assessment *skills.Assessment
	lines      []OverlayLine
}

func (p *Pipeline) assess() (*staticFeedback, error) {
	if p.mode == ModeGeometry {
		return &staticFeedback{}, nil
	}

	ratings := p.assessor.GenerateRatings()
	feedback, err := p.assessor.Feedback(ratings, p.mode.style())
	if err != nil {
		return nil, err
	}
	assessment, err := p.assessor.Analyze(ratings)
	if err != nil {
		return nil, err
	}

	lines := make([]OverlayLine, 0, len(feedback))
	for _, e := range skills.OrderedFeedback(feedback) {
		lines = append(lines, OverlayLine{Text: e.Message, Color: e.Color()})
	}

	return &staticFeedback{ratings: ratings, feedback: feedback, assessment: &assessment, lines: lines}, nil
}

//frameStats is owned by the analyse stage until the stages are done
type frameStats struct {
	withoutDetection  int
	inferenceFailures int
	seen              map[string]bool
	cues              []string //distinct cue messages, first seen first
}

func (s *frameStats) record(cues []pose.Cue) {
	for _, c := range cues {
		if !s.seen[c.Message] {
			s.seen[c.Message] = true
			s.cues = append(s.cues, c.Message)
		}
	}
}

//Process reads inputPath, annotates every frame and writes them, in order, to outputPath
//(a unique file under the output directory when empty). With a work directory the video is encoded
//there and moved to outputPath once complete. On failure the partial video is removed.
func (p *Pipeline) Process(ctx context.Context, inputPath, outputPath string) (rep *report.VideoReport, err error) {
	start := time.Now()
	log := p.log.WithFields(logrus.Fields{"input": inputPath, "mode": p.mode})

	defer func() {
		outcome := "ok"
		switch {
		case err != nil:
			outcome = "error"
		case rep.Status == report.StatusPartialDetection:
			outcome = string(report.StatusPartialDetection)
		}
		p.metrics.VideoProcessed(string(p.mode), outcome, time.Since(start))
	}()

	dec, err := p.open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %v", ErrVideoOpen, inputPath, err)
	}
	defer dec.Close()

	first := gocv.NewMat()
	if !dec.Read(&first) {
		first.Close()
		return nil, fmt.Errorf("%w: '%s'", ErrEmptyVideo, inputPath)
	}

	props := dec.Props().withDefaults()
	if props.Width <= 0 || props.Height <= 0 {
		props.Width, props.Height = first.Cols(), first.Rows()
	}

	static, err := p.assess()
	if err != nil {
		first.Close()
		return nil, err
	}

	if outputPath == "" {
		outputPath = filepath.Join(p.outputDir, uuid.NewString()+utils.OutputExtension)
	}
	log = log.WithField("output", outputPath)

	workPath := outputPath
	if p.workDir != "" {
		workPath = filepath.Join(p.workDir, uuid.NewString()+filepath.Ext(outputPath))
	}

	enc, err := p.create(workPath, p.codec, props)
	if err != nil {
		first.Close()
		return nil, fmt.Errorf("%w '%s': %v", ErrWrite, workPath, err)
	}

	encClosed := false
	defer func() {
		if err == nil {
			return
		}
		if !encClosed {
			enc.Close()
		}
		if rmErr := os.Remove(workPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.WithError(rmErr).Warn("Process: could not remove partial output")
		}
	}()

	log.WithFields(logrus.Fields{
		"fps":    props.FPS,
		"width":  props.Width,
		"height": props.Height,
		"frames": props.FrameCount,
	}).Info("Process: processing video")

	stats := &frameStats{seen: make(map[string]bool)}
	decodedC := make(chan frameItem, p.queueSize)
	annotatedC := make(chan frameItem, p.queueSize)

	var read, written int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		read, err = readFrames(gctx, dec, first, decodedC)
		return err
	})
	g.Go(func() error {
		defer close(annotatedC)
		return p.analyze(gctx, log, static, stats, decodedC, annotatedC)
	})
	g.Go(func() error {
		var err error
		written, err = p.writeFrames(gctx, enc, annotatedC)
		return err
	})

	err = g.Wait()
	drain(decodedC)
	drain(annotatedC)
	if err != nil {
		log.WithError(err).Error("Process: failed")
		return nil, err
	}

	if written != read {
		err = fmt.Errorf("%w: wrote %d of %d frames", ErrWrite, written, read)
		return nil, err
	}

	encClosed = true
	if err = enc.Close(); err != nil {
		err = fmt.Errorf("%w '%s': %v", ErrWrite, workPath, err)
		return nil, err
	}

	if workPath != outputPath {
		if err = publish(workPath, outputPath); err != nil {
			err = fmt.Errorf("%w '%s': %v", ErrWrite, outputPath, err)
			return nil, err
		}
	}

	rep = report.Assemble(report.Input{
		OutputPath:    outputPath,
		Mode:          string(p.mode),
		Ratings:       static.ratings,
		Feedback:      static.feedback,
		Assessment:    static.assessment,
		FrameFeedback: stats.cues,
		Frames: report.FrameStats{
			Written:           written,
			WithoutDetection:  stats.withoutDetection,
			InferenceFailures: stats.inferenceFailures,
		},
		FPS:      props.FPS,
		Width:    props.Width,
		Height:   props.Height,
		Duration: time.Since(start),
	})

	log.WithFields(logrus.Fields{
		"written":           written,
		"without_detection": stats.withoutDetection,
		"duration":          rep.Duration,
	}).Info("Process: done")

	return rep, nil
}

//analyze is the middle stage: color conversion, pose inference, feedback and annotation.
//Inference errors never stop it, the frame is handled as having no detection.
func (p *Pipeline) analyze(ctx context.Context, log logrus.FieldLogger, static *staticFeedback, stats *frameStats, in <-chan frameItem, out chan<- frameItem) error {
	layout := RatingLayout
	if p.mode == ModeGeometry {
		layout = PostureLayout
	}

	rgb := gocv.NewMat()
	defer rgb.Close()

	for {
		var item frameItem
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next, ok := <-in:
			if !ok {
				return nil
			}
			item = next
		}

		gocv.CvtColor(item.mat, &rgb, gocv.ColorBGRToRGB)

		inferStart := time.Now()
		landmarks, err := p.source.Infer(ctx, rgb)
		p.metrics.ObserveInference(time.Since(inferStart))
		if err != nil {
			if ctx.Err() != nil {
				item.mat.Close()
				return ctx.Err()
			}
			stats.inferenceFailures++
			p.metrics.InferenceFailed()
			entry := log.WithError(err).WithField("frame", item.index)
			if stats.inferenceFailures == 1 {
				entry.Warn("analyze: pose inference failed, frame treated as undetected")
			} else {
				entry.Debug("analyze: pose inference failed, frame treated as undetected")
			}
			landmarks = nil
		}

		if !landmarks.Detected() {
			stats.withoutDetection++
			p.metrics.FrameWithoutDetection()
		}

		lines := static.lines
		if p.mode == ModeGeometry {
			cues := pose.ExtractPosture(landmarks)
			stats.record(cues)
			lines = make([]OverlayLine, len(cues))
			for i, c := range cues {
				lines[i] = OverlayLine{Text: c.Message, Color: c.Tier.Color()}
			}
		}

		annotated := Annotate(item.mat, landmarks, lines, layout)
		item.mat.Close()

		select {
		case <-ctx.Done():
			annotated.Close()
			return ctx.Err()
		case out <- frameItem{index: item.index, mat: annotated}:
		}
	}
}

//writeFrames is the encode stage, a failed write is fatal
func (p *Pipeline) writeFrames(ctx context.Context, enc Encoder, in <-chan frameItem) (int, error) {
	written := 0
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		case item, ok := <-in:
			if !ok {
				return written, nil
			}
			if item.index != written {
				item.mat.Close()
				return written, fmt.Errorf("%w: got frame %d, expected %d", ErrWrite, item.index, written)
			}
			err := enc.Write(item.mat)
			item.mat.Close()
			if err != nil {
				return written, fmt.Errorf("%w: frame %d: %v", ErrWrite, item.index, err)
			}
			written++
			p.metrics.FrameProcessed()
		}
	}
}

//publish moves a finished video from the work directory to its output path
func publish(workPath, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return os.Rename(workPath, outputPath)
}
