package video

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

type captureDecoder struct {
	cap *gocv.VideoCapture
}

//OpenFile opens a video file for decoding
func OpenFile(path string) (Decoder, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, err
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, errors.New("OpenFile: capture is not opened")
	}

	return &captureDecoder{cap: cap}, nil
}

func (d *captureDecoder) Props() StreamProps {
	return StreamProps{
		FPS:        d.cap.Get(gocv.VideoCaptureFPS),
		Width:      int(d.cap.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(d.cap.Get(gocv.VideoCaptureFrameHeight)),
		FrameCount: int(d.cap.Get(gocv.VideoCaptureFrameCount)),
	}
}

func (d *captureDecoder) Read(dst *gocv.Mat) bool {
	return d.cap.Read(dst) && !dst.Empty()
}

func (d *captureDecoder) Close() error {
	return d.cap.Close()
}

type fileEncoder struct {
	w             *gocv.VideoWriter
	width, height int
}

//CreateFile opens an output container at path with given fourcc codec, frame rate and size
func CreateFile(path, codec string, props StreamProps) (Encoder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	w, err := gocv.VideoWriterFile(path, codec, props.FPS, props.Width, props.Height, true)
	if err != nil {
		return nil, err
	}
	if !w.IsOpened() {
		w.Close()
		return nil, fmt.Errorf("CreateFile: writer for '%s' (codec %s) is not opened", path, codec)
	}

	return &fileEncoder{w: w, width: props.Width, height: props.Height}, nil
}

//Write rejects frames of another size, OpenCV would silently drop them
func (e *fileEncoder) Write(frame gocv.Mat) error {
	if frame.Cols() != e.width || frame.Rows() != e.height {
		return fmt.Errorf("frame is %dx%d, writer expects %dx%d", frame.Cols(), frame.Rows(), e.width, e.height)
	}
	return e.w.Write(frame)
}

func (e *fileEncoder) Close() error {
	return e.w.Close()
}
