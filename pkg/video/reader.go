package video

import (
	"context"

	"gocv.io/x/gocv"
)

//readFrames is the decode stage. It sends first (already read by the caller) and then every frame
//dec yields, in order, through framesC. A failed read ends the stream. Because this function is the
//only one writing to framesC, it closes it before returning. It returns how many frames were sent.
func readFrames(ctx context.Context, dec Decoder, first gocv.Mat, framesC chan<- frameItem) (int, error) {
	defer close(framesC)

	next := frameItem{index: 0, mat: first}
	sent := 0
	for {
		select {
		case <-ctx.Done():
			next.mat.Close()
			return sent, ctx.Err()
		case framesC <- next:
			sent++
		}

		mat := gocv.NewMat()
		if !dec.Read(&mat) {
			mat.Close()
			return sent, nil
		}
		next = frameItem{index: sent, mat: mat}
	}
}

//drain closes every frame left in framesC, it must only be called once the sender is done
func drain(framesC <-chan frameItem) {
	for item := range framesC {
		item.mat.Close()
	}
}
