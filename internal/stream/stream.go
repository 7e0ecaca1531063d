// Package stream produces an MJPEG part stream from a frame source.
package stream

import (
	"bytes"
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/capture"
)

// Boundary separates parts in the multipart/x-mixed-replace response.
const Boundary = "frame"

// ContentType is the response content type for a Streamer's output.
const ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

// Streamer turns frames from a FrameSource into MJPEG parts.
type Streamer struct {
	source capture.FrameSource
}

// New creates a Streamer reading from source.
func New(source capture.FrameSource) *Streamer {
	return &Streamer{source: source}
}

// Stream starts a producer that reads, encodes and sends one part per frame.
// The channel is closed when a frame cannot be read or ctx is done; no error
// part is ever emitted. Frames that fail to encode are skipped.
func (s *Streamer) Stream(ctx context.Context) <-chan []byte {
	parts := make(chan []byte)

	go func() {
		defer close(parts)

		for ctx.Err() == nil {
			frame, err := s.source.ReadFrame()
			if err != nil {
				log.Debug().Err(err).Msg("stream ended: capture failed")
				return
			}

			jpeg, err := encodeJPEG(frame)
			frame.Close()
			if err != nil {
				log.Warn().Err(err).Msg("skipping frame")
				continue
			}

			select {
			case parts <- Part(jpeg):
			case <-ctx.Done():
				return
			}
		}
	}()

	return parts
}

// Part frames one JPEG image as a multipart section.
func Part(jpeg []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(jpeg) + 64)
	buf.WriteString("--" + Boundary + "\r\n")
	buf.WriteString("Content-Type: image/jpeg\r\n\r\n")
	buf.Write(jpeg)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func encodeJPEG(frame *gocv.Mat) ([]byte, error) {
	if frame.Empty() {
		return nil, errors.New("encode jpeg: empty frame")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	// Copy out before the native buffer is released.
	return bytes.Clone(buf.GetBytes()), nil
}
