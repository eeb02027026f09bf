package content

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"github.com/nfnt/resize"
)

// FaceDetector runs optional face detection over a decoded image. No face-
// detection library appears anywhere in the example pack, so this is a
// pluggable seam: DefaultFaceDetector below is a no-op, and a real
// implementation can be substituted without touching the transcoder.
type FaceDetector interface {
	DetectFace(img image.Image) (found bool, err error)
}

// DefaultFaceDetector never reports a face. Swapped out when a detector
// dependency is introduced.
type DefaultFaceDetector struct{}

func (DefaultFaceDetector) DetectFace(image.Image) (bool, error) { return false, nil }

// ErrResolutionTooLow is returned when the decoded image is smaller than
// params.MinResolutionPx on its shorter side.
var ErrResolutionTooLow = fmt.Errorf("content: image resolution below minimum")

// TranscodeResult is what the worker needs after a successful transcode.
type TranscodeResult struct {
	OutputBytes  []byte
	FaceDetected bool
}

// Transcoder decodes the raw upload, enforces the minimum resolution,
// optionally runs face detection, and re-encodes as JPEG at a fixed
// quality (spec.md §4.D).
type Transcoder struct {
	detector FaceDetector
}

// NewTranscoder returns a Transcoder using detector, or DefaultFaceDetector
// if nil.
func NewTranscoder(detector FaceDetector) *Transcoder {
	if detector == nil {
		detector = DefaultFaceDetector{}
	}
	return &Transcoder{detector: detector}
}

// Transcode reads rawPath, validates and re-encodes it, and returns the
// result. Intended to run on a worker pool (internal/workpool), matching
// spec.md §4.D "implementations may run this blocking work on a thread
// pool".
func (t *Transcoder) Transcode(rawPath string, params TranscodeParams) (TranscodeResult, error) {
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return TranscodeResult{}, fmt.Errorf("read raw upload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return TranscodeResult{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	shorter := bounds.Dx()
	if bounds.Dy() < shorter {
		shorter = bounds.Dy()
	}
	if shorter < params.MinResolutionPx {
		return TranscodeResult{}, ErrResolutionTooLow
	}

	var faceDetected bool
	if params.RunFaceDetect {
		faceDetected, err = t.detector.DetectFace(img)
		if err != nil {
			return TranscodeResult{}, fmt.Errorf("face detection: %w", err)
		}
	}

	// resize.Resize with 0,0 keeps the original dimensions and returns the
	// decoded image unchanged; no scaling or color normalization happens
	// before the JPEG encode.
	normalized := resize.Resize(0, 0, img, resize.Lanczos3)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, normalized, &jpeg.Options{Quality: params.JPEGQuality}); err != nil {
		return TranscodeResult{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return TranscodeResult{OutputBytes: out.Bytes(), FaceDetected: faceDetected}, nil
}
