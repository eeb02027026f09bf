package content

import "github.com/google/uuid"

// Phase is the ProcessingState variant (spec.md §4.D "state ∈ {InQueue
// (position), Processing, Completed(contentId), Failed}").
type Phase int

const (
	PhaseInQueue Phase = iota
	PhaseProcessing
	PhaseCompleted
	PhaseFailed
)

// ProcessingState is the full per-slot processing record.
type ProcessingState struct {
	ProcessingID uuid.UUID
	Key          ProcessingKey

	Phase        Phase
	QueuePosition int       // meaningful only when Phase == PhaseInQueue
	ContentID    uuid.UUID // meaningful only when Phase == PhaseCompleted

	TempRawPath string
	TempOutPath string
	Params      TranscodeParams
}

// TranscodeParams carries the transcoder's fixed knobs, per slot.
type TranscodeParams struct {
	JPEGQuality     int
	MinResolutionPx int
	RunFaceDetect   bool
}

// DefaultTranscodeParams matches spec.md §4.D's fixed quality / >=512px /
// optional face-detection contract.
func DefaultTranscodeParams(runFaceDetect bool) TranscodeParams {
	return TranscodeParams{
		JPEGQuality:     85,
		MinResolutionPx: 512,
		RunFaceDetect:   runFaceDetect,
	}
}
