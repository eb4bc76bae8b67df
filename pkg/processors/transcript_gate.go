package processors

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/harunnryd/vaani/pkg/frames"
	"github.com/harunnryd/vaani/pkg/metrics"
	"github.com/harunnryd/vaani/pkg/pipeline"
	"github.com/harunnryd/vaani/pkg/redact"
)

// TranscriptGate scores how likely a user transcript is recognition
// garbage (hold music, crosstalk, line noise decoded as words) and
// annotates the frame. It never blocks: dropping a real user turn is far
// worse than sending a noisy one to the model, so the score is logged
// for tuning and left for downstream consumers to act on.
type TranscriptGate struct {
	threshold float64
	obs       metrics.Observer
}

var _ pipeline.FrameProcessor = (*TranscriptGate)(nil)

func NewTranscriptGate(threshold float64) *TranscriptGate {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.7
	}
	return &TranscriptGate{threshold: threshold}
}

func (t *TranscriptGate) Name() string { return "transcript_gate" }

func (t *TranscriptGate) SetObserver(obs metrics.Observer) { t.obs = obs }

func (t *TranscriptGate) Process(f frames.Frame) ([]frames.Frame, error) {
	if f.Kind() != frames.KindText {
		return []frames.Frame{f}, nil
	}
	tf := f.(frames.TextFrame)
	meta := tf.Meta()
	if meta[frames.MetaSource] != "user" {
		return []frames.Frame{f}, nil
	}
	score := Suspicion(tf.Text())
	meta[frames.MetaSuspicion] = fmt.Sprintf("%.2f", score)
	if score >= t.threshold {
		slog.Warn("suspicious_transcript",
			slog.String("stream_id", meta[frames.MetaStreamID]),
			slog.Float64("score", score),
			slog.String("text", redact.Text(tf.Text())))
		if t.obs != nil {
			t.obs.RecordEvent(metrics.MetricsEvent{
				Name:  metrics.EventSuspicion,
				Time:  time.Now(),
				Value: score,
				Tags:  map[string]string{"stream_id": meta[frames.MetaStreamID]},
			})
		}
	}
	return []frames.Frame{frames.NewTextFrame(meta[frames.MetaStreamID], tf.PTS(), tf.Text(), meta)}, nil
}

// Suspicion scores a transcript in [0,1]. The signals are crude on
// purpose: the gate runs on every final transcript and must stay cheap.
func Suspicion(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 1
	}
	words := strings.Fields(trimmed)

	var score float64
	// A single token repeated over and over is the classic hold-music
	// decode.
	if len(words) >= 4 {
		uniq := make(map[string]struct{}, len(words))
		for _, w := range words {
			uniq[strings.ToLower(w)] = struct{}{}
		}
		if len(uniq)*3 <= len(words) {
			score += 0.6
		}
	}

	var letters, others int
	for _, r := range trimmed {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r):
		default:
			others++
		}
	}
	if letters == 0 {
		score += 0.6
	} else if others > letters {
		score += 0.4
	}

	// Phone turns are short; a wall of text is a stuck recognizer.
	if len(words) > 80 {
		score += 0.3
	}

	if score > 1 {
		return 1
	}
	return score
}
