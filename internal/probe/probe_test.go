package probe

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// Yi dash cam clip: H.264 1920x1080 with AAC mono audio.
const sampleClip = `{
  "programs": [],
  "streams": [
    { "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080 },
    { "codec_name": "aac", "codec_type": "audio" }
  ],
  "format": { "duration": "60.060000" }
}`

// EMR clip recorded with the microphone off and a data track first.
const sampleSilent = `{
  "streams": [
    { "codec_name": "bin_data", "codec_type": "data" },
    { "codec_name": "h264", "codec_type": "video", "width": 2304, "height": 1296 },
    { "codec_name": "mjpeg", "codec_type": "video", "width": 320, "height": 180 }
  ],
  "format": { "duration": "" }
}`

func TestParseJSON(t *testing.T) {
	r, err := ParseJSON([]byte(sampleClip))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if r.Video.Codec != "h264" || r.Video.Width != 1920 || r.Video.Height != 1080 {
		t.Errorf("video: got %+v", r.Video)
	}
	if got := r.Resolution(); got != "1920x1080" {
		t.Errorf("Resolution() = %q, want 1920x1080", got)
	}
	if !r.HasAudio {
		t.Error("HasAudio should be true")
	}
	if r.Duration != 60.06 {
		t.Errorf("Duration = %v, want 60.06", r.Duration)
	}
}

func TestParseJSON_FirstVideoStreamWins(t *testing.T) {
	r, err := ParseJSON([]byte(sampleSilent))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if got := r.Resolution(); got != "2304x1296" {
		t.Errorf("Resolution() = %q, want 2304x1296", got)
	}
	if r.HasAudio {
		t.Error("HasAudio should be false")
	}
	if r.Duration != 0 {
		t.Errorf("Duration = %v, want 0 for empty value", r.Duration)
	}
}

func TestParseJSON_Failures(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "1920x1080"},
		{"no streams", `{"streams": [], "format": {}}`},
		{"audio only", `{"streams": [{"codec_type": "audio", "codec_name": "aac"}]}`},
		{"zero geometry", `{"streams": [{"codec_type": "video", "codec_name": "h264"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tc.data))
			if !errors.Is(err, ErrProbeFailed) {
				t.Errorf("got %v, want ErrProbeFailed", err)
			}
		})
	}
}

func TestProbe_MissingBinary(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "no-such-ffprobe"))
	_, err := p.Probe(context.Background(), "clip.mp4")
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("got %v, want ErrProbeFailed", err)
	}
}

func TestProbe_NonMediaFile(t *testing.T) {
	bin, err := exec.LookPath("ffprobe")
	if err != nil {
		t.Skip("ffprobe not in PATH")
	}
	path := filepath.Join(t.TempDir(), "2019_0613_174102_001_174102.MP4")
	if err := os.WriteFile(path, []byte("not a video"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = New(bin).Probe(context.Background(), path)
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("got %v, want ErrProbeFailed", err)
	}
}
