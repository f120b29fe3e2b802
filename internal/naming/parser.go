package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMalformedName is returned for clip filenames that do not follow the
// <a>_<b>_<c>_..._<HHMMSS>.<ext> convention.
var ErrMalformedName = errors.New("malformed clip name")

// keyTokens is the number of leading tokens that form the trip date key.
const keyTokens = 3

// Clip is one source video file. Everything except Resolution is derived
// from the filename; Resolution is filled in by the prober.
type Clip struct {
	Path           string
	TripDateKey    string
	CaptureSeconds float64 // Seconds since local midnight.
	CaptureToken   string  // Raw HHMMSS token, reused in the output name.
	Resolution     string  // "WxH", empty until probed.
}

// Name returns the clip's base filename.
func (c Clip) Name() string { return filepath.Base(c.Path) }

// ParseClip derives the trip key and capture time from path's base name.
func ParseClip(path string) (Clip, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	tokens := strings.Split(stem, "_")
	if len(tokens) <= keyTokens {
		return Clip{}, fmt.Errorf("%w: %q has %d tokens, want at least %d",
			ErrMalformedName, base, len(tokens), keyTokens+1)
	}

	token := tokens[len(tokens)-1]
	secs, err := ParseHHMMSS(token)
	if err != nil {
		return Clip{}, fmt.Errorf("%w: %q: %v", ErrMalformedName, base, err)
	}

	return Clip{
		Path:           path,
		TripDateKey:    strings.Join(tokens[:keyTokens], "_"),
		CaptureSeconds: secs,
		CaptureToken:   token,
	}, nil
}

// ParseHHMMSS converts a 6-digit time token to seconds since midnight.
func ParseHHMMSS(token string) (float64, error) {
	if len(token) != 6 {
		return 0, fmt.Errorf("time token %q is not 6 digits", token)
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return 0, fmt.Errorf("time token %q is not numeric", token)
		}
	}
	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(token[2*i : 2*i+2])
		if err != nil {
			return 0, fmt.Errorf("time token %q is not numeric", token)
		}
		parts[i] = n
	}
	h, m, s := parts[0], parts[1], parts[2]
	if h > 23 || m > 59 || s > 59 {
		return 0, fmt.Errorf("time token %q is out of range", token)
	}
	return float64(h*3600 + m*60 + s), nil
}
