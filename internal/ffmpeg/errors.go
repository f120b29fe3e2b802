package ffmpeg

import "regexp"

// Pre-compiled regexes for classifying ffmpeg stderr into a short failure
// reason for the log. Checked in order by [Classify].
var (
	reAlreadyExists = regexp.MustCompile(
		`already exists\. Exiting|Not overwriting - exiting`)

	reMissingAudio = regexp.MustCompile(
		`Stream specifier ':a' in filtergraph description .* matches no streams|` +
			`matches no streams`)

	reCorruptInput = regexp.MustCompile(
		`(?i)moov atom not found|Invalid data found when processing input|` +
			`error while decoding|corrupt`)

	reUnknownEncoder = regexp.MustCompile(
		`Unknown encoder|Encoder not found|Unrecognized option 'preset'`)

	reFilterError = regexp.MustCompile(
		`(?i)Error (initializing|reinitializing) filters?|No such filter|` +
			`Error parsing (global )?options|Invalid argument`)
)

// Reason is a coarse classification of an ffmpeg failure.
type Reason string

const (
	ReasonUnknown        Reason = ""
	ReasonAlreadyExists  Reason = "output already exists"
	ReasonMissingAudio   Reason = "a clip has no audio stream"
	ReasonCorruptInput   Reason = "corrupt or truncated input"
	ReasonUnknownEncoder Reason = "encoder not available in this ffmpeg build"
	ReasonFilterError    Reason = "invalid filter or option"
)

// Classify returns the first matching reason for stderr.
func Classify(stderr string) Reason {
	switch {
	case reAlreadyExists.MatchString(stderr):
		return ReasonAlreadyExists
	case reMissingAudio.MatchString(stderr):
		return ReasonMissingAudio
	case reUnknownEncoder.MatchString(stderr):
		return ReasonUnknownEncoder
	case reCorruptInput.MatchString(stderr):
		return ReasonCorruptInput
	case reFilterError.MatchString(stderr):
		return ReasonFilterError
	}
	return ReasonUnknown
}
