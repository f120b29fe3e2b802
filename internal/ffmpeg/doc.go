// Package ffmpeg turns an EncodePlan into an ffmpeg command line and runs it.
//
// Build assembles the argument tokens; they are never joined into a shell
// string. WriteConcatList produces the concat demuxer input for Basic plans.
// Invoker resolves the overwrite decision for existing outputs, runs the
// command through a Runner, and maps a refused overwrite to ExitSkipped.
package ffmpeg
