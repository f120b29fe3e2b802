// Package planner decides how each trip is encoded and produces an
// EncodePlan that the ffmpeg package turns into a command line.
//
// A trip whose clips share one resolution and needs no denoise filter gets a
// Basic plan: the concat demuxer reads a list file and the streams are copied
// or encoded with a single -vf chain. Every other trip gets a Complex plan:
// one -i per clip and a filter graph that normalizes each input before a
// concat filter joins them.
package planner
