// Package probe runs ffprobe against dash cam clips and returns the fields
// the planner needs: video geometry, codec, duration and audio presence.
// One JSON call is made per clip.
package probe
