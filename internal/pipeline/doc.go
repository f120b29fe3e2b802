// Package pipeline orchestrates one archive run: card discovery, trip
// segmentation, per-trip probe/plan/invoke/verify, timestamp preservation,
// photo copying and the end-of-run failure report.
//
// Trips run strictly one after another. A trip failure is recorded and the
// run continues; only a cancelled context stops it early.
package pipeline
