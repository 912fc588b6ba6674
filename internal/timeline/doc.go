// Package timeline turns parsed captions into the flat, time-contiguous
// sequence of segments that drives image planning.
//
// Interpolate fills the audio time not covered by any caption with gap
// segments. PlanCaption divides a caption's span evenly across its text
// lines. Plan combines both into the ordered planning sequence.
package timeline
