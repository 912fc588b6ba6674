// Package pipeline runs a complete render: parse the subtitles, probe the
// audio, plan segments, fetch and caption images, then assemble the video.
//
// A Runner is single-threaded. Each Run holds an exclusive lock beside the
// output file, works inside a scoped temporary directory under
// paths.work_dir and records its outcome in the render history before
// notifying. The temporary directory is removed on every exit path.
package pipeline
