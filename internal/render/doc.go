// Package render assembles captioned images and the source audio into an
// MP4 with ffmpeg.
//
// Images are fed through the concat demuxer: each entry becomes a file line
// followed by its display duration, and the last file is repeated so its
// duration is honoured. The audio stream is mapped unmodified into the
// output and encoded alongside an H.264 video track at a fixed frame rate.
package render
