// Package subtitles reads SRT caption files into ordered Caption records.
//
// Parsing is strict: a block without a timestamp or text fails the whole
// file with a *ParseError that names the offending line. ValidateSRTContent
// offers a softer report used by the planning and check commands.
package subtitles
