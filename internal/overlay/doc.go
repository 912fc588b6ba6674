// Package overlay draws caption text onto generated images.
//
// The caption sits on a translucent black box, centred horizontally and
// lifted a fixed offset above the bottom edge. Long text is not wrapped.
// Every processed image is rewritten as PNG, including images that receive
// no caption.
package overlay
