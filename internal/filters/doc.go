// Package filters implements the stream filters the engine's collaborators
// rely on: Flate (with PNG and TIFF predictors), ASCIIHex, ASCII85, and
// CCITT Group 3/4 fax decoding, plus the encode direction for the filters
// the write path produces.
//
// The parsing and serialization layers never look inside stream payloads;
// all codec work funnels through here.
package filters
