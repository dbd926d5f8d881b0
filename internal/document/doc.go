// Package document defines the plain-data model of a decoded sprite file
// and the Decoder contract the pipeline consumes it through.
//
// Parsing the Aseprite binary format is deliberately out of scope; callers
// inject a Decoder built on whatever parser they use. Package spriteset
// provides a manifest-based decoder for tooling and tests.
package document
