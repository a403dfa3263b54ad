// Package imaging turns raster images into document objects: encoded
// payloads with their filters, image XObject streams, and whole pages
// that draw an image scaled into a media box.
package imaging
