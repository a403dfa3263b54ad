package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Params carries decode parameters from a stream dictionary, translated to
// Go primitives. Common keys are Predictor, Columns, Colors, and
// BitsPerComponent.
type Params map[string]interface{}

// FlateDecode decompresses zlib/deflate data and, when the parameters ask
// for one, undoes the row predictor that was applied before compression.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open zlib stream: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}

	switch predictor := params.Int("Predictor", 1); {
	case predictor == 1:
		return raw, nil
	case predictor == 2:
		return undoTIFFPredictor(raw, params)
	case predictor >= 10 && predictor <= 15:
		return undoPNGPredictor(raw, params)
	default:
		return nil, fmt.Errorf("unsupported predictor %d", predictor)
	}
}

// FlateEncode compresses data with zlib at the default level. The write
// path uses it to produce FlateDecode stream payloads.
func FlateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return buf.Bytes(), nil
}

// undoTIFFPredictor reverses TIFF predictor 2: each sample was stored as a
// difference from the sample one pixel to its left.
func undoTIFFPredictor(data []byte, params Params) ([]byte, error) {
	columns := params.Int("Columns", 1)
	colors := params.Int("Colors", 1)
	if bpc := params.Int("BitsPerComponent", 8); bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor supports 8 bits per component, got %d", bpc)
	}

	rowSize := columns * colors
	if rowSize == 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d does not divide into rows of %d", len(data), rowSize)
	}

	out := make([]byte, len(data))
	for row := 0; row*rowSize < len(data); row++ {
		base := row * rowSize
		for col := 0; col < rowSize; col++ {
			if col < colors {
				out[base+col] = data[base+col]
			} else {
				out[base+col] = data[base+col] + out[base+col-colors]
			}
		}
	}
	return out, nil
}

// undoPNGPredictor reverses the PNG row filters. Every stored row begins
// with a filter-type byte (0 none, 1 sub, 2 up, 3 average, 4 paeth)
// followed by the filtered samples.
func undoPNGPredictor(data []byte, params Params) ([]byte, error) {
	columns := params.Int("Columns", 1)
	colors := params.Int("Colors", 1)
	if bpc := params.Int("BitsPerComponent", 8); bpc != 8 {
		return nil, fmt.Errorf("PNG predictor supports 8 bits per component, got %d", bpc)
	}

	width := columns * colors
	rowSize := width + 1
	if len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d does not divide into rows of %d", len(data), rowSize)
	}

	rows := len(data) / rowSize
	out := make([]byte, rows*width)
	for row := 0; row < rows; row++ {
		filter := data[row*rowSize]
		src := data[row*rowSize+1 : (row+1)*rowSize]
		dst := out[row*width : (row+1)*width]
		var prev []byte
		if row > 0 {
			prev = out[(row-1)*width : row*width]
		}
		if err := unfilterPNGRow(filter, src, dst, prev, colors); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
	}
	return out, nil
}

func unfilterPNGRow(filter byte, src, dst, prev []byte, bpp int) error {
	left := func(i int) byte {
		if i >= bpp {
			return dst[i-bpp]
		}
		return 0
	}
	up := func(i int) byte {
		if prev != nil {
			return prev[i]
		}
		return 0
	}
	upLeft := func(i int) byte {
		if prev != nil && i >= bpp {
			return prev[i-bpp]
		}
		return 0
	}

	for i := range src {
		var predicted byte
		switch filter {
		case 0:
		case 1:
			predicted = left(i)
		case 2:
			predicted = up(i)
		case 3:
			predicted = byte((int(left(i)) + int(up(i))) / 2)
		case 4:
			predicted = paeth(left(i), up(i), upLeft(i))
		default:
			return fmt.Errorf("unknown PNG filter type %d", filter)
		}
		dst[i] = src[i] + predicted
	}
	return nil
}

// paeth picks the neighbor closest to the linear prediction a+b-c, as
// defined by the PNG specification.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Int returns an integer parameter, falling back to def when the key is
// missing or holds a non-numeric value.
func (p Params) Int(key string, def int) int {
	if p == nil {
		return def
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Bool returns a boolean parameter, falling back to def when the key is
// missing or holds a non-boolean value.
func (p Params) Bool(key string, def bool) bool {
	if p == nil {
		return def
	}
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}
