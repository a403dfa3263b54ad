package imaging

import (
	"fmt"
	"image"

	"github.com/tsawler/folio/core"
	"github.com/tsawler/folio/internal/filters"
	"github.com/tsawler/folio/pages"
	"github.com/tsawler/folio/writer"
)

// CodecData is an encoded image payload together with the filter a reader
// needs to undo it. Params carries the filter's DecodeParms, when any.
type CodecData struct {
	Filter core.Name
	Data   []byte
	Params *core.Dict
}

// Flate compresses raw sample data for a FlateDecode image.
func Flate(raw []byte) (CodecData, error) {
	data, err := filters.FlateEncode(raw)
	if err != nil {
		return CodecData{}, err
	}
	return CodecData{Filter: "FlateDecode", Data: data}, nil
}

// ASCIIHex encodes raw sample data for an ASCIIHexDecode image. It
// inflates the payload to twice its size and exists for debugging, where
// a readable body is worth the bytes.
func ASCIIHex(raw []byte) CodecData {
	return CodecData{Filter: "ASCIIHexDecode", Data: filters.ASCIIHexEncode(raw)}
}

// XObject builds an image XObject stream: the image dimensions and sample
// layout in the dictionary, the encoded payload as the body.
func XObject(width, height int, colourSpace core.Object, bitsPerComponent int, codec CodecData, interpolate bool) *core.Stream {
	d := core.NewDict()
	d.Set("Type", core.Name("XObject"))
	d.Set("Subtype", core.Name("Image"))
	d.Set("Width", core.Integer(width))
	d.Set("Height", core.Integer(height))
	d.Set("ColorSpace", colourSpace)
	d.Set("BitsPerComponent", core.Integer(bitsPerComponent))
	if interpolate {
		d.Set("Interpolate", core.Boolean(true))
	}
	d.Set("Filter", codec.Filter)
	if codec.Params != nil {
		d.Set("DecodeParms", codec.Params)
	}
	return core.NewStream(d, codec.Data)
}

// FromImage converts a decoded image to a flate-compressed DeviceRGB
// XObject, 8 bits per component, rows top to bottom.
func FromImage(img image.Image) (*core.Stream, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image has degenerate bounds %v", b)
	}

	raw := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			raw = append(raw, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}

	codec, err := Flate(raw)
	if err != nil {
		return nil, err
	}
	return XObject(w, h, pages.DeviceRGB, 8, codec, false), nil
}

// imageName is the resource name pages built here bind their image under.
const imageName = core.Name("Im1")

// AddImagePage appends a page to the writer that draws the image XObject
// scaled to fit the media box, centered. It returns the page's indirect.
func AddImagePage(w *writer.Writer, xobj *core.Stream, box core.Array) (*core.Indirect, error) {
	imgW, ok := xobj.Dict.GetInt("Width")
	if !ok {
		return nil, &core.ValueError{Msg: "image XObject has no Width"}
	}
	imgH, ok := xobj.Dict.GetInt("Height")
	if !ok {
		return nil, &core.ValueError{Msg: "image XObject has no Height"}
	}
	boxW, boxH, err := boxSize(box)
	if err != nil {
		return nil, err
	}

	fw, fh, x, y := pages.FitRect(float64(imgW), float64(imgH), boxW, boxH)
	imgRef := w.AddObject(xobj)
	content := w.AddObject(pages.Drawer(imageName, fw, fh, x, y))

	page := pages.NewPage(box)
	page.Set("Resources", pages.Resources(map[core.Name]core.Object{imageName: imgRef}))
	page.Set("Contents", content)
	return w.AddPage(page), nil
}

// boxSize extracts the width and height of a rectangle array.
func boxSize(box core.Array) (w, h float64, err error) {
	if box.Len() != 4 {
		return 0, 0, &core.ValueError{Msg: fmt.Sprintf("media box has %d elements, want 4", box.Len())}
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		switch v := box.Get(i).(type) {
		case core.Integer:
			vals[i] = float64(v)
		case core.Real:
			vals[i] = float64(v)
		default:
			return 0, 0, &core.ValueError{Msg: fmt.Sprintf("media box element %d is %s", i, v.Kind())}
		}
	}
	return vals[2] - vals[0], vals[3] - vals[1], nil
}
