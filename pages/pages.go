package pages

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tsawler/folio/core"
)

// Page dimensions in points for the common paper sizes.
const (
	LetterWidth  = 612
	LetterHeight = 792
	A4Width      = 595
	A4Height     = 842
)

// Rect builds a rectangle array [llx lly urx ury]. Whole coordinates are
// stored as integers so they serialize without a decimal point.
func Rect(llx, lly, urx, ury float64) core.Array {
	return core.Array{coord(llx), coord(lly), coord(urx), coord(ury)}
}

func coord(v float64) core.Object {
	if v == math.Trunc(v) {
		return core.Integer(int64(v))
	}
	return core.Real(v)
}

// Letter returns a US Letter media box.
func Letter() core.Array { return Rect(0, 0, LetterWidth, LetterHeight) }

// A4 returns an A4 media box.
func A4() core.Array { return Rect(0, 0, A4Width, A4Height) }

// NewPage builds a page dictionary with the given media box. The Parent
// entry is filled in when the page is added to a writer.
func NewPage(mediaBox core.Array) *core.Dict {
	page := core.NewDict()
	page.Set("Type", core.Name("Page"))
	page.Set("MediaBox", mediaBox)
	return page
}

// ProcedureSet returns the full ProcSet array. The entry is obsolete in
// current viewers but harmless, and older tooling still expects it.
func ProcedureSet() core.Array {
	return core.Array{
		core.Name("PDF"), core.Name("Text"),
		core.Name("ImageB"), core.Name("ImageC"), core.Name("ImageI"),
	}
}

// Resources builds a resource dictionary carrying the procedure set and
// the given named XObjects. Names are inserted in sorted order so the
// dictionary serializes identically for identical input.
func Resources(xobjects map[core.Name]core.Object) *core.Dict {
	res := core.NewDict()
	res.Set("ProcSet", ProcedureSet())
	if len(xobjects) > 0 {
		names := make([]core.Name, 0, len(xobjects))
		for name := range xobjects {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
		xd := core.NewDict()
		for _, name := range names {
			xd.Set(name, xobjects[name])
		}
		res.Set("XObject", xd)
	}
	return res
}

// DeviceRGB and DeviceGray name the two plain colour spaces.
const (
	DeviceRGB  = core.Name("DeviceRGB")
	DeviceGray = core.Name("DeviceGray")
)

// Indexed builds an indexed colour space over a base space: hival is the
// largest palette index and lookup holds the palette bytes.
func Indexed(base core.Name, hival int, lookup []byte) core.Array {
	return core.Array{core.Name("Indexed"), base, core.Integer(hival), core.String(lookup)}
}

// Drawer builds a content stream that paints the named XObject into a
// width-by-height box at (x, y) on the page.
func Drawer(name core.Name, width, height, x, y float64) *core.Stream {
	ops := fmt.Sprintf("q\n%s 0 0 %s %s %s cm\n%s Do\nQ",
		num(width), num(height), num(x), num(y), name.String())
	return core.NewStream(nil, []byte(ops))
}

func num(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// FitRect scales a width-by-height image to fit inside a box while
// preserving aspect ratio, returning the placed size and the offsets that
// center it.
func FitRect(imgWidth, imgHeight, boxWidth, boxHeight float64) (w, h, x, y float64) {
	if imgWidth <= 0 || imgHeight <= 0 {
		return 0, 0, 0, 0
	}
	scale := boxWidth / imgWidth
	if s := boxHeight / imgHeight; s < scale {
		scale = s
	}
	w = imgWidth * scale
	h = imgHeight * scale
	x = (boxWidth - w) / 2
	y = (boxHeight - h) / 2
	return w, h, x, y
}

// DateTime formats a time in the document date form, D:YYYYMMDDHHMMSS.
func DateTime(t time.Time) core.String {
	return core.String(t.Format("D:20060102150405"))
}

// Info builds a document information dictionary. Empty fields are left
// out; non-ASCII text is stored as UTF-16BE text strings.
func Info(title, author, producer string, created time.Time) (*core.Dict, error) {
	info := core.NewDict()
	for _, entry := range []struct {
		key  core.Name
		text string
	}{
		{"Title", title},
		{"Author", author},
		{"Producer", producer},
	} {
		if entry.text == "" {
			continue
		}
		s, err := core.TextString(entry.text)
		if err != nil {
			return nil, fmt.Errorf("info %s: %w", entry.key, err)
		}
		info.Set(entry.key, s)
	}
	if !created.IsZero() {
		info.Set("CreationDate", DateTime(created))
	}
	return info, nil
}
