package core

import (
	"fmt"

	"github.com/tsawler/folio/internal/filters"
)

// Decode returns the stream payload with its filter chain undone. Streams
// without a Filter entry come back as-is. The Filter entry may be a single
// name or an array of names applied in order, with DecodeParms aligned to
// it the same way.
func (s *Stream) Decode() ([]byte, error) {
	names, params, err := s.filterChain()
	if err != nil {
		return nil, err
	}
	data := s.Data
	for i, name := range names {
		data, err = applyFilter(name, data, params[i])
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return data, nil
}

// filterChain normalizes the Filter and DecodeParms entries into parallel
// slices. Missing or null parameters become nil.
func (s *Stream) filterChain() ([]Name, []filters.Params, error) {
	filter := s.Dict.Get("Filter")
	if filter == nil {
		return nil, nil, nil
	}

	var names []Name
	switch f := filter.(type) {
	case Name:
		names = []Name{f}
	case Array:
		for _, elem := range f {
			n, ok := elem.(Name)
			if !ok {
				return nil, nil, &ValueError{Msg: fmt.Sprintf("filter array holds a %s, not a name", elem.Kind())}
			}
			names = append(names, n)
		}
	default:
		return nil, nil, &ValueError{Msg: fmt.Sprintf("Filter is a %s, not a name or array", filter.Kind())}
	}

	params := make([]filters.Params, len(names))
	switch p := s.Dict.Get("DecodeParms").(type) {
	case nil, Null:
	case *Dict:
		params[0] = decodeParams(p)
	case Array:
		for i := 0; i < len(p) && i < len(names); i++ {
			if d, ok := p[i].(*Dict); ok {
				params[i] = decodeParams(d)
			}
		}
	default:
		return nil, nil, &ValueError{Msg: fmt.Sprintf("DecodeParms is a %s, not a dictionary or array", p.Kind())}
	}
	return names, params, nil
}

// decodeParams lowers a parameter dictionary to the primitive map the
// filter implementations take.
func decodeParams(d *Dict) filters.Params {
	p := make(filters.Params, d.Len())
	for _, k := range d.Keys() {
		switch v := d.Get(k).(type) {
		case Integer:
			p[string(k)] = int(v)
		case Real:
			p[string(k)] = float64(v)
		case Boolean:
			p[string(k)] = bool(v)
		case Name:
			p[string(k)] = string(v)
		}
	}
	return p
}

func applyFilter(name Name, data []byte, params filters.Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, params)
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, params)
	default:
		return nil, &ValueError{Msg: fmt.Sprintf("unsupported filter %s", name.String())}
	}
}
