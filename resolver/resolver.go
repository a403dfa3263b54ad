package resolver

import (
	"fmt"
	"io"

	"github.com/tsawler/folio/core"
)

// defaultMaxDepth bounds how deeply Materialize follows nested containers.
// Reference cycles are handled separately; the depth cap only guards
// against pathological nesting.
const defaultMaxDepth = 100

// Resolver maps references to the objects they name, reading object
// bodies lazily from the file through the cross-reference table. Resolved
// objects are cached by identity.
type Resolver struct {
	src      io.ReadSeeker
	xref     *core.XRefTable
	maxDepth int
	cache    map[core.ObjectID]core.Object
	active   map[core.ObjectID]bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDepth overrides the container nesting cap used by Materialize.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// New creates a resolver over a file and its cross-reference table.
func New(src io.ReadSeeker, xref *core.XRefTable, opts ...Option) *Resolver {
	r := &Resolver{
		src:      src,
		xref:     xref,
		maxDepth: defaultMaxDepth,
		cache:    make(map[core.ObjectID]core.Object),
		active:   make(map[core.ObjectID]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the object a reference names, one level deep: references
// inside the returned object are left as references. An identity with no
// table entry resolves to Null rather than failing, so a dangling pointer
// does not poison the rest of the graph. A reference back into the active
// resolution path comes back unresolved.
func (r *Resolver) Resolve(ref core.Reference) (core.Object, error) {
	id := ref.ID()
	if r.active[id] {
		return ref, nil
	}
	r.active[id] = true
	defer delete(r.active, id)
	return r.resolveRaw(ref)
}

func (r *Resolver) resolveRaw(ref core.Reference) (core.Object, error) {
	id := ref.ID()
	if obj, ok := r.cache[id]; ok {
		return obj, nil
	}
	offset, ok := r.xref.Get(id)
	if !ok {
		return core.Null{}, nil
	}
	gotID, obj, err := r.ObjectAt(offset)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	if gotID != id {
		return nil, fmt.Errorf("resolve %s: object at offset %d identifies as %s", ref, offset, gotID)
	}
	r.cache[id] = obj
	return obj, nil
}

// ObjectAt parses the indirect object starting at a byte offset. A stream
// body is completed here: the Length entry is resolved if it is a
// reference, then the payload is read from the recorded payload offset.
func (r *Resolver) ObjectAt(offset int64) (core.ObjectID, core.Object, error) {
	if _, err := r.src.Seek(offset, io.SeekStart); err != nil {
		return core.ObjectID{}, nil, fmt.Errorf("seek to object at %d: %w", offset, err)
	}
	c := core.NewCursorAt(r.src, offset)
	id, obj, marker, err := core.ParseIndirectObject(c)
	if err != nil {
		return core.ObjectID{}, nil, err
	}
	if marker == nil {
		return id, obj, nil
	}

	dict := obj.(*core.Dict)
	length, err := r.streamLength(id, dict)
	if err != nil {
		return core.ObjectID{}, nil, err
	}

	// Resolving the length may have moved the file position; the marker's
	// payload offset is the anchor to come back to.
	if _, err := r.src.Seek(marker.PayloadOffset, io.SeekStart); err != nil {
		return core.ObjectID{}, nil, fmt.Errorf("seek to stream payload at %d: %w", marker.PayloadOffset, err)
	}
	pc := core.NewCursorAt(r.src, marker.PayloadOffset)
	data, err := core.CompleteStream(pc, length)
	if err != nil {
		return core.ObjectID{}, nil, fmt.Errorf("complete stream %s: %w", id, err)
	}
	pc.SkipWhitespace()
	if !pc.HasPrefix([]byte("endobj")) {
		return core.ObjectID{}, nil, &core.FormatError{
			Msg:    fmt.Sprintf("stream object %s not closed by endobj", id),
			Offset: pc.Tell(),
		}
	}
	return id, core.NewStream(dict, data), nil
}

// streamLength extracts a concrete payload length from a stream
// dictionary, resolving an indirect Length against the file.
func (r *Resolver) streamLength(id core.ObjectID, dict *core.Dict) (int, error) {
	switch v := dict.Get("Length").(type) {
	case core.Integer:
		return int(v), nil
	case core.Reference:
		obj, err := r.Resolve(v)
		if err != nil {
			return 0, err
		}
		n, ok := obj.(core.Integer)
		if !ok {
			return 0, &core.ValueError{Msg: fmt.Sprintf("stream %s Length resolves to %s, not an integer", id, obj.Kind())}
		}
		return int(n), nil
	case nil:
		return 0, &core.ValueError{Msg: fmt.Sprintf("stream %s has no Length entry", id)}
	default:
		return 0, &core.ValueError{Msg: fmt.Sprintf("stream %s Length is a %s", id, v.Kind())}
	}
}

// Materialize returns obj with every reference it contains replaced by the
// referenced object, recursively. A reference that points back into the
// path currently being resolved stays a reference, so cyclic graphs (a
// page naming its parent, say) terminate with the cycle visibly intact
// rather than erroring or recursing forever.
func (r *Resolver) Materialize(obj core.Object) (core.Object, error) {
	return r.materialize(obj, 0)
}

// MaterializeID materializes the object graph rooted at an identity.
func (r *Resolver) MaterializeID(id core.ObjectID) (core.Object, error) {
	return r.Materialize(core.Reference{Number: id.Number, Generation: id.Generation})
}

// MaterializeAt parses the indirect object at a byte offset and
// materializes the graph beneath it. References back to the object itself
// stay references.
func (r *Resolver) MaterializeAt(offset int64) (core.ObjectID, core.Object, error) {
	id, obj, err := r.ObjectAt(offset)
	if err != nil {
		return core.ObjectID{}, nil, err
	}
	r.active[id] = true
	defer delete(r.active, id)
	m, err := r.Materialize(obj)
	if err != nil {
		return core.ObjectID{}, nil, err
	}
	return id, m, nil
}

func (r *Resolver) materialize(obj core.Object, depth int) (core.Object, error) {
	if depth > r.maxDepth {
		return nil, fmt.Errorf("object graph deeper than %d levels", r.maxDepth)
	}
	switch v := obj.(type) {
	case core.Reference:
		id := v.ID()
		if r.active[id] {
			return v, nil
		}
		r.active[id] = true
		defer delete(r.active, id)
		target, err := r.resolveRaw(v)
		if err != nil {
			return nil, err
		}
		return r.materialize(target, depth+1)
	case core.Array:
		out := make(core.Array, len(v))
		for i, elem := range v {
			m, err := r.materialize(elem, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = m
		}
		return out, nil
	case *core.Dict:
		return r.materializeDict(v, depth)
	case *core.Stream:
		dict, err := r.materializeDict(v.Dict, depth)
		if err != nil {
			return nil, err
		}
		return &core.Stream{Dict: dict, Data: v.Data}, nil
	default:
		return obj, nil
	}
}

func (r *Resolver) materializeDict(d *core.Dict, depth int) (*core.Dict, error) {
	out := core.NewDict()
	for _, k := range d.Keys() {
		m, err := r.materialize(d.Get(k), depth+1)
		if err != nil {
			return nil, err
		}
		out.Set(k, m)
	}
	return out, nil
}
