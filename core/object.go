package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Object is the closed set of PDF value types. Every value that can appear
// in a PDF body implements it.
type Object interface {
	Kind() Kind
	String() string

	// encode appends the serialized byte form to sb. Encoding a Reference
	// with an invalid identity, an unassigned Indirect, or a Name
	// containing a zero byte fails.
	encode(sb *strings.Builder) error
}

// Kind identifies the concrete type behind an Object.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindReal
	KindString
	KindName
	KindArray
	KindDict
	KindStream
	KindReference
	KindIndirect
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindReal:
		return "Real"
	case KindString:
		return "String"
	case KindName:
		return "Name"
	case KindArray:
		return "Array"
	case KindDict:
		return "Dict"
	case KindStream:
		return "Stream"
	case KindReference:
		return "Reference"
	case KindIndirect:
		return "Indirect"
	default:
		return "Unknown"
	}
}

// Encode serializes an object to its byte form.
func Encode(obj Object) ([]byte, error) {
	var sb strings.Builder
	if err := obj.encode(&sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// Null represents the PDF null object.
type Null struct{}

func (Null) Kind() Kind     { return KindNull }
func (Null) String() string { return "null" }
func (Null) encode(sb *strings.Builder) error {
	sb.WriteString("null")
	return nil
}

// Boolean represents a PDF boolean.
type Boolean bool

func (b Boolean) Kind() Kind { return KindBoolean }
func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Boolean) encode(sb *strings.Builder) error {
	sb.WriteString(b.String())
	return nil
}

// Integer represents a PDF integer. Integers and reals are distinct types
// so that a parsed value re-serializes in its original numeric class.
type Integer int64

func (i Integer) Kind() Kind     { return KindInteger }
func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Integer) encode(sb *strings.Builder) error {
	sb.WriteString(i.String())
	return nil
}

// Real represents a PDF real number.
type Real float64

func (r Real) Kind() Kind { return KindReal }

// String formats the real in decimal form. A decimal point is always
// present so the value re-parses as a real rather than an integer.
func (r Real) String() string {
	s := strconv.FormatFloat(float64(r), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
func (r Real) encode(sb *strings.Builder) error {
	sb.WriteString(r.String())
	return nil
}

// String represents a PDF string: an arbitrary byte sequence. Literal and
// hexadecimal source forms decode to the same type; serialization always
// uses the literal "(...)" form.
type String string

func (s String) Kind() Kind     { return KindString }
func (s String) String() string { return string(s) }
func (s String) encode(sb *strings.Builder) error {
	sb.WriteByte('(')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(')')
	return nil
}

// Name represents a PDF name, used for dictionary keys and type tags.
type Name string

func (n Name) Kind() Kind     { return KindName }
func (n Name) String() string { return "/" + string(n) }

// encode writes the name with a leading slash. Bytes outside the regular
// range are written as #XX hex escapes; a zero byte has no legal encoding.
func (n Name) encode(sb *strings.Builder) error {
	sb.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c == 0 {
			return &ValueError{Msg: "name contains a zero byte"}
		}
		if isRegularNameByte(c) {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(sb, "#%02X", c)
		}
	}
	return nil
}

// isRegularNameByte reports whether c may appear unescaped in a name:
// printable ASCII excluding delimiters and the escape character itself.
func isRegularNameByte(c byte) bool {
	if c <= ' ' || c > '~' {
		return false
	}
	if isDelimiter(c) || c == '#' {
		return false
	}
	return true
}

// Array represents an ordered sequence of values.
type Array []Object

func (a Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
func (a Array) encode(sb *strings.Builder) error {
	sb.WriteByte('[')
	for i, obj := range a {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if err := obj.encode(sb); err != nil {
			return err
		}
	}
	sb.WriteByte(']')
	return nil
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a) }

// Get returns the element at index, or nil if out of range.
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

// GetInt returns the integer at index.
func (a Array) GetInt(index int) (Integer, bool) {
	i, ok := a.Get(index).(Integer)
	return i, ok
}

// GetName returns the name at index.
func (a Array) GetName(index int) (Name, bool) {
	n, ok := a.Get(index).(Name)
	return n, ok
}

// Dict maps names to values. Unlike a plain map it preserves insertion
// order, so a parsed dictionary re-serializes with its keys in the original
// order and a constructed dictionary serializes deterministically.
type Dict struct {
	keys   []Name
	values map[Name]Object
}

// NewDict creates an empty dictionary.
func NewDict() *Dict {
	return &Dict{values: make(map[Name]Object)}
}

func (d *Dict) Kind() Kind { return KindDict }
func (d *Dict) String() string {
	parts := make([]string, 0, len(d.keys))
	for _, k := range d.keys {
		parts = append(parts, k.String()+" "+d.values[k].String())
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}
func (d *Dict) encode(sb *strings.Builder) error {
	sb.WriteString("<<")
	for i, k := range d.keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if err := k.encode(sb); err != nil {
			return err
		}
		sb.WriteByte(' ')
		if err := d.values[k].encode(sb); err != nil {
			return err
		}
	}
	sb.WriteString(">>")
	return nil
}

// Set adds or replaces an entry. A new key is appended to the key order.
func (d *Dict) Set(key Name, value Object) {
	if d.values == nil {
		d.values = make(map[Name]Object)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value for key, or nil when absent.
func (d *Dict) Get(key Name) Object {
	if d == nil || d.values == nil {
		return nil
	}
	return d.values[key]
}

// Has reports whether key is present.
func (d *Dict) Has(key Name) bool {
	_, ok := d.values[key]
	return ok
}

// Delete removes an entry, preserving the order of the remaining keys.
func (d *Dict) Delete(key Name) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Name {
	out := make([]Name, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// GetInt returns an integer value.
func (d *Dict) GetInt(key Name) (Integer, bool) {
	i, ok := d.Get(key).(Integer)
	return i, ok
}

// GetName returns a name value.
func (d *Dict) GetName(key Name) (Name, bool) {
	n, ok := d.Get(key).(Name)
	return n, ok
}

// GetDict returns a dictionary value.
func (d *Dict) GetDict(key Name) (*Dict, bool) {
	v, ok := d.Get(key).(*Dict)
	return v, ok
}

// GetArray returns an array value.
func (d *Dict) GetArray(key Name) (Array, bool) {
	a, ok := d.Get(key).(Array)
	return a, ok
}

// GetString returns a string value.
func (d *Dict) GetString(key Name) (String, bool) {
	s, ok := d.Get(key).(String)
	return s, ok
}

// GetReference returns a reference value.
func (d *Dict) GetReference(key Name) (Reference, bool) {
	r, ok := d.Get(key).(Reference)
	return r, ok
}

// Stream is a dictionary plus a raw byte payload. The dictionary's Length
// entry equals the payload size; NewStream maintains that invariant.
type Stream struct {
	Dict *Dict
	Data []byte
}

// NewStream builds a stream around dict, setting its Length entry from the
// payload. A nil dict gets a fresh dictionary.
func NewStream(dict *Dict, data []byte) *Stream {
	if dict == nil {
		dict = NewDict()
	}
	dict.Set("Length", Integer(len(data)))
	return &Stream{Dict: dict, Data: data}
}

func (s *Stream) Kind() Kind { return KindStream }
func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict.String(), len(s.Data))
}
func (s *Stream) encode(sb *strings.Builder) error {
	if err := s.Dict.encode(sb); err != nil {
		return err
	}
	sb.WriteString("\nstream\n")
	sb.Write(s.Data)
	sb.WriteString("\nendstream")
	return nil
}

// ObjectID is the stable identity of an indirect object.
type ObjectID struct {
	Number     int
	Generation int
}

// Valid reports whether the identity satisfies the format's invariants:
// a positive object number and a non-negative generation.
func (id ObjectID) Valid() bool {
	return id.Number >= 1 && id.Generation >= 0
}

func (id ObjectID) String() string {
	return fmt.Sprintf("%d %d", id.Number, id.Generation)
}

// Reference is an indirect pointer (object number, generation). It never
// owns the object it points to.
type Reference struct {
	Number     int
	Generation int
}

func (r Reference) Kind() Kind { return KindReference }
func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}
func (r Reference) encode(sb *strings.Builder) error {
	if !r.ID().Valid() {
		return &IdentityError{Msg: fmt.Sprintf("reference %d %d has an invalid identity", r.Number, r.Generation)}
	}
	sb.WriteString(r.String())
	return nil
}

// ID returns the identity the reference points at.
func (r Reference) ID() ObjectID {
	return ObjectID{Number: r.Number, Generation: r.Generation}
}

// Indirect is a value with a mutable identity slot. The identity starts
// unassigned and is set exactly once, by the serializer; converting an
// unassigned Indirect to bytes is an error.
type Indirect struct {
	obj      Object
	id       ObjectID
	assigned bool
}

// NewIndirect wraps a value. The value may be nil and filled in later,
// which lets containers reference objects built after them.
func NewIndirect(obj Object) *Indirect {
	return &Indirect{obj: obj}
}

func (i *Indirect) Kind() Kind { return KindIndirect }
func (i *Indirect) String() string {
	if !i.assigned {
		return "obj(unassigned)"
	}
	return fmt.Sprintf("obj(%d %d)", i.id.Number, i.id.Generation)
}

// encode emits the reference form "N G R"; the object body is written only
// by the serializer.
func (i *Indirect) encode(sb *strings.Builder) error {
	ref, err := i.Ref()
	if err != nil {
		return err
	}
	return ref.encode(sb)
}

// Object returns the wrapped value.
func (i *Indirect) Object() Object { return i.obj }

// SetObject replaces the wrapped value.
func (i *Indirect) SetObject(obj Object) { i.obj = obj }

// ID returns the assigned identity, if any.
func (i *Indirect) ID() (ObjectID, bool) { return i.id, i.assigned }

// Assign gives the object its identity. Invalid identities are rejected.
func (i *Indirect) Assign(id ObjectID) error {
	if !id.Valid() {
		return &IdentityError{Msg: fmt.Sprintf("cannot assign identity %d %d", id.Number, id.Generation)}
	}
	i.id = id
	i.assigned = true
	return nil
}

// Ref returns the reference form of the identity, or an IdentityError when
// the identity has not been assigned yet.
func (i *Indirect) Ref() (Reference, error) {
	if !i.assigned {
		return Reference{}, &IdentityError{Msg: "indirect object has no assigned identity"}
	}
	return Reference{Number: i.id.Number, Generation: i.id.Generation}, nil
}
