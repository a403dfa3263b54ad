package pages

import (
	"fmt"

	"github.com/tsawler/folio/core"
)

// Resolver resolves a reference to its target, one level deep. The reader
// package's Reader satisfies it.
type Resolver interface {
	Resolve(ref core.Reference) (core.Object, error)
}

// inheritable lists the page attributes a Pages node passes down to the
// leaves beneath it.
var inheritable = []core.Name{"Resources", "MediaBox", "CropBox", "Rotate"}

// maxTreeDepth caps tree descent; a page tree deeper than this is
// malformed.
const maxTreeDepth = 64

// Tree navigates a document's page tree.
type Tree struct {
	res  Resolver
	root *core.Dict
}

// NewTree opens the page tree a catalog points at.
func NewTree(res Resolver, catalog *core.Dict) (*Tree, error) {
	root, err := resolveDict(res, catalog.Get("Pages"))
	if err != nil {
		return nil, fmt.Errorf("open page tree: %w", err)
	}
	if typ, _ := root.GetName("Type"); typ != "Pages" {
		return nil, &core.FormatError{Msg: fmt.Sprintf("page tree root has Type %s", typ.String()), Offset: -1}
	}
	return &Tree{res: res, root: root}, nil
}

// Count returns the number of pages, read from the root's Count entry.
func (t *Tree) Count() (int, error) {
	n, ok := t.root.GetInt("Count")
	if !ok {
		return 0, &core.FormatError{Msg: "page tree root has no Count", Offset: -1}
	}
	return int(n), nil
}

// Page returns the page dictionary at index, zero-based, in document
// order. Attributes a page inherits from its ancestors (media box,
// resources, rotation) are copied onto the returned dictionary.
func (t *Tree) Page(index int) (*core.Dict, error) {
	if index < 0 {
		return nil, fmt.Errorf("page index %d out of range", index)
	}
	remaining := index
	page, err := t.find(t.root, &remaining, core.NewDict(), 0)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("page index %d out of range", index)
	}
	return page, nil
}

// find walks the subtree rooted at node looking for the remaining'th leaf.
// Subtrees are skipped wholesale using their Count entries.
func (t *Tree) find(node *core.Dict, remaining *int, inherited *core.Dict, depth int) (*core.Dict, error) {
	if depth > maxTreeDepth {
		return nil, &core.FormatError{Msg: "page tree deeper than its cap", Offset: -1}
	}

	inherited = mergeInheritable(inherited, node)
	kids, ok := node.GetArray("Kids")
	if !ok {
		return nil, &core.FormatError{Msg: "page tree node has no Kids array", Offset: -1}
	}

	for _, kid := range kids {
		child, err := resolveDict(t.res, kid)
		if err != nil {
			return nil, err
		}
		switch typ, _ := child.GetName("Type"); typ {
		case "Page":
			if *remaining == 0 {
				return applyInherited(child, inherited), nil
			}
			*remaining--
		case "Pages":
			if count, ok := child.GetInt("Count"); ok && int(count) <= *remaining {
				*remaining -= int(count)
				continue
			}
			page, err := t.find(child, remaining, inherited, depth+1)
			if err != nil || page != nil {
				return page, err
			}
		default:
			return nil, &core.FormatError{Msg: fmt.Sprintf("page tree kid has Type %s", typ.String()), Offset: -1}
		}
	}
	return nil, nil
}

// mergeInheritable layers node's inheritable entries over what its
// ancestors provided.
func mergeInheritable(inherited, node *core.Dict) *core.Dict {
	out := core.NewDict()
	for _, key := range inheritable {
		if v := node.Get(key); v != nil {
			out.Set(key, v)
		} else if v := inherited.Get(key); v != nil {
			out.Set(key, v)
		}
	}
	return out
}

// applyInherited copies inherited attributes onto a leaf page, without
// overriding anything the page sets itself.
func applyInherited(page, inherited *core.Dict) *core.Dict {
	out := core.NewDict()
	for _, key := range page.Keys() {
		out.Set(key, page.Get(key))
	}
	for _, key := range inheritable {
		if out.Has(key) {
			continue
		}
		if v := inherited.Get(key); v != nil {
			out.Set(key, v)
		}
	}
	return out
}

func resolveDict(res Resolver, obj core.Object) (*core.Dict, error) {
	if ref, ok := obj.(core.Reference); ok {
		target, err := res.Resolve(ref)
		if err != nil {
			return nil, err
		}
		obj = target
	}
	dict, ok := obj.(*core.Dict)
	if !ok {
		var kind string
		if obj == nil {
			kind = "nothing"
		} else {
			kind = obj.Kind().String()
		}
		return nil, &core.FormatError{Msg: fmt.Sprintf("expected a page tree dictionary, found %s", kind), Offset: -1}
	}
	return dict, nil
}
