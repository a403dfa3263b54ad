package pages

import (
	"testing"

	"github.com/tsawler/folio/core"
)

// mapResolver backs the tree walk with an in-memory object table.
type mapResolver map[core.ObjectID]core.Object

func (m mapResolver) Resolve(ref core.Reference) (core.Object, error) {
	if obj, ok := m[ref.ID()]; ok {
		return obj, nil
	}
	return core.Null{}, nil
}

func ref(num int) core.Reference {
	return core.Reference{Number: num, Generation: 0}
}

func pagesNode(count int, kids ...core.Object) *core.Dict {
	d := core.NewDict()
	d.Set("Type", core.Name("Pages"))
	d.Set("Kids", core.Array(kids))
	d.Set("Count", core.Integer(count))
	return d
}

func leafPage(label string) *core.Dict {
	d := core.NewDict()
	d.Set("Type", core.Name("Page"))
	d.Set("Label", core.String(label))
	return d
}

func catalogFor(pagesRef core.Reference) *core.Dict {
	c := core.NewDict()
	c.Set("Type", core.Name("Catalog"))
	c.Set("Pages", pagesRef)
	return c
}

func TestTreeFlat(t *testing.T) {
	res := mapResolver{
		{Number: 2}: pagesNode(2, ref(3), ref(4)),
		{Number: 3}: leafPage("one"),
		{Number: 4}: leafPage("two"),
	}
	tree, err := NewTree(res, catalogFor(ref(2)))
	if err != nil {
		t.Fatal(err)
	}

	if n, err := tree.Count(); err != nil || n != 2 {
		t.Errorf("Count = %d, %v", n, err)
	}
	for i, want := range []core.String{"one", "two"} {
		page, err := tree.Page(i)
		if err != nil {
			t.Fatalf("Page(%d): %v", i, err)
		}
		if label, _ := page.GetString("Label"); label != want {
			t.Errorf("Page(%d) label = %q, want %q", i, label, want)
		}
	}
}

func TestTreeNestedWithInheritance(t *testing.T) {
	root := pagesNode(2, ref(3))
	root.Set("MediaBox", Letter())
	root.Set("Resources", core.NewDict())

	inner := pagesNode(2, ref(4), ref(5))
	inner.Set("MediaBox", A4()) // overrides the root for its leaves

	withOwnBox := leafPage("own")
	withOwnBox.Set("MediaBox", Rect(0, 0, 100, 100))

	res := mapResolver{
		{Number: 2}: root,
		{Number: 3}: inner,
		{Number: 4}: leafPage("inherits"),
		{Number: 5}: withOwnBox,
	}
	tree, err := NewTree(res, catalogFor(ref(2)))
	if err != nil {
		t.Fatal(err)
	}

	page, err := tree.Page(0)
	if err != nil {
		t.Fatal(err)
	}
	box, ok := page.GetArray("MediaBox")
	if !ok {
		t.Fatal("inherited MediaBox missing")
	}
	if w, _ := box.GetInt(2); w != A4Width {
		t.Errorf("inherited box width = %d, want the nearest ancestor's", w)
	}
	if !page.Has("Resources") {
		t.Error("Resources not inherited from the root")
	}

	page, err = tree.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	box, _ = page.GetArray("MediaBox")
	if w, _ := box.GetInt(2); w != 100 {
		t.Errorf("own box width = %d, page attribute was overridden", w)
	}
}

func TestTreeCountSkip(t *testing.T) {
	// The second subtree's leaf is reached without resolving the first
	// subtree's kids, using the Count entries.
	left := pagesNode(2, ref(10), ref(11))
	right := pagesNode(1, ref(5))
	res := mapResolver{
		{Number: 2}: pagesNode(3, ref(3), ref(4)),
		{Number: 3}: left,
		{Number: 4}: right,
		{Number: 5}: leafPage("third"),
		// 10 and 11 deliberately absent: skipping must not touch them.
	}
	tree, err := NewTree(res, catalogFor(ref(2)))
	if err != nil {
		t.Fatal(err)
	}

	page, err := tree.Page(2)
	if err != nil {
		t.Fatal(err)
	}
	if label, _ := page.GetString("Label"); label != "third" {
		t.Errorf("Page(2) label = %q", label)
	}
}

func TestTreePageOutOfRange(t *testing.T) {
	res := mapResolver{
		{Number: 2}: pagesNode(1, ref(3)),
		{Number: 3}: leafPage("only"),
	}
	tree, err := NewTree(res, catalogFor(ref(2)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Page(1); err == nil {
		t.Error("expected out of range error")
	}
	if _, err := tree.Page(-1); err == nil {
		t.Error("expected error for a negative index")
	}
}

func TestTreeRejectsBadRoot(t *testing.T) {
	res := mapResolver{
		{Number: 2}: leafPage("not a tree"),
	}
	if _, err := NewTree(res, catalogFor(ref(2))); err == nil {
		t.Error("expected error for a root that is not a Pages node")
	}
}

func TestTreeRejectsCyclicTree(t *testing.T) {
	node := pagesNode(1, ref(2)) // its own child
	res := mapResolver{
		{Number: 2}: node,
	}
	tree, err := NewTree(res, catalogFor(ref(2)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Page(0); err == nil {
		t.Error("expected depth error on a cyclic tree")
	}
}
