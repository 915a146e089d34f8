package hierarchy

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestAddSection_SequentialOrdinals(t *testing.T) {
	tree := New()
	root := tree.Root().ID

	a := tree.AddSection(root, 0, 0, "Chapter 1:", false)
	b := tree.AddSection(root, 0, 0, "Chapter 2:", false)

	if a.Ordinal != 1 || b.Ordinal != 2 {
		t.Errorf("ordinals = %d, %d; want 1, 2", a.Ordinal, b.Ordinal)
	}
	if a.Depth != 0 || b.Depth != 0 {
		t.Errorf("depths = %d, %d; want 0, 0", a.Depth, b.Depth)
	}
	if got := len(tree.Children(root)); got != 2 {
		t.Fatalf("root has %d children, want 2", got)
	}
}

func TestAddSection_AltOrdinalsCountPerAlternative(t *testing.T) {
	tree := New()
	root := tree.Root().ID

	// Numeric and lettered headers interleaved at the same level: the
	// per-alternative counters run independently of the overall counter.
	num1 := tree.AddSection(root, 0, 0, "1.", false)
	letA := tree.AddSection(root, 0, 1, "A.", false)
	letB := tree.AddSection(root, 0, 1, "B.", false)
	num2 := tree.AddSection(root, 0, 0, "2.", false)

	tests := []struct {
		name       string
		node       *Node
		ordinal    int
		altOrdinal int
	}{
		{"first numeral", num1, 1, 1},
		{"first letter", letA, 2, 1},
		{"second letter", letB, 3, 2},
		{"second numeral", num2, 4, 2},
	}
	for _, tc := range tests {
		if tc.node.Ordinal != tc.ordinal || tc.node.AltOrdinal != tc.altOrdinal {
			t.Errorf("%s: got (%d, %d), want (%d, %d)",
				tc.name, tc.node.Ordinal, tc.node.AltOrdinal, tc.ordinal, tc.altOrdinal)
		}
	}
}

func TestPositionMatches(t *testing.T) {
	tree := New()
	root := tree.Root().ID
	tree.AddSection(root, 0, 0, "1.", false)
	letter := tree.AddSection(root, 0, 1, "A.", false)

	if !letter.PositionMatches(1) {
		t.Error("letter section should match its per-alternative position 1")
	}
	if !letter.PositionMatches(2) {
		t.Error("letter section should match its overall position 2")
	}
	if letter.PositionMatches(3) {
		t.Error("letter section should not match position 3")
	}
}

func TestDepthInvariant(t *testing.T) {
	tree := New()
	root := tree.Root().ID
	ch := tree.AddSection(root, 0, 0, "Chapter 1:", false)
	sec := tree.AddSection(ch.ID, 1, 0, "Section 1.", false)
	list := tree.AddList(sec.ID, "1")
	pre := tree.AddPreamble(ch.ID)

	if sec.Depth != ch.Depth+1 {
		t.Errorf("section depth %d, want parent+1 = %d", sec.Depth, ch.Depth+1)
	}
	// List nodes keep the enclosing node's depth.
	if list.Depth != sec.Depth {
		t.Errorf("list depth %d, want enclosing depth %d", list.Depth, sec.Depth)
	}
	if pre.Depth != ch.Depth+1 {
		t.Errorf("preamble depth %d, want %d", pre.Depth, ch.Depth+1)
	}
}

func TestAddLabel_SetSemantics(t *testing.T) {
	tree := New()
	n := tree.AddSection(tree.Root().ID, 0, 0, "1.", false)
	tree.AddLabel(n.ID, "env")
	tree.AddLabel(n.ID, "env")
	tree.AddLabel(n.ID, "rights")
	if got := n.Labels; !reflect.DeepEqual(got, []string{"env", "rights"}) {
		t.Errorf("labels = %v, want [env rights]", got)
	}
}

func TestSkeleton_OneEntryPerSectionAndIdempotent(t *testing.T) {
	tree := New()
	root := tree.Root().ID
	ch := tree.AddSection(root, 0, 0, "Chapter 1:", false)
	tree.AddPreamble(ch.ID)
	tree.AddSection(ch.ID, 1, 0, "Section 1.", false)
	tree.AddList(ch.ID, "1")
	tree.AddSection(root, 0, 0, "Chapter 2:", false)

	want := []SkeletonEntry{
		{Depth: 0, HeaderText: "Chapter 1:"},
		{Depth: 1, HeaderText: "Section 1."},
		{Depth: 0, HeaderText: "Chapter 2:"},
	}
	got := tree.Skeleton()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("skeleton = %v, want %v", got, want)
	}
	if again := tree.Skeleton(); !reflect.DeepEqual(again, got) {
		t.Error("skeleton not stable under re-traversal")
	}
}

func TestPath(t *testing.T) {
	tree := New()
	root := tree.Root().ID
	ch := tree.AddSection(root, 0, 0, "75", false)
	sec := tree.AddSection(ch.ID, 1, 0, "1", false)
	list := tree.AddList(sec.ID, "a")

	if got := tree.Path(list.ID); got != "1.1.a" {
		t.Errorf("path = %q, want %q", got, "1.1.a")
	}
	if got := tree.Path(sec.ID); got != "1.1" {
		t.Errorf("path = %q, want %q", got, "1.1")
	}
}

func TestFlatten(t *testing.T) {
	tree := New()
	root := tree.Root().ID
	ch := tree.AddSection(root, 0, 0, "Chapter 1: The President.", false)
	tree.AppendBody(ch.ID, "body")
	sec := tree.AddSection(ch.ID, 1, 0, "Section 1.", false)
	tree.AppendBody(sec.ID, "nested body")
	tree.AddLabel(sec.ID, "exec")

	rows := tree.Flatten()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Path != "1" || rows[0].Body != "body" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Path != "1.1" || rows[1].Header != "Section 1." {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if !reflect.DeepEqual(rows[1].Ancestors, []string{"Chapter 1: The President."}) {
		t.Errorf("row 1 ancestors = %v", rows[1].Ancestors)
	}
	if !reflect.DeepEqual(rows[1].Labels, []string{"exec"}) {
		t.Errorf("row 1 labels = %v", rows[1].Labels)
	}
}

func TestWriteFlatCSV(t *testing.T) {
	tree := New()
	ch := tree.AddSection(tree.Root().ID, 0, 0, "Chapter 1:", false)
	tree.AppendBody(ch.ID, "body")

	var buf bytes.Buffer
	if err := WriteFlatCSV(&buf, tree.Flatten()); err != nil {
		t.Fatalf("WriteFlatCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d CSV lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "path,depth,") {
		t.Errorf("unexpected CSV header: %q", lines[0])
	}
}

func TestExport_PreservesChildOrder(t *testing.T) {
	tree := New()
	root := tree.Root().ID
	ch := tree.AddSection(root, 0, 0, "Chapter 1:", false)
	tree.AddList(ch.ID, "1")
	tree.AddSection(root, 0, 0, "Chapter 2:", false)

	exported := tree.Export()
	if len(exported.Children) != 2 {
		t.Fatalf("root export has %d children, want 2", len(exported.Children))
	}
	if exported.Children[0].Position != "1" || exported.Children[1].Position != "2" {
		t.Errorf("positions = %q, %q", exported.Children[0].Position, exported.Children[1].Position)
	}
	if got := exported.Children[0].Node.Children[0].Position; got != "list_1" {
		t.Errorf("list position token = %q, want list_1", got)
	}

	data, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"list_1"`) {
		t.Errorf("JSON missing list position token: %s", data)
	}
}
