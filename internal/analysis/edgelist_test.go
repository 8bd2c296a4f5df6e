package analysis

import (
	"strings"
	"testing"
)

func TestEdgeListRoundTripFormat(t *testing.T) {
	list := &EdgeList{
		Nodes: []string{"A", "B", "C"},
		Edges: []Edge{{Source: "A", Target: "B", R: 0.99, P: 1e-9}, {Source: "B", Target: "C", R: -1, P: 0}},
	}
	var b strings.Builder
	n, err := list.WriteTo(&b)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	want := "A B 0.99\nB C -1.0\n"
	if b.String() != want || n != int64(len(want)) {
		t.Fatalf("wrote %q (%d bytes)", b.String(), n)
	}

	got, err := ParseEdgeList(strings.NewReader("\n" + want + "\n"))
	if err != nil {
		t.Fatalf("ParseEdgeList: %v", err)
	}
	if len(got.Edges) != 2 || got.Edges[1].R != -1 || got.Edges[0].Target != "B" {
		t.Fatalf("parsed %+v", got.Edges)
	}
	if strings.Join(got.Nodes, " ") != "A B C" {
		t.Fatalf("nodes = %v", got.Nodes)
	}
	if got.Degree("B") != 2 {
		t.Fatalf("degree(B) = %d", got.Degree("B"))
	}
}

func TestParseEdgeListRejectsMalformedLines(t *testing.T) {
	for _, in := range []string{"A B\n", "A B C D\n", "A B heavy\n"} {
		if _, err := ParseEdgeList(strings.NewReader(in)); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
