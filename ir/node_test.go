package ir

import (
	"testing"
)

func newTestTree(t *testing.T) *ElementNode {
	t.Helper()

	root := NewElementNode("Patient")
	name := NewElementNode("Patient.name")
	gender := NewElementNode("Patient.gender")
	family := NewElementNode("Patient.name.family")

	root.AddChild(name)
	root.AddChild(gender)
	name.AddChild(family)
	return root
}

func TestAddChildStampsParent(t *testing.T) {
	root := NewElementNode("Patient")
	child := NewElementNode("Patient.name")
	root.AddChild(child)

	if child.ParentID != root.ID {
		t.Errorf("ParentID = %q, want %q", child.ParentID, root.ID)
	}
	if len(root.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(root.Children))
	}
}

func TestRemoveChild(t *testing.T) {
	root := newTestTree(t)
	name := root.FindChild("name")

	removed := root.RemoveChild(name.ID)
	if removed == nil || removed.ID != name.ID {
		t.Fatalf("RemoveChild returned %v, want the removed node", removed)
	}
	if root.FindChild("name") != nil {
		t.Error("child still present after removal")
	}
	if root.RemoveChild(name.ID) != nil {
		t.Error("second removal should return nil")
	}
}

func TestAddSliceRequiresSlicing(t *testing.T) {
	node := NewElementNode("Patient.identifier")
	slice := NewSliceNode("mrn", node.Path)

	if err := node.AddSlice(slice); err != ErrSlicingNotDefined {
		t.Fatalf("AddSlice without slicing = %v, want ErrSlicingNotDefined", err)
	}

	node.Slicing = &SlicingDefinition{
		Discriminators: []Discriminator{{Type: DiscriminatorValue, Path: "system"}},
		Rules:          RulesOpen,
	}
	if err := node.AddSlice(slice); err != nil {
		t.Fatalf("AddSlice = %v, want nil", err)
	}
	if slice.Element.ParentID != node.ID {
		t.Errorf("slice element ParentID = %q, want %q", slice.Element.ParentID, node.ID)
	}

	dup := NewSliceNode("mrn", node.Path)
	if err := node.AddSlice(dup); err != ErrDuplicateSlice {
		t.Fatalf("duplicate AddSlice = %v, want ErrDuplicateSlice", err)
	}
}

func TestFindDescendant(t *testing.T) {
	root := newTestTree(t)

	tests := []struct {
		path string
		want bool
	}{
		{"Patient", true},
		{"Patient.name", true},
		{"Patient.name.family", true},
		{"Patient.gender", true},
		{"Patient.address", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := root.FindDescendant(tt.path)
			if (got != nil) != tt.want {
				t.Errorf("FindDescendant(%q) found=%v, want %v", tt.path, got != nil, tt.want)
			}
			if got != nil && got.Path != tt.path {
				t.Errorf("found node path %q, want %q", got.Path, tt.path)
			}
		})
	}
}

func TestFindDescendantSearchesSlices(t *testing.T) {
	root := newTestTree(t)
	identifier := NewElementNode("Patient.identifier")
	identifier.Slicing = &SlicingDefinition{Rules: RulesOpen}
	root.AddChild(identifier)

	slice := NewSliceNode("mrn", identifier.Path)
	if err := identifier.AddSlice(slice); err != nil {
		t.Fatal(err)
	}
	system := NewElementNode("Patient.identifier.system")
	slice.Element.AddChild(system)

	if root.FindDescendant("Patient.identifier:mrn") == nil {
		t.Error("slice element not found by path")
	}
	if root.FindDescendant("Patient.identifier.system") == nil {
		t.Error("slice child not found by path")
	}
}

func TestFindByID(t *testing.T) {
	root := newTestTree(t)
	family := root.FindDescendant("Patient.name.family")

	if got := root.FindByID(family.ID); got != family {
		t.Errorf("FindByID returned %v, want the family node", got)
	}
	if got := root.FindByID("missing"); got != nil {
		t.Errorf("FindByID(missing) = %v, want nil", got)
	}
}

func TestWalkOrder(t *testing.T) {
	root := newTestTree(t)
	identifier := NewElementNode("Patient.identifier")
	identifier.Slicing = &SlicingDefinition{Rules: RulesOpen}
	root.AddChild(identifier)
	if err := identifier.AddSlice(NewSliceNode("mrn", identifier.Path)); err != nil {
		t.Fatal(err)
	}

	var visited []string
	root.Walk(func(n *ElementNode) bool {
		visited = append(visited, n.Path)
		return true
	})

	want := []string{
		"Patient",
		"Patient.name",
		"Patient.name.family",
		"Patient.gender",
		"Patient.identifier",
		"Patient.identifier:mrn",
	}
	if len(visited) != len(want) {
		t.Fatalf("visited %d nodes, want %d: %v", len(visited), len(want), visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visited[%d] = %q, want %q", i, visited[i], want[i])
		}
	}
}

func TestWalkStops(t *testing.T) {
	root := newTestTree(t)
	count := 0
	root.Walk(func(n *ElementNode) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("visited %d nodes after cutoff, want 2", count)
	}
}

func TestDescendantsIsFreshSlice(t *testing.T) {
	root := newTestTree(t)
	first := root.Descendants()
	second := root.Descendants()

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("Descendants lengths = %d, %d, want 3, 3", len(first), len(second))
	}
	first[0] = nil
	if second[0] == nil {
		t.Error("mutating one result affected another")
	}
}

func TestMarkModified(t *testing.T) {
	node := NewElementNode("Patient.name")
	node.MarkModified()
	if node.Source != SourceModified {
		t.Errorf("Source = %q, want modified", node.Source)
	}

	added := NewElementNode("Patient.extra")
	added.Source = SourceAdded
	added.MarkModified()
	if added.Source != SourceAdded {
		t.Errorf("added node Source = %q, want added", added.Source)
	}
}

func TestCloneEqual(t *testing.T) {
	root := newTestTree(t)
	name := root.FindChild("name")
	name.Constraints.Cardinality = NewCardinality(1, 1)
	name.Base = &BaseConstraints{Cardinality: NewUnboundedCardinality(0)}

	clone := root.Clone()
	if !root.Equal(clone) {
		t.Fatal("clone is not structurally equal to the original")
	}
	if clone.FindChild("name").ID != name.ID {
		t.Error("clone did not preserve node identity")
	}

	// Deep copy: mutating the clone leaves the original untouched.
	clone.FindChild("name").Constraints.Cardinality.Min = 0
	if name.Constraints.Cardinality.Min != 1 {
		t.Error("mutating clone constraints affected the original")
	}
	if root.Equal(clone) {
		t.Error("trees still compare equal after diverging")
	}
}

func TestSliceNodePathConvention(t *testing.T) {
	slice := NewSliceNode("officialName", "Patient.name")
	if got, want := slice.Element.Path, "Patient.name:officialName"; got != want {
		t.Errorf("slice element path = %q, want %q", got, want)
	}
	if slice.Source != SourceAdded || slice.Element.Source != SourceAdded {
		t.Error("new slice should be tagged as added")
	}
}
