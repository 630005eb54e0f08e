package evergreen

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeInstanced                 // many copies of one primitive, one transform slot each
	NodeTypeMesh                      // a single triangle mesh with a material
	NodeTypeCard                      // a two-sided photo card
)

// Material is the small set of surface properties the core drives.
type Material struct {
	Color             Color
	Emissive          Color
	EmissiveIntensity float64
	Opacity           float64
}

// DefaultMaterial is an opaque white surface with no emission.
var DefaultMaterial = Material{Color: ColorWhite, Emissive: ColorWhite, Opacity: 1}

// CardFace is the drawable state of a photo card: the frame material and the
// two texture bindings (front portrait, back prize).
type CardFace struct {
	Frame    Material
	Portrait TextureBinding
	Prize    TextureBinding
	// ShowPrize is true only while the card is the showcased winner.
	ShowPrize bool
}

// nodeIDCounter is a plain counter (no atomic; the scene is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch on the per-frame walk.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	Position Vec3
	Rotation Quat
	Scale    Vec3

	// Computed by updateWorldTransform
	worldTransform Affine
	worldRotation  Quat
	transformDirty bool

	Visible  bool
	Material Material

	// Instanced fields (NodeTypeInstanced): the per-instance transform slots
	// written by the owning animator each tick.
	Instances []Instance

	// Mesh fields (NodeTypeMesh)
	Mesh *Mesh
	// Light is the intensity of a point light attached at the node origin.
	Light float64

	// Card fields (NodeTypeCard)
	Card *CardFace
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Rotation = QuatIdentity
	n.Scale = Splat(1)
	n.Visible = true
	n.Material = DefaultMaterial
	n.worldTransform = identityTransform
	n.worldRotation = QuatIdentity
	n.transformDirty = true
}

// NewContainer creates a group node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewInstanced creates an instanced node with count transform slots.
func NewInstanced(name string, count int) *Node {
	n := &Node{Name: name, Type: NodeTypeInstanced}
	nodeDefaults(n)
	n.Instances = make([]Instance, count)
	return n
}

// NewMeshNode creates a node that renders a single mesh.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := &Node{Name: name, Type: NodeTypeMesh, Mesh: mesh}
	nodeDefaults(n)
	return n
}

// NewCard creates a photo card node.
func NewCard(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeCard, Card: &CardFace{Frame: DefaultMaterial}}
	nodeDefaults(n)
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("evergreen: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("evergreen: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	child.transformDirty = true
	if debugEnabled {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("evergreen: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	child.transformDirty = true
}

// RemoveChildren detaches all children from this node.
func (n *Node) RemoveChildren() {
	for _, c := range n.children {
		c.Parent = nil
		c.transformDirty = true
	}
	n.children = n.children[:0]
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// isAncestor reports whether candidate is n or one of n's ancestors.
func isAncestor(candidate, n *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}
