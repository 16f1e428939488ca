// Package scene holds the objects drawn each frame and resolves them by id.
//
// A Scene is owned by the frame loop and is not safe for concurrent use.
package scene

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

// Node is a placeable object in the scene.
type Node struct {
	ID        uint32
	UUID      uuid.UUID
	Name      string
	Visible   bool
	Transform *math.Transform
	Geometry  *metadata.Geometry
}

// NewNode creates a visible node at the origin drawing geometry.
func NewNode(name string, geometry *metadata.Geometry) *Node {
	return &Node{
		UUID:      uuid.New(),
		Name:      name,
		Visible:   true,
		Transform: math.TransformCreate(),
		Geometry:  geometry,
	}
}

// Scene is a flat collection of nodes plus the light that shades them.
type Scene struct {
	Background math.Vec4
	Light      *metadata.DirectionalLight

	ids   *core.IdentifierPool
	nodes map[uint32]*Node
	order []uint32
}

func New() *Scene {
	return &Scene{
		Background: math.NewVec4(0, 0, 0, 1),
		ids:        core.NewIdentifierPool(),
		nodes:      make(map[uint32]*Node),
	}
}

// Add registers node and returns the id it is now reachable under.
// The node's ID field is updated in place.
func (s *Scene) Add(node *Node) uint32 {
	id := s.ids.Acquire(node)
	node.ID = id
	if node.Transform == nil {
		node.Transform = math.TransformCreate()
	}
	s.nodes[id] = node
	s.order = append(s.order, id)
	return id
}

// FindByID returns the node registered under id.
func (s *Scene) FindByID(id uint32) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// FindByName returns the first node in insertion order with the given name.
func (s *Scene) FindByName(name string) (*Node, bool) {
	for _, id := range s.order {
		if n := s.nodes[id]; n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// FindByUUID returns the node whose UUID is id. Unlike numeric ids, UUIDs
// are never reused.
func (s *Scene) FindByUUID(id uuid.UUID) (*Node, bool) {
	for _, nid := range s.order {
		if n := s.nodes[nid]; n.UUID == id {
			return n, true
		}
	}
	return nil, false
}

// Remove drops the node registered under id. The id goes back to the pool
// and the next Add may hand it out again, so holders of a removed id must
// forget it; a stale id can resolve to an unrelated node.
func (s *Scene) Remove(id uint32) error {
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("scene remove: node %d not found", id)
	}
	delete(s.nodes, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.ids.Release(id)
}

// Each visits nodes in insertion order until fn returns false.
func (s *Scene) Each(fn func(n *Node) bool) {
	for _, id := range s.order {
		if !fn(s.nodes[id]) {
			return
		}
	}
}

func (s *Scene) Len() int {
	return len(s.order)
}
