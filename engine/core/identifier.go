package core

import "fmt"

// IdentifierPool hands out the lowest free uint32 id and remembers its owner.
type IdentifierPool struct {
	owners []interface{}
}

func NewIdentifierPool() *IdentifierPool {
	return &IdentifierPool{owners: make([]interface{}, 0, 100)}
}

func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	for i, o := range p.owners {
		// Existing free spot. Take it.
		if o == nil {
			p.owners[i] = owner
			return uint32(i)
		}
	}
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

func (p *IdentifierPool) Release(id uint32) error {
	if int(id) >= len(p.owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d)", id, len(p.owners))
	}
	if p.owners[id] == nil {
		return fmt.Errorf("identifier release: id '%d' is not in use", id)
	}
	p.owners[id] = nil
	return nil
}

// Owner returns the owner registered for id, or nil.
func (p *IdentifierPool) Owner(id uint32) interface{} {
	if int(id) >= len(p.owners) {
		return nil
	}
	return p.owners[id]
}
