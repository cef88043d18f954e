package server

import "slices"

// registry maps a logged-in player name to its session. Iteration follows
// insertion order so broadcasts are delivered in a fixed order.
type registry struct {
	byName map[string]*Session
	order  []string
}

func newRegistry() *registry {
	return &registry{byName: make(map[string]*Session)}
}

func (r *registry) add(name string, s *Session) {
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = s
}

func (r *registry) remove(name string) {
	if _, exists := r.byName[name]; !exists {
		return
	}
	delete(r.byName, name)
	if i := slices.Index(r.order, name); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

func (r *registry) lookup(name string) *Session {
	return r.byName[name]
}

func (r *registry) len() int {
	return len(r.order)
}

// sessions returns the live sessions in registry order.
func (r *registry) sessions() []*Session {
	out := make([]*Session, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
