package memory

// moved marks a capsule whose ownership is transferred to the callee.
type moved struct {
	Copiable
}

// Move transfers ownership of c into the call it is passed to. The callee
// frees c on every exit path.
func Move(c Copiable) Copiable {
	if c == nil {
		return nil
	}
	if _, ok := c.(moved); ok {
		return c
	}
	return moved{Copiable: c}
}

// Take unwraps a possibly moved capsule. owned reports whether the callee
// is now responsible for freeing the returned capsule.
func Take(c Copiable) (inner Copiable, owned bool) {
	if m, ok := c.(moved); ok {
		return m.Copiable, true
	}
	return c, false
}
