package memory

import "io"

// Copied is a capsule that exclusively owns a heap slice.
type Copied struct {
	b     []byte
	freed bool
}

var _ Copiable = (*Copied)(nil)

// Own wraps bytes the caller already owns without allocating. The caller
// gives up the right to mutate b.
func Own(b []byte) *Copied {
	return &Copied{b: b}
}

// CopyOf allocates a fresh slice holding a copy of b.
func CopyOf(b []byte) *Copied {
	out := make([]byte, len(b))
	copy(out, b)
	return &Copied{b: out}
}

// Bytes returns the owned slice, or nil after Free.
func (c *Copied) Bytes() []byte {
	if c == nil || c.freed {
		return nil
	}
	return c.b
}

// Len returns the number of bytes held.
func (c *Copied) Len() int {
	return len(c.Bytes())
}

// Copy returns a defensive copy of the bytes.
func (c *Copied) Copy() []byte {
	b := c.Bytes()
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// CopyAndFree hands the owned slice to the caller and releases the capsule.
// No copy is needed since the capsule already owns the slice.
func (c *Copied) CopyAndFree() []byte {
	b := c.Bytes()
	c.Free()
	return b
}

// WriteTo writes the bytes to w.
func (c *Copied) WriteTo(w io.Writer) (int64, error) {
	return writeTo(w, c.Bytes())
}

// Free drops the reference to the slice. The slice itself is not zeroized
// because it may be shared with the caller that handed it to Own.
func (c *Copied) Free() {
	if c == nil || c.freed {
		return
	}
	c.freed = true
	c.b = nil
}

// Freed reports whether Free has been called.
func (c *Copied) Freed() bool {
	return c == nil || c.freed
}
