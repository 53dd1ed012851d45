package stdsec

import "bytes"

// Credentials hold the entries of the encryption dictionary which are
// derived from the passwords.  OE, UE and Perms are only used by revisions 5
// and 6.
type Credentials struct {
	O, U   []byte
	OE, UE []byte
	Perms  []byte
}

// Validate checks the entry lengths for revision r: 32 bytes for O and U up
// to revision 4, and 48, 48, 32, 32 and 16 bytes for O, U, OE, UE and Perms
// from revision 5 on.
func (c *Credentials) Validate(r Revision) error {
	if c == nil {
		return &MalformedError{Field: "encryption dictionary"}
	}
	type entry struct {
		name string
		val  []byte
		n    int
	}
	entries := []entry{{"O", c.O, 32}, {"U", c.U, 32}}
	if r >= R5 {
		entries = []entry{
			{"O", c.O, 48}, {"U", c.U, 48},
			{"OE", c.OE, 32}, {"UE", c.UE, 32},
			{"Perms", c.Perms, 16},
		}
	}
	for _, e := range entries {
		if len(e.val) != e.n {
			return &MalformedError{Field: e.name + " entry"}
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Credentials) Clone() *Credentials {
	if c == nil {
		return nil
	}
	return &Credentials{
		O:     bytes.Clone(c.O),
		U:     bytes.Clone(c.U),
		OE:    bytes.Clone(c.OE),
		UE:    bytes.Clone(c.UE),
		Perms: bytes.Clone(c.Perms),
	}
}
