package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ScriptRock/stdsec"
	"github.com/ScriptRock/stdsec/internal/pdfobj"
	"github.com/ScriptRock/stdsec/internal/types"
)

type hexBytes []byte

func (h hexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h)), nil
}

func (h *hexBytes) UnmarshalText(b []byte) error {
	buf := make([]byte, hex.DecodedLen(len(b)))
	if _, err := hex.Decode(buf, b); err != nil {
		return err
	}
	*h = buf
	return nil
}

// encryptDict mirrors the entries of a PDF encryption dictionary, together
// with the first element of the document ID.
type encryptDict struct {
	Filter          string   `json:"Filter"`
	V               int      `json:"V"`
	R               int      `json:"R"`
	Length          int      `json:"Length"`
	P               int32    `json:"P"`
	EncryptMetadata bool     `json:"EncryptMetadata"`
	ID              hexBytes `json:"ID"`
	O               hexBytes `json:"O"`
	U               hexBytes `json:"U"`
	OE              hexBytes `json:"OE,omitempty"`
	UE              hexBytes `json:"UE,omitempty"`
	Perms           hexBytes `json:"Perms,omitempty"`
}

func newEncryptDict(h *stdsec.Handler, id []byte) *encryptDict {
	s := h.Settings()
	cred := h.Credentials()
	return &encryptDict{
		Filter:          "Standard",
		V:               s.V(),
		R:               int(s.Revision()),
		Length:          s.KeyBits(),
		P:               s.P(),
		EncryptMetadata: s.EncryptMetadata(),
		ID:              id,
		O:               cred.O,
		U:               cred.U,
		OE:              cred.OE,
		UE:              cred.UE,
		Perms:           cred.Perms,
	}
}

func (d *encryptDict) settings() (stdsec.Settings, error) {
	if d.Filter != "Standard" {
		return stdsec.Settings{}, fmt.Errorf("%w: security handler %q", stdsec.ErrUnsupported, d.Filter)
	}
	s, err := stdsec.NewSettings(stdsec.Revision(d.R), d.Length, d.P, d.EncryptMetadata)
	if err != nil {
		return s, err
	}
	if s.V() != d.V {
		return s, fmt.Errorf("%w: V=%d with R=%d", stdsec.ErrUnsupported, d.V, d.R)
	}
	return s, nil
}

func (d *encryptDict) credentials() *stdsec.Credentials {
	return &stdsec.Credentials{O: d.O, U: d.U, OE: d.OE, UE: d.UE, Perms: d.Perms}
}

// readDict reads a dictionary file written by generate, in either format.
func readDict(path string) (*encryptDict, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d := &encryptDict{}
	if trimmed := bytes.TrimSpace(buf); len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(buf, d)
	} else {
		d, err = parseTrailer(buf)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

const (
	formatJSON = "json"
	formatPDF  = "pdf"
)

func writeDict(w io.Writer, d *encryptDict, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case formatPDF:
		_, err := fmt.Fprintln(w, pdfobj.Format(d.trailer()))
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

// trailer returns the Encrypt and ID entries of a PDF trailer.
func (d *encryptDict) trailer() types.Dict {
	enc := types.Dict{
		"Filter": types.Name(d.Filter),
		"V":      int64(d.V),
		"R":      int64(d.R),
		"Length": int64(d.Length),
		"P":      int64(d.P),
		"O":      string(d.O),
		"U":      string(d.U),
	}
	if d.V >= 4 {
		cfm, n := types.Name("AESV2"), int64(16)
		if d.V == 5 {
			cfm, n = types.Name("AESV3"), 32
		}
		enc["CF"] = types.Dict{
			"StdCF": types.Dict{
				"CFM":       cfm,
				"AuthEvent": types.Name("DocOpen"),
				"Length":    n,
			},
		}
		enc["StmF"] = types.Name("StdCF")
		enc["StrF"] = types.Name("StdCF")
		enc["EncryptMetadata"] = d.EncryptMetadata
	}
	if d.R >= 5 {
		enc["OE"] = string(d.OE)
		enc["UE"] = string(d.UE)
		enc["Perms"] = string(d.Perms)
	}
	return types.Dict{
		"Encrypt": enc,
		"ID":      types.Array{string(d.ID), string(d.ID)},
	}
}

// parseTrailer reads the output of trailer.
func parseTrailer(data []byte) (*encryptDict, error) {
	obj, err := pdfobj.Parse(data)
	if err != nil {
		return nil, err
	}
	trailer, _ := obj.(types.Dict)
	encrypt, ok := trailer["Encrypt"].(types.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: missing Encrypt dictionary", stdsec.ErrCorrupt)
	}
	d := &encryptDict{EncryptMetadata: true}

	filter, _ := encrypt["Filter"].(types.Name)
	d.Filter = string(filter)
	v, _ := encrypt["V"].(int64)
	r, _ := encrypt["R"].(int64)
	n, ok := encrypt["Length"].(int64)
	if !ok {
		switch v {
		case 4:
			n = 128
		case 5:
			n = 256
		default:
			n = 40
		}
	}
	p, _ := encrypt["P"].(int64)
	d.V, d.R, d.Length, d.P = int(v), int(r), int(n), int32(p)
	if !validateVersion(v, encrypt) {
		return nil, fmt.Errorf("%w: crypt filters of V=%d", stdsec.ErrUnsupported, v)
	}
	if em, ok := encrypt["EncryptMetadata"].(bool); ok {
		d.EncryptMetadata = em
	}

	for key, dst := range map[types.Name]*hexBytes{
		"O": &d.O, "U": &d.U, "OE": &d.OE, "UE": &d.UE, "Perms": &d.Perms,
	} {
		if s, ok := encrypt[key].(string); ok {
			*dst = hexBytes(s)
		}
	}
	if ids, ok := trailer["ID"].(types.Array); ok && len(ids) > 0 {
		id, _ := ids[0].(string)
		d.ID = hexBytes(id)
	}
	return d, nil
}

// validateVersion checks that V 4 and 5 use a single AES crypt filter for
// both strings and streams.
func validateVersion(v int64, encrypt types.Dict) bool {
	switch v {
	case 1, 2:
		return true
	case 4, 5: // validate params below.
	default:
		return false
	}

	cf, ok := encrypt["CF"].(types.Dict)
	if !ok {
		return false
	}
	stmf, ok := encrypt["StmF"].(types.Name)
	if !ok {
		return false
	}
	strf, ok := encrypt["StrF"].(types.Name)
	if !ok {
		return false
	}
	if stmf != strf {
		return false
	}
	cfparam, ok := cf[stmf].(types.Dict)
	if !ok {
		return false
	}
	if cfparam["AuthEvent"] != nil && cfparam["AuthEvent"] != types.Name("DocOpen") {
		return false
	}

	n := int64(16)
	cfm := types.Name("AESV2")
	if v == 5 {
		n = 32
		cfm = types.Name("AESV3")
	}
	if cfparam["Length"] != nil && cfparam["Length"] != n {
		return false
	}
	return cfparam["CFM"] == cfm
}
