package types

// A name is a PDF name, without the leading slash.
type Name string

// An object is a PDF syntax object, one of the following Go types:
//
//	bool, a PDF boolean
//	int64, a PDF integer
//	float64, a PDF real
//	string, a PDF string
//	name, a PDF name without the leading slash
//	dict, a PDF dictionary
//	array, a PDF array
//
// An object may also be nil, to represent the PDF null.
type Object any

type Dict map[Name]Object

type Array []Object

// Objptr identifies an indirect object by object number and generation.
// Only the low 24 bits of ID take part in the per-object key.
type Objptr struct {
	ID  uint32
	Gen uint16
}
