package pdfobj

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/ScriptRock/stdsec/internal/types"
)

// Format returns the PDF syntax for x.  Dictionary keys are sorted, and
// strings are written in hex form since credential strings are binary.
func Format(x types.Object) string {
	var buf bytes.Buffer
	format(&buf, x)
	return buf.String()
}

func format(buf *bytes.Buffer, x types.Object) {
	switch x := x.(type) {
	default:
		panic(fmt.Sprintf("pdfobj: cannot format %T", x))
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case int:
		buf.WriteString(strconv.Itoa(x))
	case float64:
		buf.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
	case string:
		buf.WriteByte('<')
		buf.WriteString(hex.EncodeToString([]byte(x)))
		buf.WriteByte('>')
	case types.Name:
		buf.WriteByte('/')
		for i := 0; i < len(x); i++ {
			c := x[i]
			if c <= ' ' || c > '~' || c == '#' || isDelim(c) {
				fmt.Fprintf(buf, "#%02X", c)
				continue
			}
			buf.WriteByte(c)
		}
	case types.Dict:
		var keys []string
		for k := range x {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		buf.WriteString("<<")
		for _, k := range keys {
			buf.WriteString(" ")
			format(buf, types.Name(k))
			buf.WriteString(" ")
			format(buf, x[types.Name(k)])
		}
		buf.WriteString(" >>")
	case types.Array:
		buf.WriteString("[")
		for i, elem := range x {
			if i > 0 {
				buf.WriteString(" ")
			}
			format(buf, elem)
		}
		buf.WriteString("]")
	}
}
