package document

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented listing of node to w. OB and UN payloads are shown
// as their VR only.
func Dump(w io.Writer, node *Node) error {
	return dump(w, node, 0)
}

func dump(w io.Writer, node *Node, indent int) error {
	pad := strings.Repeat(" ", indent)
	for _, el := range node.Elements {
		if _, err := fmt.Fprintf(w, "%s%s (%s) ", pad, el.Tag, el.VR); err != nil {
			return err
		}
		if el.VR == VROB || el.VR == VRUN {
			if _, err := fmt.Fprintf(w, "<%s>\n", el.VR); err != nil {
				return err
			}
			continue
		}
		items, ok := el.Value.(Items)
		if !ok {
			if _, err := fmt.Fprintln(w, formatValue(el.Value)); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := fmt.Fprintf(w, "%s    ---\n", pad); err != nil {
				return err
			}
			if err := dump(w, item, indent+4); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s    ---\n", pad); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatValue(v Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case Strings:
		return strings.Join(v, "\\")
	case Ints:
		return joinAny(v)
	case Uints:
		return joinAny(v)
	case Floats:
		return joinAny(v)
	case Bytes:
		return fmt.Sprintf("<%d bytes>", len(v))
	case Opaque:
		return "<PixelSequence>"
	case Invalid:
		return fmt.Sprintf("<invalid: %v>", v.Err)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func joinAny[T any](vals []T) string {
	parts := make([]string, len(vals))
	for i, x := range vals {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, "\\")
}
