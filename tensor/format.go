package tensor

import (
	"fmt"
	"strings"
)

// String renders rank-1 tensors as a single space separated line and higher
// ranks as nested braces with one innermost row per line.
func (t *Tensor[T, R]) String() string {
	var sb strings.Builder
	switch len(t.shape) {
	case 0:
		return "{}"
	case 1:
		writeRow(&sb, t.Data())
		return sb.String()
	}
	writeBlock(&sb, t.shape, t.Data())
	return sb.String()
}

func writeBlock[T Numeric](sb *strings.Builder, shape Shape, data []T) {
	sb.WriteString("{\n")
	if len(shape) == 2 {
		cols := shape[1]
		for i := 0; i < shape[0]; i++ {
			writeRow(sb, data[i*cols:(i+1)*cols])
			sb.WriteString("\n")
		}
	} else {
		inner := shape[1:].NumElements()
		for i := 0; i < shape[0]; i++ {
			writeBlock(sb, shape[1:], data[i*inner:(i+1)*inner])
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}")
}

func writeRow[T Numeric](sb *strings.Builder, row []T) {
	for i, v := range row {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprint(sb, v)
	}
}
