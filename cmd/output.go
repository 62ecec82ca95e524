package cmd

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/fzft/go-resp/resp"
)

type OutputMode uint8

const (
	OutputStandard OutputMode = iota
	OutputRaw
	OutputJson
)

func (m OutputMode) String() string {
	switch m {
	case OutputRaw:
		return "raw"
	case OutputJson:
		return "json"
	default:
		return "standard"
	}
}

// outputMode resolves the --raw/--no-raw/--json flags. Without any of them the
// output is raw when stdout is not a terminal, like redis-cli.
func outputMode(raw, noRaw, json bool) OutputMode {
	switch {
	case json:
		return OutputJson
	case raw:
		return OutputRaw
	case noRaw:
		return OutputStandard
	case !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()):
		return OutputRaw
	default:
		return OutputStandard
	}
}

// formatReply renders f for printing. The result carries no trailing newline.
func formatReply(f resp.Frame, mode OutputMode) (string, error) {
	switch mode {
	case OutputRaw:
		return formatRaw(f), nil
	case OutputJson:
		return formatJSON(f)
	default:
		return formatStandard(f, ""), nil
	}
}

func formatStandard(f resp.Frame, prefix string) string {
	switch v := f.(type) {
	case resp.SimpleString:
		return v.Value
	case resp.SimpleError:
		return "(error) " + v.Message
	case resp.Integer:
		return "(integer) " + strconv.FormatInt(v.Value, 10)
	case resp.Double:
		return "(double) " + formatFloat(v.Value)
	case resp.BigNumber:
		return "(big number) " + v.Value.String()
	case resp.Boolean:
		if v.Value {
			return "(true)"
		}
		return "(false)"
	case resp.BulkString:
		return strconv.Quote(string(v.Value))
	case resp.Null, resp.BulkNull, resp.NullArray, nil:
		return "(nil)"
	case resp.Array:
		if len(v.Elements) == 0 {
			return "(empty array)"
		}
		width := len(strconv.Itoa(len(v.Elements)))
		var b strings.Builder
		for i, e := range v.Elements {
			label := fmt.Sprintf("%*d) ", width, i+1)
			if i > 0 {
				b.WriteByte('\n')
				b.WriteString(prefix)
			}
			b.WriteString(label)
			b.WriteString(formatStandard(e, prefix+strings.Repeat(" ", len(label))))
		}
		return b.String()
	default:
		return fmt.Sprintf("(unknown %T)", f)
	}
}

func formatRaw(f resp.Frame) string {
	switch v := f.(type) {
	case resp.SimpleString:
		return v.Value
	case resp.SimpleError:
		return v.Message
	case resp.Integer:
		return strconv.FormatInt(v.Value, 10)
	case resp.Double:
		return formatFloat(v.Value)
	case resp.BigNumber:
		return v.Value.String()
	case resp.Boolean:
		if v.Value {
			return "1"
		}
		return "0"
	case resp.BulkString:
		return string(v.Value)
	case resp.Null, resp.BulkNull, resp.NullArray, nil:
		return ""
	case resp.Array:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = formatRaw(e)
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(v, 'g', 17, 64)
	}
}

// formatJSON renders a reply as one JSON value. Errors become {"error": msg},
// big numbers and non finite doubles become strings.
func formatJSON(f resp.Frame) (string, error) {
	if arr, ok := f.(resp.Array); ok {
		doc := `{"v":[]}`
		for _, e := range arr.Elements {
			raw, err := formatJSON(e)
			if err != nil {
				return "", err
			}
			if doc, err = sjson.SetRaw(doc, "v.-1", raw); err != nil {
				return "", err
			}
		}
		return gjson.Get(doc, "v").Raw, nil
	}

	if e, ok := f.(resp.SimpleError); ok {
		return sjson.Set("{}", "error", e.Message)
	}

	doc, err := sjson.Set("{}", "v", jsonScalar(f))
	if err != nil {
		return "", err
	}
	return gjson.Get(doc, "v").Raw, nil
}

func jsonScalar(f resp.Frame) interface{} {
	switch v := f.(type) {
	case resp.SimpleString:
		return v.Value
	case resp.Integer:
		return v.Value
	case resp.Double:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return formatFloat(v.Value)
		}
		return v.Value
	case resp.BigNumber:
		return v.Value.String()
	case resp.Boolean:
		return v.Value
	case resp.BulkString:
		return string(v.Value)
	default:
		return nil
	}
}
