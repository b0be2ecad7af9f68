package builtins

import (
	"math"
	"time"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterDate wires `Date.now` plus the constructor-style helpers
// scripts reach for without `new Date(...)`. The teacher's
// RegisterDateTimeFunctions (Now/EncodeDate/UnixTime/...) is the closest
// analogue — same "current wall clock plus component encode/decode" duty,
// rebuilt here against Go's time package and the millisecond-epoch
// representation runtime.Date uses (spec.md §4 Date is `UnixMilli int64`)
// instead of DWScript's OLE Automation date-as-float64 encoding.
func RegisterDate(r *Registry) {
	r.Register("Date", "now", func(_ any, _ runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.Number(float64(time.Now().UnixMilli())), nil
	}, "Returns the current time as milliseconds since the Unix epoch")

	r.Register("Date", "__call__", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		switch len(args) {
		case 0:
			return &runtime.Date{UnixMilli: time.Now().UnixMilli()}, nil
		case 1:
			return &runtime.Date{UnixMilli: int64(runtime.ToNumber(args[0]))}, nil
		default:
			y := int(runtime.ToNumber(args[0]))
			m := int(runtime.ToNumber(args[1]))
			d := 1
			if len(args) > 2 {
				d = int(runtime.ToNumber(args[2]))
			}
			hh, mm, ss, ms := 0, 0, 0, 0
			if len(args) > 3 {
				hh = int(runtime.ToNumber(args[3]))
			}
			if len(args) > 4 {
				mm = int(runtime.ToNumber(args[4]))
			}
			if len(args) > 5 {
				ss = int(runtime.ToNumber(args[5]))
			}
			if len(args) > 6 {
				ms = int(runtime.ToNumber(args[6]))
			}
			t := time.Date(y, time.Month(m+1), d, hh, mm, ss, ms*1e6, time.UTC)
			return &runtime.Date{UnixMilli: t.UnixMilli()}, nil
		}
	}, "Constructs a Date from epoch milliseconds or calendar components")

	r.Register("Date", "parse", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s := stringArg(args)
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return runtime.Number(float64(t.UnixMilli())), nil
			}
		}
		return runtime.Number(math.NaN()), nil
	}, "Parses a date string into epoch milliseconds")

	r.Register("Date", "UTC", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) < 2 {
			return runtime.Number(math.NaN()), nil
		}
		y := int(runtime.ToNumber(args[0]))
		m := int(runtime.ToNumber(args[1]))
		d := 1
		if len(args) > 2 {
			d = int(runtime.ToNumber(args[2]))
		}
		t := time.Date(y, time.Month(m+1), d, 0, 0, 0, 0, time.UTC)
		return runtime.Number(float64(t.UnixMilli())), nil
	}, "Returns epoch milliseconds for the given UTC calendar date")
}
