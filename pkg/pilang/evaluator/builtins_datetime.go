package evaluator

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// builtinDate parses a free-form date string into a dict of components.
// Anything dateparse recognizes works: ISO timestamps, US and European
// day orders, month names, unix-style dates.
func builtinDate(scope *Scope, args []Object) (Object, *perrors.PiError) {
	text, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}

	t, parseErr := dateparse.ParseAny(text)
	if parseErr != nil {
		return nil, perrors.New("FMT-0001", map[string]any{"Value": text})
	}

	return timeToDict(t), nil
}

// timeToDict converts a time to the component dict the date builtin
// returns. Keys appear in a fixed order so previews read naturally.
func timeToDict(t time.Time) *Dict {
	d := NewDict()
	d.Set("year", signedInt(int64(t.Year())))
	d.Set("month", &Integer{Value: uint64(t.Month())})
	d.Set("day", &Integer{Value: uint64(t.Day())})
	d.Set("hour", &Integer{Value: uint64(t.Hour())})
	d.Set("minute", &Integer{Value: uint64(t.Minute())})
	d.Set("second", &Integer{Value: uint64(t.Second())})
	d.Set("unix", signedInt(t.Unix()))
	d.Set("weekday", &String{Value: t.Weekday().String()})
	d.Set("iso", &String{Value: t.Format(time.RFC3339)})
	return d
}

// signedInt converts an int64 that may be negative. Negative values do
// not fit the unsigned integer model, so they come back as floats.
func signedInt(v int64) Object {
	if v >= 0 {
		return &Integer{Value: uint64(v)}
	}
	return &Float{Value: float64(v)}
}

// builtinDatefmt renders a date using a named style (short, medium, long,
// full) or a Go layout string. The date may be a dict from the date
// builtin or a date string, and the optional third argument overrides the
// session locale.
func builtinDateFmt(scope *Scope, args []Object) (Object, *perrors.PiError) {
	t, err := dateArg(args[0])
	if err != nil {
		return nil, err
	}

	layout, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}

	localeName := scope.Locale
	if len(args) == 3 {
		localeName, err = stringArg(args[2])
		if err != nil {
			return nil, err
		}
	}

	locale, ok := mondayLocale(localeName)
	if !ok {
		return nil, perrors.New("FMT-0002", map[string]any{"Locale": localeName})
	}

	if styled, ok := styleLayout(layout, locale); ok {
		layout = styled
	}

	return &String{Value: monday.Format(t, layout, locale)}, nil
}

// dateArg extracts a time from a date dict (through its unix field) or by
// parsing a date string.
func dateArg(arg Object) (time.Time, *perrors.PiError) {
	switch v := arg.(type) {
	case *String:
		t, err := dateparse.ParseAny(v.Value)
		if err != nil {
			return time.Time{}, perrors.New("FMT-0001", map[string]any{"Value": v.Value})
		}
		return t, nil
	case *Dict:
		unix, found, err := v.LookFor("unix")
		if err != nil {
			return time.Time{}, err
		}
		if found {
			if n, ok := asNumber(unix); ok {
				return time.Unix(int64(n), 0).UTC(), nil
			}
		}
		return time.Time{}, perrors.New("FMT-0001", map[string]any{"Value": v.Inspect()})
	}
	return time.Time{}, perrors.New("TYPE-0002", map[string]any{"Expected": "[string, dict]"})
}
