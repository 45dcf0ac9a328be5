package functions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// maxSquarable is the largest magnitude whose square fits in an int64.
const maxSquarable = 3037000499

var errNotFinite = errors.New("result is not a finite number")

// Float is a float result that keeps its float form on the wire, so 25.0
// encodes as 25.0 and not as the integer 25.
type Float float64

// MarshalJSON encodes f like encoding/json does, adding ".0" to integral values.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, errNotFinite
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if !strings.ContainsAny(string(out), ".eE") {
		out = append(out, '.', '0')
	}
	return out, nil
}

func squareHandler(_ context.Context, args []any) (Result, error) {
	v, err := squareOf(args[0])
	if err != nil {
		return Result{}, err
	}
	return Result{Result: v}, nil
}

// squareOf keeps integers integral and floats floating. A JSON number written
// with a fraction or exponent is a float even when its value is integral.
// Integers whose square would overflow int64 are squared as floats.
func squareOf(v any) (any, error) {
	switch n := v.(type) {
	case json.Number:
		if !strings.ContainsAny(n.String(), ".eE") {
			if i, err := n.Int64(); err == nil {
				return squareInt(i), nil
			}
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("square %q: %w", n.String(), err)
		}
		return squareFloat(f)
	case int:
		return squareInt(int64(n)), nil
	case int32:
		return squareInt(int64(n)), nil
	case int64:
		return squareInt(n), nil
	case float32:
		return squareFloat(float64(n))
	case float64:
		return squareFloat(n)
	default:
		return nil, fmt.Errorf("square: unsupported operand type %T", v)
	}
}

func squareInt(i int64) any {
	if i < -maxSquarable || i > maxSquarable {
		f := float64(i)
		return Float(f * f)
	}
	return i * i
}

func squareFloat(f float64) (any, error) {
	sq := f * f
	if math.IsInf(sq, 0) || math.IsNaN(sq) {
		return nil, fmt.Errorf("square %g: %w", f, errNotFinite)
	}
	return Float(sq), nil
}
