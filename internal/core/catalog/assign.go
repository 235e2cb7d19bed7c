package catalog

import (
	"fmt"
	"reflect"
)

// assign stores src into dst, accepting the loosely typed values produced by
// YAML decoding (float64 for every number, []any for sequences).
func assign(dst reflect.Value, src any) error {
	if src == nil {
		return fmt.Errorf("%w: nil value", ErrTypeMismatch)
	}
	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	switch dst.Kind() {
	case reflect.Array:
		if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
			return fmt.Errorf("%w: want sequence, got %T", ErrTypeMismatch, src)
		}
		if sv.Len() != dst.Len() {
			return fmt.Errorf("%w: want %d elements, got %d", ErrTypeMismatch, dst.Len(), sv.Len())
		}
		tmp := reflect.New(dst.Type()).Elem()
		for i := 0; i < sv.Len(); i++ {
			if err := assign(tmp.Index(i), sv.Index(i).Interface()); err != nil {
				return err
			}
		}
		dst.Set(tmp)
		return nil
	case reflect.Float32, reflect.Float64:
		switch sv.Kind() {
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(sv.Float())
			return nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			dst.SetFloat(float64(sv.Int()))
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch sv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if dst.OverflowInt(sv.Int()) {
				return fmt.Errorf("%w: %d overflows %s", ErrTypeMismatch, sv.Int(), dst.Type())
			}
			dst.SetInt(sv.Int())
			return nil
		case reflect.Float32, reflect.Float64:
			f := sv.Float()
			if f != float64(int64(f)) || dst.OverflowInt(int64(f)) {
				return fmt.Errorf("%w: %v is not an integer", ErrTypeMismatch, f)
			}
			dst.SetInt(int64(f))
			return nil
		}
	case reflect.Bool:
		if sv.Kind() == reflect.Bool {
			dst.SetBool(sv.Bool())
			return nil
		}
	case reflect.String:
		if sv.Kind() == reflect.String {
			dst.SetString(sv.String())
			return nil
		}
	}
	return fmt.Errorf("%w: cannot store %T in %s", ErrTypeMismatch, src, dst.Type())
}
