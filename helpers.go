package rowcursor

import (
	"fmt"
	"reflect"
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// structType returns the struct type behind T and whether T is a pointer to it
func structType[T any]() (reflect.Type, bool, error) {
	typ := typeOf[T]()

	switch {
	case typ.Kind() == reflect.Struct:
		return typ, false, nil
	case typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Struct:
		return typ.Elem(), true, nil
	default:
		return nil, false, fmt.Errorf("type %q is not a struct or pointer to a struct", typ.String())
	}
}
