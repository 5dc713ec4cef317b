package table

import (
	"reflect"
	"strings"
)

func reflectType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func toLower(s string) string {
	return strings.ToLower(s)
}
