package dynamoval

import (
	"reflect"

	"github.com/creachadair/mds/mapset"
)

var (
	// intKinds and uintKinds are the integer kinds that render as
	// decimal text, both as numbers and as map keys.
	intKinds = mapset.New(
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
	)
	uintKinds = mapset.New(
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
	)
)
