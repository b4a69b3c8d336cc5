package codec

import (
	"reflect"
	"sync"
)

const (
	// Pool limits to prevent memory bloat
	poolMaxValues  = 1024
	poolInitValues = 16
)

// staging buffers for array elements and record arguments
var valuesPool = sync.Pool{
	New: func() any {
		buf := make([]reflect.Value, 0, poolInitValues)
		return &buf
	},
}

func getValues() *[]reflect.Value {
	return valuesPool.Get().(*[]reflect.Value)
}

func putValues(buf *[]reflect.Value) {
	if buf == nil || cap(*buf) > poolMaxValues {
		return // reject oversized
	}
	clear(*buf)
	*buf = (*buf)[:0]
	valuesPool.Put(buf)
}
