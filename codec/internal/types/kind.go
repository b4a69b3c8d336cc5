package types

type Kind uint8

const (
	KindScalar Kind = iota
	KindBytes
	KindArray
	KindList
	KindMap
	KindEnum
	KindStruct
	KindRecord
	KindOpaque
	KindUnresolved
	KindPointer
)

var kindNames = [...]string{
	KindScalar:     "scalar",
	KindBytes:      "bytes",
	KindArray:      "array",
	KindList:       "list",
	KindMap:        "map",
	KindEnum:       "enum",
	KindStruct:     "struct",
	KindRecord:     "record",
	KindOpaque:     "opaque",
	KindUnresolved: "unresolved",
	KindPointer:    "pointer",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}
