package ast

// BindingKind is the structural shape of a local binding's declared type.
type BindingKind int

const (
	BindingValue BindingKind = iota
	BindingReference
	BindingPointer
	BindingArray
	BindingVector
	BindingMap
	BindingString
	BindingFileHandle
)

// ValueKind is the semantic kind a binding's value carries — the leaf
// alphabet that ReturnKind generalizes for arbitrary expressions.
type ValueKind int

const (
	ValueUnknown ValueKind = iota
	ValueInt32
	ValueInt64
	ValueUInt64
	ValueFloat32
	ValueFloat64
	ValueBool
	ValueString
)

func (v ValueKind) String() string {
	switch v {
	case ValueInt32:
		return "i32"
	case ValueInt64:
		return "i64"
	case ValueUInt64:
		return "u64"
	case ValueFloat32:
		return "f32"
	case ValueFloat64:
		return "f64"
	case ValueBool:
		return "bool"
	case ValueString:
		return "string"
	default:
		return "unknown"
	}
}

// IsFloat reports whether v is one of the two floating-point kinds.
func (v ValueKind) IsFloat() bool { return v == ValueFloat32 || v == ValueFloat64 }

// IsInteger reports whether v is one of the three integer kinds.
func (v ValueKind) IsInteger() bool {
	return v == ValueInt32 || v == ValueInt64 || v == ValueUInt64
}

// IsSignedInteger reports whether v is a signed integer kind.
func (v ValueKind) IsSignedInteger() bool { return v == ValueInt32 || v == ValueInt64 }

// IsNumeric reports whether v is a float or integer kind.
func (v ValueKind) IsNumeric() bool { return v.IsFloat() || v.IsInteger() }

// Binding records everything the validator infers about a local variable,
// parameter, or block-introduced name: its declared shape, its semantic
// value kind, and the mutability/ownership flags that the lowerer and
// validator both need to consult.
type Binding struct {
	Name string

	TypeName    string // declared type transform name, e.g. "array", "int32"
	TemplateArg string // single template argument, e.g. element type for array<T>

	Kind      BindingKind
	ValueKind ValueKind
	Mutable   bool

	// Populated when Kind is BindingArray, BindingVector, or BindingMap.
	ElemValueKind ValueKind
	KeyValueKind  ValueKind

	// IsEntryArgString marks a string binding whose bytes alias a slot in
	// the process argv rather than the IR string table. It is a capability
	// restriction, not an ownership change: the binding remains non-owning
	// and must not be used where a string-table index is expected (map
	// lookup keys, string indexing on copies).
	IsEntryArgString bool
}

// ReturnKind is the semantic kind of a fully-evaluated expression or a
// definition's declared return type — the generalization of ValueKind to
// non-leaf shapes (structs, collections, pointers) and the Void/Unknown
// sentinels used during inference.
type ReturnKind int

const (
	ReturnUnknown ReturnKind = iota
	ReturnVoid
	ReturnInt32
	ReturnInt64
	ReturnUInt64
	ReturnFloat32
	ReturnFloat64
	ReturnBool
	ReturnString
	ReturnStruct
	ReturnArray
	ReturnVector
	ReturnMap
	ReturnPointer
	ReturnReference
)

func (r ReturnKind) String() string {
	switch r {
	case ReturnVoid:
		return "void"
	case ReturnInt32:
		return "int32"
	case ReturnInt64:
		return "int64"
	case ReturnUInt64:
		return "uint64"
	case ReturnFloat32:
		return "float32"
	case ReturnFloat64:
		return "float64"
	case ReturnBool:
		return "bool"
	case ReturnString:
		return "string"
	case ReturnStruct:
		return "struct"
	case ReturnArray:
		return "array"
	case ReturnVector:
		return "vector"
	case ReturnMap:
		return "map"
	case ReturnPointer:
		return "Pointer"
	case ReturnReference:
		return "Reference"
	default:
		return "unknown"
	}
}

// ValueKindToReturnKind widens a leaf ValueKind to the ReturnKind alphabet.
func ValueKindToReturnKind(v ValueKind) ReturnKind {
	switch v {
	case ValueInt32:
		return ReturnInt32
	case ValueInt64:
		return ReturnInt64
	case ValueUInt64:
		return ReturnUInt64
	case ValueFloat32:
		return ReturnFloat32
	case ValueFloat64:
		return ReturnFloat64
	case ValueBool:
		return ReturnBool
	case ValueString:
		return ReturnString
	default:
		return ReturnUnknown
	}
}

// IsNumeric reports whether r denotes one of the five numeric ReturnKinds.
func (r ReturnKind) IsNumeric() bool {
	switch r {
	case ReturnInt32, ReturnInt64, ReturnUInt64, ReturnFloat32, ReturnFloat64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether r is one of the two floating-point ReturnKinds.
func (r ReturnKind) IsFloat() bool { return r == ReturnFloat32 || r == ReturnFloat64 }

// IsInteger reports whether r is one of the three integer ReturnKinds.
func (r ReturnKind) IsInteger() bool {
	return r == ReturnInt32 || r == ReturnInt64 || r == ReturnUInt64
}

// IsSignedInteger reports whether r is a signed integer ReturnKind.
func (r ReturnKind) IsSignedInteger() bool { return r == ReturnInt32 || r == ReturnInt64 }
