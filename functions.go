package jsonpath

// TypeClass is one of RFC 9535's three well-typedness classes describing
// what a filter sub-expression produces.
type TypeClass int

const (
	ValueType TypeClass = iota
	LogicalType
	NodesType
)

func (t TypeClass) String() string {
	switch t {
	case ValueType:
		return "Value"
	case LogicalType:
		return "Logical"
	case NodesType:
		return "Nodes"
	default:
		return "Unknown"
	}
}

// FunctionExtensionType is the declared signature of a function extension:
// its parameter type classes and its result type class.
type FunctionExtensionType struct {
	Args   []TypeClass
	Result TypeClass
}

// DefaultFunctionExtensions returns a fresh copy of the built-in function
// registry (count, length, match, search, value) defined by RFC 9535.
// Callers may extend or override it before passing it to NewParser.
func DefaultFunctionExtensions() map[string]FunctionExtensionType {
	return map[string]FunctionExtensionType{
		"count":  {Args: []TypeClass{NodesType}, Result: ValueType},
		"length": {Args: []TypeClass{ValueType}, Result: ValueType},
		"match":  {Args: []TypeClass{ValueType, ValueType}, Result: LogicalType},
		"search": {Args: []TypeClass{ValueType, ValueType}, Result: LogicalType},
		"value":  {Args: []TypeClass{NodesType}, Result: ValueType},
	}
}
