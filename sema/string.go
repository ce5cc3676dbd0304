package sema

// String is an immutable string value.
type String struct {
	value string
}

// NewString returns a string value.
func NewString(s string) *String { return &String{value: s} }

func (s *String) Type() TypeID                        { return TypeString }
func (s *String) Kind() Kind                          { return KindString }
func (s *String) Property(name string) (Value, error) { return nil, propertyNotFound(s, name) }
func (s *String) Clone() Value                        { return &String{value: s.value} }

// String returns the contents.
func (s *String) String() string { return s.value }

func concatStrings(lhs, rhs Value) (Value, error) {
	return NewString(lhs.(*String).value + rhs.(*String).value), nil
}
