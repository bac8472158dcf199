package schema

import (
	"google.golang.org/protobuf/types/descriptorpb"
)

// Location is the source position and comments attached to a schema node.
type Location struct {
	// Line is the zero-based line the node starts on.
	Line                    int
	LeadingComments         string
	TrailingComments        string
	LeadingDetachedComments []string
}

// File represents one compiled proto file.
type File struct {
	// Name is the import path, e.g. envoy/config/core/v3/base.proto
	Name    string
	Package string
	Syntax  string
	// Comments are the file level comments: the earliest detached comment
	// block in the file.
	Comments []string
	Messages []*Message
	Enums    []*Enum
	// Statuses holds the file status annotations in precedence order.
	Statuses []FileStatus
}

// FileStatus is a work-in-progress marker from one file option source.
type FileStatus struct {
	Source         string
	WorkInProgress bool
}

// File status sources, in the order they are consulted.
const (
	StatusSourceUDPA = "udpa.annotations.file_status"
	StatusSourceXDS  = "xds.annotations.v3.file_status"
)

// Message represents a message definition.
type Message struct {
	Name string
	// FullName is the qualified name without a leading dot.
	FullName       string
	Location       Location
	Fields         []*Field
	Oneofs         []*Oneof
	Nested         []*Message
	Enums          []*Enum
	MapEntry       bool
	Deprecated     bool
	WorkInProgress bool
}

// Oneof represents a oneof declaration.
type Oneof struct {
	Name     string
	Location Location
	// Required is set by the validate.required oneof option.
	Required bool
}

// Field represents a message field.
type Field struct {
	Name     string
	FullName string
	Number   int32
	Label    descriptorpb.FieldDescriptorProto_Label
	Type     descriptorpb.FieldDescriptorProto_Type
	// TypeName is the fully qualified type name with a leading dot. Empty for
	// scalar fields.
	TypeName string
	// OneofIndex is nil when the field is not a oneof member.
	OneofIndex     *int32
	Location       Location
	Rules          *FieldRules
	Security       *SecurityOption
	WorkInProgress bool
	Deprecated     bool
}

// InOneof reports whether the field is a member of a oneof.
func (f *Field) InOneof() bool {
	return f.OneofIndex != nil
}

// Repeated reports whether the field has the repeated label.
func (f *Field) Repeated() bool {
	return f.Label == descriptorpb.FieldDescriptorProto_LABEL_REPEATED
}

// FieldRules is the subset of validate.rules that decides whether a field is
// documented as required.
type FieldRules struct {
	MessageRequired  bool
	DurationRequired bool
	StringMinLen     uint64
	StringMinBytes   uint64
	RepeatedMinItems uint64
}

// Required reports whether the rules force the field to be set.
func (r *FieldRules) Required() bool {
	if r == nil {
		return false
	}
	return r.MessageRequired ||
		r.DurationRequired ||
		r.StringMinLen > 0 ||
		r.StringMinBytes > 0 ||
		r.RepeatedMinItems > 0
}

// SecurityOption mirrors udpa.annotations.security.
type SecurityOption struct {
	ConfigureForUntrustedDownstream bool
	ConfigureForUntrustedUpstream   bool
}

// Enum represents an enum definition.
type Enum struct {
	Name       string
	FullName   string
	Location   Location
	Values     []*EnumValue
	Deprecated bool
}

// EnumValue represents a single enum value.
type EnumValue struct {
	Name     string
	FullName string
	Number   int32
	Location Location
}
