package docs

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/protodoc/pkg/schema"
)

const (
	wellKnownPrefix = ".google.protobuf."
	rpcPrefix       = ".google.rpc."

	wellKnownURL = "https://developers.google.com/protocol-buffers/docs/reference/google.protobuf#"
	rpcURL       = "https://cloud.google.com/natural-language/docs/reference/rpc/google.rpc#"
	scalarURL    = "https://developers.google.com/protocol-buffers/docs/proto#scalar"
)

// scalarNames maps scalar kinds to the names used on the scalar reference
// page.
var scalarNames = map[descriptorpb.FieldDescriptorProto_Type]string{
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:   "double",
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:    "float",
	descriptorpb.FieldDescriptorProto_TYPE_INT32:    "int32",
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED32: "int32",
	descriptorpb.FieldDescriptorProto_TYPE_SINT32:   "int32",
	descriptorpb.FieldDescriptorProto_TYPE_FIXED32:  "uint32",
	descriptorpb.FieldDescriptorProto_TYPE_UINT32:   "uint32",
	descriptorpb.FieldDescriptorProto_TYPE_INT64:    "int64",
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED64: "int64",
	descriptorpb.FieldDescriptorProto_TYPE_SINT64:   "int64",
	descriptorpb.FieldDescriptorProto_TYPE_FIXED64:  "uint64",
	descriptorpb.FieldDescriptorProto_TYPE_UINT64:   "uint64",
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:     "bool",
	descriptorpb.FieldDescriptorProto_TYPE_STRING:   "string",
	descriptorpb.FieldDescriptorProto_TYPE_BYTES:    "bytes",
}

// labelNames is the prefix rendered before a field's type.
var labelNames = map[descriptorpb.FieldDescriptorProto_Label]string{
	descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL: "",
	descriptorpb.FieldDescriptorProto_LABEL_REQUIRED: "",
	descriptorpb.FieldDescriptorProto_LABEL_REPEATED: "**repeated** ",
}

// typeKind is the closed set of shapes a field type can take.
type typeKind int

const (
	kindScalar typeKind = iota
	kindMessage
	kindEnum
	kindMap
	kindWellKnown
	kindRPC
	kindOpaque
)

func (k typeKind) String() string {
	switch k {
	case kindScalar:
		return "scalar"
	case kindMessage:
		return "message"
	case kindEnum:
		return "enum"
	case kindMap:
		return "map"
	case kindWellKnown:
		return "well-known"
	case kindRPC:
		return "rpc"
	case kindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("typeKind(%d)", int(k))
	}
}

// fieldType is a classified field type.
type fieldType struct {
	kind typeKind
	// name is the normalized type name for message and enum kinds, the bare
	// name for well-known and rpc kinds, and the raw type name otherwise.
	name  string
	entry *schema.Message
}

func (r *Renderer) isLinked(typeName string) bool {
	return hasLinkPrefix(r.config.LinkPrefixes, typeName)
}

func hasLinkPrefix(prefixes []string, typeName string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(typeName, prefix) {
			return true
		}
	}
	return false
}

// classifyField decides which shape a field's type takes.
func (r *Renderer) classifyField(tc *TypeContext, f *schema.Field) fieldType {
	switch {
	case r.isLinked(f.TypeName):
		name := r.labels.Normalize(f.TypeName)
		switch f.Type {
		case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
			if entry, ok := tc.mapEntry(f.TypeName); ok {
				return fieldType{kind: kindMap, name: name, entry: entry}
			}
			return fieldType{kind: kindMessage, name: name}
		case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
			return fieldType{kind: kindEnum, name: name}
		}
		return fieldType{kind: kindScalar}
	case strings.HasPrefix(f.TypeName, wellKnownPrefix):
		return fieldType{kind: kindWellKnown, name: strings.TrimPrefix(f.TypeName, wellKnownPrefix)}
	case strings.HasPrefix(f.TypeName, rpcPrefix):
		return fieldType{kind: kindRPC, name: strings.TrimPrefix(f.TypeName, rpcPrefix)}
	case f.TypeName != "":
		return fieldType{kind: kindOpaque, name: f.TypeName}
	default:
		return fieldType{kind: kindScalar}
	}
}

// formatFieldType renders the type expression of a field.
func (r *Renderer) formatFieldType(tc *TypeContext, f *schema.Field) (string, error) {
	ft := r.classifyField(tc, f)
	switch ft.kind {
	case kindMap:
		key, err := r.formatFieldType(tc, ft.entry.Fields[0])
		if err != nil {
			return "", err
		}
		value, err := r.formatFieldType(tc, ft.entry.Fields[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("map<%s, %s>", key, value), nil
	case kindMessage:
		return formatInternalLink(ft.name, r.labels.Message(ft.name)), nil
	case kindEnum:
		return formatInternalLink(ft.name, r.labels.Enum(ft.name)), nil
	case kindWellKnown:
		return formatExternalLink(ft.name, wellKnownURL+strings.ToLower(ft.name)), nil
	case kindRPC:
		return formatExternalLink(ft.name, rpcURL+strings.ToLower(ft.name)), nil
	case kindOpaque:
		return ft.name, nil
	}

	name, ok := scalarNames[f.Type]
	if !ok {
		return "", &Error{
			Kind:  ErrUnknownFieldType,
			Name:  f.FullName,
			Cause: fmt.Errorf("type %d", int32(f.Type)),
		}
	}
	return formatExternalLink(name, scalarURL), nil
}

// formatFieldTypeAsJSON renders the value placeholder used in a message's
// JSON preview.
func formatFieldTypeAsJSON(tc *TypeContext, f *schema.Field) string {
	if _, ok := tc.mapEntry(f.TypeName); ok {
		return "{...}"
	}
	if f.Repeated() {
		return "[]"
	}
	if f.Type == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
		return "{...}"
	}
	return "..."
}
