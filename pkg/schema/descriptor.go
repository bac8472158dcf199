package schema

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Field numbers of descriptor.proto used in SourceCodeInfo paths.
const (
	fileMessageTypeTag = 4
	fileEnumTypeTag    = 5
	messageFieldTag    = 2
	messageNestedTag   = 3
	messageEnumTag     = 4
	messageOneofTag    = 8
	enumValueTag       = 2
)

// Option extensions consulted while converting descriptors.
const (
	extValidateRules   = "validate.rules"
	extValidateOneof   = "validate.required"
	extSecurity        = "udpa.annotations.security"
	extUDPAFileStatus  = StatusSourceUDPA
	extXDSFileStatus   = StatusSourceXDS
	extXDSMessageStats = "xds.annotations.v3.message_status"
	extXDSFieldStatus  = "xds.annotations.v3.field_status"
)

// FromDescriptors converts linked file descriptors into schema files. Option
// extensions are resolved against every extension declared in the files and
// their transitive imports.
func FromDescriptors(fds ...protoreflect.FileDescriptor) ([]*File, error) {
	types, err := ExtensionTypes(fds...)
	if err != nil {
		return nil, err
	}

	files := make([]*File, 0, len(fds))
	for _, fd := range fds {
		f, err := Convert(protodesc.ToFileDescriptorProto(fd), types)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", fd.Path(), err)
		}
		files = append(files, f)
	}
	return files, nil
}

// ExtensionTypes builds a dynamic extension registry from every extension
// reachable from fds.
func ExtensionTypes(fds ...protoreflect.FileDescriptor) (*protoregistry.Types, error) {
	types := new(protoregistry.Types)
	seen := make(map[string]struct{})

	var visit func(fd protoreflect.FileDescriptor) error
	visit = func(fd protoreflect.FileDescriptor) error {
		if _, ok := seen[fd.Path()]; ok {
			return nil
		}
		seen[fd.Path()] = struct{}{}

		imports := fd.Imports()
		for i := 0; i < imports.Len(); i++ {
			if err := visit(imports.Get(i).FileDescriptor); err != nil {
				return err
			}
		}
		if err := registerExtensions(types, fd.Extensions()); err != nil {
			return err
		}
		return registerNestedExtensions(types, fd.Messages())
	}

	for _, fd := range fds {
		if err := visit(fd); err != nil {
			return nil, err
		}
	}
	return types, nil
}

func registerNestedExtensions(types *protoregistry.Types, msgs protoreflect.MessageDescriptors) error {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if err := registerExtensions(types, md.Extensions()); err != nil {
			return err
		}
		if err := registerNestedExtensions(types, md.Messages()); err != nil {
			return err
		}
	}
	return nil
}

func registerExtensions(types *protoregistry.Types, exts protoreflect.ExtensionDescriptors) error {
	for i := 0; i < exts.Len(); i++ {
		xd := exts.Get(i)
		if xd.IsPlaceholder() {
			continue
		}
		if _, err := types.FindExtensionByName(xd.FullName()); err == nil {
			continue
		}
		if err := types.RegisterExtension(dynamicpb.NewExtensionType(xd)); err != nil {
			return fmt.Errorf("failed to register extension %s: %w", xd.FullName(), err)
		}
	}
	return nil
}

// Convert turns a file descriptor proto into a schema file. types resolves
// custom option extensions and may be nil, in which case only options already
// known to the Go runtime are decoded.
func Convert(fdp *descriptorpb.FileDescriptorProto, types *protoregistry.Types) (*File, error) {
	c := &converter{
		locations: indexLocations(fdp.GetSourceCodeInfo()),
		types:     types,
	}
	return c.file(fdp)
}

type converter struct {
	locations map[string]Location
	types     *protoregistry.Types
}

func (c *converter) file(fdp *descriptorpb.FileDescriptorProto) (*File, error) {
	f := &File{
		Name:     fdp.GetName(),
		Package:  fdp.GetPackage(),
		Syntax:   fdp.GetSyntax(),
		Comments: fileLevelComments(fdp.GetSourceCodeInfo()),
	}

	opts, err := c.extensions(fdp.GetOptions())
	if err != nil {
		return nil, fmt.Errorf("file options: %w", err)
	}
	for _, source := range []string{extUDPAFileStatus, extXDSFileStatus} {
		if v, ok := opts[protoreflect.FullName(source)]; ok {
			f.Statuses = append(f.Statuses, FileStatus{
				Source:         source,
				WorkInProgress: boolField(v.Message(), "work_in_progress"),
			})
		}
	}

	for i, mp := range fdp.GetMessageType() {
		m, err := c.message(mp, qualify(fdp.GetPackage(), mp.GetName()), []int32{fileMessageTypeTag, int32(i)})
		if err != nil {
			return nil, err
		}
		f.Messages = append(f.Messages, m)
	}
	for i, ep := range fdp.GetEnumType() {
		f.Enums = append(f.Enums, c.enum(ep, qualify(fdp.GetPackage(), ep.GetName()), []int32{fileEnumTypeTag, int32(i)}))
	}
	return f, nil
}

func (c *converter) message(mp *descriptorpb.DescriptorProto, fullName string, path []int32) (*Message, error) {
	m := &Message{
		Name:       mp.GetName(),
		FullName:   fullName,
		Location:   c.location(path),
		MapEntry:   mp.GetOptions().GetMapEntry(),
		Deprecated: mp.GetOptions().GetDeprecated(),
	}

	opts, err := c.extensions(mp.GetOptions())
	if err != nil {
		return nil, fmt.Errorf("message %s options: %w", fullName, err)
	}
	if v, ok := opts[extXDSMessageStats]; ok {
		m.WorkInProgress = boolField(v.Message(), "work_in_progress")
	}

	for i, fp := range mp.GetField() {
		fld, err := c.field(fp, fullName+"."+fp.GetName(), appendPath(path, messageFieldTag, i))
		if err != nil {
			return nil, err
		}
		m.Fields = append(m.Fields, fld)
	}

	for i, op := range mp.GetOneofDecl() {
		o := &Oneof{
			Name:     op.GetName(),
			Location: c.location(appendPath(path, messageOneofTag, i)),
		}
		oneofOpts, err := c.extensions(op.GetOptions())
		if err != nil {
			return nil, fmt.Errorf("oneof %s.%s options: %w", fullName, op.GetName(), err)
		}
		if v, ok := oneofOpts[extValidateOneof]; ok {
			o.Required = v.Bool()
		}
		m.Oneofs = append(m.Oneofs, o)
	}

	for i, np := range mp.GetNestedType() {
		nested, err := c.message(np, fullName+"."+np.GetName(), appendPath(path, messageNestedTag, i))
		if err != nil {
			return nil, err
		}
		m.Nested = append(m.Nested, nested)
	}

	for i, ep := range mp.GetEnumType() {
		m.Enums = append(m.Enums, c.enum(ep, fullName+"."+ep.GetName(), appendPath(path, messageEnumTag, i)))
	}
	return m, nil
}

func (c *converter) field(fp *descriptorpb.FieldDescriptorProto, fullName string, path []int32) (*Field, error) {
	f := &Field{
		Name:       fp.GetName(),
		FullName:   fullName,
		Number:     fp.GetNumber(),
		Label:      fp.GetLabel(),
		Type:       fp.GetType(),
		TypeName:   fp.GetTypeName(),
		Location:   c.location(path),
		Deprecated: fp.GetOptions().GetDeprecated(),
	}
	// Synthetic oneofs of proto3 optional fields are not documented as
	// oneofs.
	if fp.OneofIndex != nil && !fp.GetProto3Optional() {
		idx := fp.GetOneofIndex()
		f.OneofIndex = &idx
	}

	opts, err := c.extensions(fp.GetOptions())
	if err != nil {
		return nil, fmt.Errorf("field %s options: %w", fullName, err)
	}
	if v, ok := opts[extValidateRules]; ok {
		f.Rules = fieldRules(v.Message())
	}
	if v, ok := opts[extSecurity]; ok {
		f.Security = &SecurityOption{
			ConfigureForUntrustedDownstream: boolField(v.Message(), "configure_for_untrusted_downstream"),
			ConfigureForUntrustedUpstream:   boolField(v.Message(), "configure_for_untrusted_upstream"),
		}
	}
	if v, ok := opts[extXDSFieldStatus]; ok {
		f.WorkInProgress = boolField(v.Message(), "work_in_progress")
	}
	return f, nil
}

func (c *converter) enum(ep *descriptorpb.EnumDescriptorProto, fullName string, path []int32) *Enum {
	e := &Enum{
		Name:       ep.GetName(),
		FullName:   fullName,
		Location:   c.location(path),
		Deprecated: ep.GetOptions().GetDeprecated(),
	}
	for i, vp := range ep.GetValue() {
		e.Values = append(e.Values, &EnumValue{
			Name:     vp.GetName(),
			FullName: fullName + "." + vp.GetName(),
			Number:   vp.GetNumber(),
			Location: c.location(appendPath(path, enumValueTag, i)),
		})
	}
	return e
}

func (c *converter) location(path []int32) Location {
	return c.locations[pathKey(path)]
}

// extensions decodes the extension fields set on an options message, keyed
// by extension full name.
func (c *converter) extensions(opts proto.Message) (map[protoreflect.FullName]protoreflect.Value, error) {
	result := make(map[protoreflect.FullName]protoreflect.Value)
	if opts == nil || !opts.ProtoReflect().IsValid() {
		return result, nil
	}

	decoded := opts
	if c.types != nil {
		// Round trip through the wire format so extensions left as unknown
		// fields are parsed with the dynamic types.
		data, err := proto.Marshal(opts)
		if err != nil {
			return nil, err
		}
		decoded = opts.ProtoReflect().New().Interface()
		if err := (proto.UnmarshalOptions{Resolver: c.types}).Unmarshal(data, decoded); err != nil {
			return nil, err
		}
	}

	decoded.ProtoReflect().Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if fd.IsExtension() {
			result[fd.FullName()] = v
		}
		return true
	})
	return result, nil
}

func fieldRules(m protoreflect.Message) *FieldRules {
	rules := &FieldRules{}
	if sub, ok := messageField(m, "message"); ok {
		rules.MessageRequired = boolField(sub, "required")
	}
	if sub, ok := messageField(m, "duration"); ok {
		rules.DurationRequired = boolField(sub, "required")
	}
	if sub, ok := messageField(m, "string"); ok {
		rules.StringMinLen = uintField(sub, "min_len")
		rules.StringMinBytes = uintField(sub, "min_bytes")
	}
	if sub, ok := messageField(m, "repeated"); ok {
		rules.RepeatedMinItems = uintField(sub, "min_items")
	}
	return rules
}

func messageField(m protoreflect.Message, name string) (protoreflect.Message, bool) {
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil || fd.Message() == nil || !m.Has(fd) {
		return nil, false
	}
	return m.Get(fd).Message(), true
}

func boolField(m protoreflect.Message, name string) bool {
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil || fd.Kind() != protoreflect.BoolKind {
		return false
	}
	return m.Get(fd).Bool()
}

func uintField(m protoreflect.Message, name string) uint64 {
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		return 0
	}
	switch fd.Kind() {
	case protoreflect.Uint64Kind, protoreflect.Uint32Kind, protoreflect.Fixed64Kind, protoreflect.Fixed32Kind:
		return m.Get(fd).Uint()
	case protoreflect.Int64Kind, protoreflect.Int32Kind, protoreflect.Sint64Kind, protoreflect.Sint32Kind:
		if v := m.Get(fd).Int(); v > 0 {
			return uint64(v)
		}
	}
	return 0
}

func indexLocations(info *descriptorpb.SourceCodeInfo) map[string]Location {
	locations := make(map[string]Location)
	for _, loc := range info.GetLocation() {
		key := pathKey(loc.GetPath())
		// The first location recorded for a path is the full declaration.
		if _, ok := locations[key]; ok {
			continue
		}
		var line int
		if span := loc.GetSpan(); len(span) > 0 {
			line = int(span[0])
		}
		locations[key] = Location{
			Line:                    line,
			LeadingComments:         loc.GetLeadingComments(),
			TrailingComments:        loc.GetTrailingComments(),
			LeadingDetachedComments: loc.GetLeadingDetachedComments(),
		}
	}
	return locations
}

// fileLevelComments returns the detached comments of the location that starts
// earliest in the file.
func fileLevelComments(info *descriptorpb.SourceCodeInfo) []string {
	var comments []string
	earliest := -1
	for _, loc := range info.GetLocation() {
		detached := loc.GetLeadingDetachedComments()
		span := loc.GetSpan()
		if len(detached) == 0 || len(span) == 0 {
			continue
		}
		if earliest == -1 || int(span[0]) < earliest {
			comments = detached
			earliest = int(span[0])
		}
	}
	return comments
}

func pathKey(path []int32) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ".")
}

func appendPath(path []int32, tag int32, index int) []int32 {
	out := make([]int32, len(path), len(path)+2)
	copy(out, path)
	return append(out, tag, int32(index))
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
