package docs

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/protodoc/pkg/schema"
)

// oneofMember is a visible field of a oneof group, in declaration order.
type oneofMember struct {
	index int
	name  string
}

// oneofTables are the per-message oneof lookups. They are built in one pass
// over the fields before any field is rendered and only read afterwards.
type oneofTables struct {
	members  map[int32][]oneofMember
	required map[int32]bool
	names    map[int32]string
}

// buildOneofTables groups the non-hidden oneof members of msg. fields holds
// the context of each field of msg, by index.
func buildOneofTables(msg *schema.Message, fields []*TypeContext) *oneofTables {
	t := &oneofTables{
		members:  make(map[int32][]oneofMember),
		required: make(map[int32]bool),
		names:    make(map[int32]string),
	}
	for i, f := range msg.Fields {
		if !f.InOneof() || fields[i].Hidden() {
			continue
		}
		t.members[*f.OneofIndex] = append(t.members[*f.OneofIndex], oneofMember{index: i, name: f.Name})
	}
	for i, o := range msg.Oneofs {
		t.required[int32(i)] = o.Required
		t.names[int32(i)] = o.Name
	}
	return t
}

// soleRequired reports whether the field is the only visible member of a
// required oneof, in which case it is documented as required itself.
func (t *oneofTables) soleRequired(index int32) bool {
	return len(t.members[index]) == 1 && t.required[index]
}

// constraint returns the sentence listing the members of a oneof with more
// than one visible member, or "".
func (t *oneofTables) constraint(index int32, msgName string, labels Labeler) string {
	members := t.members[index]
	if len(members) <= 1 {
		return ""
	}
	links := make([]string, len(members))
	for i, m := range members {
		links[i] = formatInternalLink(m.name, labels.Field(msgName+"."+m.name))
	}
	template := "\nOnly one of %s may be set.\n"
	if t.required[index] {
		template = "\nPrecisely one of %s must be set.\n"
	}
	return fmt.Sprintf(template, strings.Join(links, ", "))
}
