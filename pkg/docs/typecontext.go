package docs

import (
	"fmt"

	"github.com/platinummonkey/protodoc/pkg/annotations"
	"github.com/platinummonkey/protodoc/pkg/schema"
)

// TypeContext is the traversal cursor for one schema node: its qualified
// name, source location and parsed leading comment. A message context also
// carries the lookup tables used while rendering its fields.
type TypeContext struct {
	File     *schema.File
	Name     string
	Location schema.Location
	Comment  annotations.Comment

	// mapEntries maps qualified names of the message's synthetic map entry
	// types to their definitions.
	mapEntries map[string]*schema.Message
	oneofs     *oneofTables
}

func newTypeContext(file *schema.File, name string, loc schema.Location) (*TypeContext, error) {
	comment, err := annotations.ParseComment(stripLeadingSpace(loc.LeadingComments))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &TypeContext{
		File:     file,
		Name:     name,
		Location: loc,
		Comment:  comment,
	}, nil
}

// extend returns the context of a child node.
func (tc *TypeContext) extend(name string, loc schema.Location) (*TypeContext, error) {
	return newTypeContext(tc.File, name, loc)
}

// Hidden reports whether the node is tagged not-implemented-hide.
func (tc *TypeContext) Hidden() bool {
	return tc.Comment.Hidden()
}

// forMessage returns the context of msg with its map entry table filled in.
func (tc *TypeContext) forMessage(msg *schema.Message) (*TypeContext, error) {
	mc, err := tc.extend(msg.FullName, msg.Location)
	if err != nil {
		return nil, err
	}
	mc.mapEntries = make(map[string]*schema.Message)
	for _, nested := range msg.Nested {
		if nested.MapEntry && len(nested.Fields) == 2 {
			mc.mapEntries[nested.FullName] = nested
		}
	}
	return mc, nil
}

// mapEntry returns the map entry type named by a field type name.
func (tc *TypeContext) mapEntry(typeName string) (*schema.Message, bool) {
	if len(typeName) == 0 || tc.mapEntries == nil {
		return nil, false
	}
	entry, ok := tc.mapEntries[typeName[1:]]
	return entry, ok
}
