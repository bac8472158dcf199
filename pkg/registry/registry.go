package registry

import (
	"github.com/tidwall/btree"
)

// Data is the raw content of all registries before indexing.
type Data struct {
	Extensions        map[string]ExtensionMetadata
	ContribExtensions map[string]ExtensionMetadata
	Manifest          map[string]ManifestEntry
	// SecurityPostures and StatusValues override the defaults key by key.
	SecurityPostures map[string]string
	StatusValues     map[string]string
}

// Registry is the read-only view over extension metadata, extension category
// indexes and the field manifest. It is never mutated after New returns, so a
// single instance can be shared by concurrent renders.
type Registry struct {
	extensions        map[string]ExtensionMetadata
	contribExtensions map[string]ExtensionMetadata
	categories        map[string][]string
	contribCategories map[string][]string
	manifest          map[string]ManifestEntry
	securityPostures  map[string]string
	statusValues      map[string]string
}

// New indexes data into a Registry. An extension listed in both the primary
// and contrib registries is rejected.
func New(data Data) (*Registry, error) {
	for name := range data.ContribExtensions {
		if _, ok := data.Extensions[name]; ok {
			return nil, NewDuplicateExtensionError(name)
		}
	}

	r := &Registry{
		extensions:        copyExtensions(data.Extensions),
		contribExtensions: copyExtensions(data.ContribExtensions),
		manifest:          make(map[string]ManifestEntry, len(data.Manifest)),
		securityPostures:  mergeTexts(DefaultSecurityPostures, data.SecurityPostures),
		statusValues:      mergeTexts(DefaultStatusValues, data.StatusValues),
	}
	r.categories = indexCategories(r.extensions)
	r.contribCategories = indexCategories(r.contribExtensions)
	for name, entry := range data.Manifest {
		r.manifest[name] = entry
	}
	return r, nil
}

// Extension looks an extension up in the primary registry first and then in
// the contrib registry.
func (r *Registry) Extension(name string) (ExtensionMetadata, Source, bool) {
	if md, ok := r.extensions[name]; ok {
		return md, SourcePrimary, true
	}
	if md, ok := r.contribExtensions[name]; ok {
		return md, SourceContrib, true
	}
	return ExtensionMetadata{}, SourcePrimary, false
}

// Category returns the sorted primary and contrib members of an extension
// category. ok is false when the category appears in neither index.
func (r *Registry) Category(name string) (primary, contrib []string, ok bool) {
	primary = r.categories[name]
	contrib = r.contribCategories[name]
	return primary, contrib, len(primary) > 0 || len(contrib) > 0
}

// ManifestEntry returns the manifest record for a field qualified name.
func (r *Registry) ManifestEntry(field string) (ManifestEntry, bool) {
	entry, ok := r.manifest[field]
	return entry, ok
}

// SecurityPosture returns the description for a security posture key.
func (r *Registry) SecurityPosture(key string) (string, bool) {
	text, ok := r.securityPostures[key]
	return text, ok
}

// StatusText returns the description for an extension status key. Unknown
// and stable statuses have no text.
func (r *Registry) StatusText(key string) string {
	return r.statusValues[key]
}

// ExtensionCount returns the number of primary and contrib extensions.
func (r *Registry) ExtensionCount() (primary, contrib int) {
	return len(r.extensions), len(r.contribExtensions)
}

func indexCategories(extensions map[string]ExtensionMetadata) map[string][]string {
	sets := make(map[string]*btree.Set[string])
	for name, md := range extensions {
		if md.Undocumented {
			continue
		}
		for _, category := range md.Categories {
			set, ok := sets[category]
			if !ok {
				set = new(btree.Set[string])
				sets[category] = set
			}
			set.Insert(name)
		}
	}

	index := make(map[string][]string, len(sets))
	for category, set := range sets {
		members := make([]string, 0, set.Len())
		set.Scan(func(name string) bool {
			members = append(members, name)
			return true
		})
		index[category] = members
	}
	return index
}

func copyExtensions(in map[string]ExtensionMetadata) map[string]ExtensionMetadata {
	out := make(map[string]ExtensionMetadata, len(in))
	for name, md := range in {
		md.Categories = append([]string(nil), md.Categories...)
		md.TypeURLs = append([]string(nil), md.TypeURLs...)
		out[name] = md
	}
	return out
}

func mergeTexts(defaults, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
