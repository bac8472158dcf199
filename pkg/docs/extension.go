package docs

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/platinummonkey/protodoc/pkg/registry"
)

//go:embed templates/*.rst.tmpl
var templateFS embed.FS

const (
	extensionTemplate         = "extension.rst.tmpl"
	extensionCategoryTemplate = "extension_category.rst.tmpl"

	typeURLPrefix = "type.googleapis.com/"
)

type extensionData struct {
	Name            string
	Contrib         bool
	Status          string
	SecurityPosture string
	Categories      []string
	TypeURLs        []string
}

type extensionCategoryData struct {
	Category          string
	Extensions        []string
	ContribExtensions []string
}

func parseTemplates(labels Labeler, linkPrefixes []string) (*template.Template, error) {
	return template.New("extensions").Funcs(template.FuncMap{
		// typeURL links type URLs of documented messages to their anchor.
		"typeURL": func(typeURL string) string {
			if hasLinkPrefix(linkPrefixes, "."+typeURL) {
				return formatInternalLink(typeURLPrefix+typeURL, labels.Message(typeURL))
			}
			return "``" + typeURLPrefix + typeURL + "``"
		},
	}).ParseFS(templateFS, "templates/*.rst.tmpl")
}

// RenderExtension renders the metadata block of an extension. Extensions
// only found in the contrib registry get an installation note.
func (r *Renderer) RenderExtension(name string) (string, error) {
	key := "extension/" + name
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	md, source, ok := r.registry.Extension(name)
	if !ok {
		return "", newError(ErrUnknownExtension, name)
	}
	posture, ok := r.registry.SecurityPosture(md.SecurityPosture)
	if !ok {
		return "", &Error{
			Kind:  ErrUnknownSecurityPosture,
			Name:  name,
			Cause: fmt.Errorf("posture %q", md.SecurityPosture),
		}
	}

	out, err := r.execute(extensionTemplate, extensionData{
		Name:            name,
		Contrib:         source == registry.SourceContrib,
		Status:          strings.TrimSpace(r.registry.StatusText(md.Status)),
		SecurityPosture: strings.TrimSpace(posture),
		Categories:      md.Categories,
		TypeURLs:        md.TypeURLs,
	})
	if err != nil {
		return "", fmt.Errorf("render extension %s: %w", name, err)
	}

	out = "\n" + out + "\n"
	r.cache.Add(key, out)
	return out, nil
}

// RenderExtensionCategory renders the index block of an extension category.
func (r *Renderer) RenderExtensionCategory(name string) (string, error) {
	key := "category/" + name
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	primary, contrib, ok := r.registry.Category(name)
	if !ok {
		return "", newError(ErrUnknownExtensionCategory, name)
	}

	out, err := r.execute(extensionCategoryTemplate, extensionCategoryData{
		Category:          name,
		Extensions:        primary,
		ContribExtensions: contrib,
	})
	if err != nil {
		return "", fmt.Errorf("render extension category %s: %w", name, err)
	}

	out = "\n" + out + "\n"
	r.cache.Add(key, out)
	return out, nil
}

func (r *Renderer) execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
