package docs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/protodoc/pkg/annotations"
	"github.com/platinummonkey/protodoc/pkg/registry"
	"github.com/platinummonkey/protodoc/pkg/schema"
)

const defaultCacheSize = 256

// Validator checks a rendered block of RST. A nil error means the block is
// well formed.
type Validator interface {
	Validate(name, text string) error
}

// Options configures a Renderer.
type Options struct {
	Config   Config
	Registry *registry.Registry
	// Validator is run over every rendered message block. Optional.
	Validator Validator
	// Strict turns validator failures into ErrInvalidRST instead of logged
	// warnings.
	Strict bool
	Logger logrus.FieldLogger
	// CacheSize bounds the number of rendered extension and category blocks
	// kept in memory.
	CacheSize int
}

// Renderer turns schema files into RST documents. It holds no per-file
// state and is safe for concurrent use.
type Renderer struct {
	config    Config
	labels    Labeler
	registry  *registry.Registry
	validator Validator
	strict    bool
	logger    logrus.FieldLogger
	templates *template.Template
	cache     *lru.Cache[string, string]
}

// NewRenderer creates a renderer.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Registry == nil {
		reg, err := registry.New(registry.Data{})
		if err != nil {
			return nil, err
		}
		opts.Registry = reg
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}

	labels := NewLabeler(opts.Config)
	templates, err := parseTemplates(labels, opts.Config.LinkPrefixes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create extension cache: %w", err)
	}

	return &Renderer{
		config:    opts.Config,
		labels:    labels,
		registry:  opts.Registry,
		validator: opts.Validator,
		strict:    opts.Strict,
		logger:    opts.Logger,
		templates: templates,
		cache:     cache,
	}, nil
}

// Labels returns the labeler used for anchors and links.
func (r *Renderer) Labels() Labeler {
	return r.labels
}

// Result is the rendered document of one file.
type Result struct {
	File   string
	Output string
	// Hidden is set when the file carries a file level not-implemented-hide
	// annotation. Output is empty.
	Hidden bool
	// Orphan is set when no message or enum of the file rendered any
	// content.
	Orphan bool
	// Warnings counts blocks that failed validation.
	Warnings int
}

// OutputName returns the document name for a proto file.
func OutputName(file string) string {
	return file + ".rst"
}

// RenderFiles renders files concurrently, at most parallelism at a time.
// Results are in input order. The first fatal error cancels the remaining
// work.
func (r *Renderer) RenderFiles(ctx context.Context, files []*schema.File, parallelism int) ([]Result, error) {
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.RenderFile(f)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RenderFile renders one file.
func (r *Renderer) RenderFile(f *schema.File) (Result, error) {
	fr := &fileRenderer{Renderer: r, file: f, log: r.logger.WithField("file", f.Name)}
	return fr.render()
}

// fileRenderer carries the state of one file render.
type fileRenderer struct {
	*Renderer
	file     *schema.File
	log      logrus.FieldLogger
	warnings int
}

func (fr *fileRenderer) render() (Result, error) {
	f := fr.file
	result := Result{File: f.Name}

	parts := make([]string, len(f.Comments))
	for i, c := range f.Comments {
		parts[i] = stripLeadingSpace(c) + "\n"
	}
	fileComment, err := annotations.ParseComment(strings.Join(parts, "\n"))
	if err != nil {
		return result, fmt.Errorf("file comment: %w", err)
	}
	if fileComment.Hidden() {
		result.Hidden = true
		return result, nil
	}

	root := &TypeContext{File: f, Name: f.Package}

	msgs := make([]string, 0, len(f.Messages))
	for _, m := range f.Messages {
		out, err := fr.message(root, m)
		if err != nil {
			return result, err
		}
		msgs = append(msgs, out)
	}
	enums := make([]string, 0, len(f.Enums))
	for _, e := range f.Enums {
		out, err := fr.enum(root, e)
		if err != nil {
			return result, err
		}
		enums = append(enums, out)
	}

	hasContent := anyNonEmpty(msgs) || anyNonEmpty(enums)

	title, hasTitle := fileComment.Annotations.Get(annotations.DocTitle)
	title = strings.TrimSpace(title)
	if hasContent && !hasTitle && strings.HasPrefix(f.Name, fr.config.TitleRequiredPrefix) {
		return result, newError(ErrMissingTitle, f.Name)
	}
	if !hasTitle {
		title = f.Name
	}

	header := formatAnchor(fr.labels.File(f.Name)) + formatHeader(fileHeaderStyle, title+" (proto)") + "\n\n"
	if name, ok := fileComment.Annotations.Get(annotations.Extension); ok {
		ext, err := fr.RenderExtension(strings.TrimSpace(name))
		if err != nil {
			return result, err
		}
		header += ext
	}
	if !hasContent {
		header = orphanMarker + header
		result.Orphan = true
	}

	// The first status source that marks the file work in progress wins.
	var warnings string
	for _, status := range f.Statuses {
		if status.WorkInProgress {
			warnings = wipWarning
			break
		}
	}

	result.Output = header + warnings + fileComment.Text() + strings.Join(msgs, "\n") + strings.Join(enums, "\n")
	result.Warnings = fr.warnings
	return result, nil
}

// formatComment renders a comment with its annotations stripped, followed by
// the blocks the annotations ask for.
func (r *Renderer) formatComment(c annotations.Comment, workInProgress bool) (string, error) {
	var b strings.Builder
	b.WriteString(annotations.Without(c.Raw + "\n"))
	if workInProgress {
		b.WriteString(wipWarning)
	}
	if name, ok := c.Annotations.Get(annotations.Extension); ok {
		ext, err := r.RenderExtension(strings.TrimSpace(name))
		if err != nil {
			return "", err
		}
		b.WriteString(ext)
	}
	for _, category := range c.Annotations.List(annotations.ExtensionCategory) {
		out, err := r.RenderExtensionCategory(category)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// sourceLink links text to the declaration of the node in tc.
func (r *Renderer) sourceLink(text string, tc *TypeContext) string {
	line := tc.Location.Line + 1
	if r.config.ExternalSourcePrefix != "" && strings.HasPrefix(tc.Name, r.config.ExternalSourcePrefix) {
		return formatExternalLink(text, fmt.Sprintf("%s%s#L%d", r.config.ExternalSourceURL, tc.File.Name, line))
	}
	return fmt.Sprintf(":repo:`%s <%s%s#L%d>`", text, r.config.RepoPathPrefix, tc.File.Name, line)
}

func (fr *fileRenderer) message(parent *TypeContext, msg *schema.Message) (string, error) {
	// Map entries only exist to model a map field's key and value.
	if msg.MapEntry {
		return "", nil
	}
	tc, err := parent.forMessage(msg)
	if err != nil {
		return "", err
	}
	if tc.Hidden() {
		return "", nil
	}

	name := fr.labels.Normalize(msg.FullName)
	comment, err := fr.formatComment(tc.Comment, msg.WorkInProgress)
	if err != nil {
		return "", err
	}

	fields := make([]*TypeContext, len(msg.Fields))
	for i, f := range msg.Fields {
		if fields[i], err = tc.extend(f.FullName, f.Location); err != nil {
			return "", err
		}
	}
	tc.oneofs = buildOneofTables(msg, fields)

	items := make([]string, len(msg.Fields))
	for i, f := range msg.Fields {
		if items[i], err = fr.field(tc, msg, fields[i], f); err != nil {
			return "", err
		}
	}

	nestedMsgs := make([]string, len(msg.Nested))
	for i, nested := range msg.Nested {
		if nestedMsgs[i], err = fr.message(tc, nested); err != nil {
			return "", err
		}
	}
	nestedEnums := make([]string, len(msg.Enums))
	for i, e := range msg.Enums {
		if nestedEnums[i], err = fr.enum(tc, e); err != nil {
			return "", err
		}
	}

	out := formatAnchor(fr.labels.Message(msg.FullName)) +
		formatHeader(typeHeaderStyle, name) +
		fr.sourceLink("["+name+" proto]", tc) + "\n\n" +
		comment +
		formatMessageAsJSON(tc, msg, fields) +
		strings.Join(items, "\n") + "\n" +
		strings.Join(nestedMsgs, "\n") + "\n" +
		strings.Join(nestedEnums, "\n")

	if err := fr.validate(msg.FullName, out); err != nil {
		return "", err
	}
	return out, nil
}

func (fr *fileRenderer) validate(name, block string) error {
	if fr.validator == nil {
		return nil
	}
	err := fr.validator.Validate(name, block)
	if err == nil {
		return nil
	}
	if fr.strict {
		return &Error{Kind: ErrInvalidRST, Name: name, Cause: err}
	}
	fr.warnings++
	fr.log.WithField("entity", name).Warnf("Bad RST (%s): %v", name, err)
	return nil
}

// formatMessageAsJSON renders the JSON shape preview of a message. Hidden
// fields are left out and a message without visible fields has no preview.
func formatMessageAsJSON(tc *TypeContext, msg *schema.Message, fields []*TypeContext) string {
	var lines []string
	for i, f := range msg.Fields {
		if fields[i].Hidden() {
			continue
		}
		lines = append(lines, "\""+f.Name+"\": "+formatFieldTypeAsJSON(tc, f))
	}
	if len(lines) == 0 {
		return ""
	}
	return ".. code-block:: json\n  :force:\n\n  {\n" + indentLines(4, strings.Join(lines, ",\n")) + "\n  }\n\n"
}

// field renders one definition list item.
func (fr *fileRenderer) field(msgCtx *TypeContext, msg *schema.Message, fc *TypeContext, f *schema.Field) (string, error) {
	if fc.Hidden() {
		return "", nil
	}

	var notes []string
	if f.Rules.Required() {
		notes = []string{"*REQUIRED*"}
	}
	comment, err := fr.formatComment(fc.Comment, f.WorkInProgress)
	if err != nil {
		return "", err
	}

	var oneofComment string
	if f.InOneof() {
		idx := *f.OneofIndex
		if int(idx) >= len(msg.Oneofs) {
			return "", fmt.Errorf("field %s: oneof index %d out of range", f.FullName, idx)
		}
		oneof := msg.Oneofs[idx]
		oc, err := msgCtx.extend(msg.FullName+"."+oneof.Name, oneof.Location)
		if err != nil {
			return "", err
		}
		if oc.Hidden() {
			return "", nil
		}
		if oneofComment, err = fr.formatComment(oc.Comment, false); err != nil {
			return "", err
		}

		if msgCtx.oneofs.soleRequired(idx) {
			notes = []string{"*REQUIRED*"}
		}
		if sentence := msgCtx.oneofs.constraint(idx, msg.FullName, fr.labels); sentence != "" {
			// The group sentence carries the constraint instead.
			notes = nil
			oneofComment += sentence
		}
	}

	var security string
	if f.Security != nil {
		if security, err = fr.formatSecurityOptions(f.Security, f); err != nil {
			return "", err
		}
	}

	typ, err := fr.formatFieldType(msgCtx, f)
	if err != nil {
		return "", err
	}
	head := "(" + strings.Join(append([]string{labelNames[f.Label] + typ}, notes...), ", ") + ") "

	out := formatAnchor(fr.labels.Field(f.FullName)) + f.Name + "\n" + indentLines(2, head+comment+oneofComment)
	if security != "" {
		// The attention block is part of the definition body.
		out += "  " + security
	}
	return out, nil
}

func (fr *fileRenderer) enum(parent *TypeContext, e *schema.Enum) (string, error) {
	tc, err := parent.extend(e.FullName, e.Location)
	if err != nil {
		return "", err
	}
	if tc.Hidden() {
		return "", nil
	}

	name := fr.labels.Normalize(e.FullName)
	comment, err := fr.formatComment(tc.Comment, false)
	if err != nil {
		return "", err
	}

	values := make([]string, len(e.Values))
	for i, v := range e.Values {
		if values[i], err = fr.enumValue(tc, v); err != nil {
			return "", err
		}
	}

	return formatAnchor(fr.labels.Enum(e.FullName)) +
		formatHeader(typeHeaderStyle, "Enum "+name) +
		fr.sourceLink("["+name+" proto]", tc) + "\n\n" +
		comment +
		strings.Join(values, "\n") + "\n", nil
}

func (fr *fileRenderer) enumValue(enumCtx *TypeContext, v *schema.EnumValue) (string, error) {
	vc, err := enumCtx.extend(v.FullName, v.Location)
	if err != nil {
		return "", err
	}
	if vc.Hidden() {
		return "", nil
	}
	comment, err := fr.formatComment(vc.Comment, false)
	if err != nil {
		return "", err
	}

	var def string
	if v.Number == 0 {
		def = "*(DEFAULT)* "
	}
	return formatAnchor(fr.labels.EnumValue(v.FullName)) + v.Name + "\n" +
		indentLines(2, def+invisibleSeparator+comment), nil
}

func anyNonEmpty(blocks []string) bool {
	for _, b := range blocks {
		if b != "" {
			return true
		}
	}
	return false
}

// IsFatal reports whether err is one of the fatal rendering conditions.
func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
