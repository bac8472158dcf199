package plugin

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/platinummonkey/protodoc/pkg/config"
	"github.com/platinummonkey/protodoc/pkg/docs"
	"github.com/platinummonkey/protodoc/pkg/orchestrator"
	"github.com/platinummonkey/protodoc/pkg/schema"
)

// Run reads a CodeGeneratorRequest from in, renders every file to generate
// and writes the CodeGeneratorResponse to out. Rendering failures are
// reported to protoc through the response error field; only I/O and
// decoding problems are returned.
func Run(ctx context.Context, in io.Reader, out io.Writer, logger logrus.FieldLogger) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(data, req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	resp := Generate(ctx, req, logger)

	data, err = proto.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// Generate renders the request. Configuration comes from the environment,
// overridden by the request parameter.
func Generate(ctx context.Context, req *pluginpb.CodeGeneratorRequest, logger logrus.FieldLogger) *pluginpb.CodeGeneratorResponse {
	resp, err := generate(ctx, req, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to generate documentation")
		return &pluginpb.CodeGeneratorResponse{Error: proto.String(err.Error())}
	}
	return resp
}

func generate(ctx context.Context, req *pluginpb.CodeGeneratorRequest, logger logrus.FieldLogger) (*pluginpb.CodeGeneratorResponse, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := ApplyParameter(cfg, req.GetParameter()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plugin parameter: %w", err)
	}

	files, err := Files(req)
	if err != nil {
		return nil, err
	}

	o, err := orchestrator.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	results, err := o.Render(ctx, files)
	if err != nil {
		return nil, err
	}

	resp := &pluginpb.CodeGeneratorResponse{
		SupportedFeatures: proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)),
	}
	for _, res := range results {
		resp.File = append(resp.File, &pluginpb.CodeGeneratorResponse_File{
			Name:    proto.String(docs.OutputName(res.File)),
			Content: proto.String(res.Output),
		})
	}
	return resp, nil
}

// Files converts the files protoc asked to generate into schema files. The
// request's descriptor protos are used as sent so their source info is
// intact; the linked descriptors only supply option extension types.
func Files(req *pluginpb.CodeGeneratorRequest) ([]*schema.File, error) {
	registry, err := protodesc.NewFiles(&descriptorpb.FileDescriptorSet{File: req.GetProtoFile()})
	if err != nil {
		return nil, fmt.Errorf("failed to link request descriptors: %w", err)
	}

	fds := make([]protoreflect.FileDescriptor, 0, len(req.GetFileToGenerate()))
	for _, name := range req.GetFileToGenerate() {
		fd, err := registry.FindFileByPath(name)
		if err != nil {
			return nil, fmt.Errorf("file to generate %s: %w", name, err)
		}
		fds = append(fds, fd)
	}
	types, err := schema.ExtensionTypes(fds...)
	if err != nil {
		return nil, err
	}

	protos := make(map[string]*descriptorpb.FileDescriptorProto, len(req.GetProtoFile()))
	for _, fdp := range req.GetProtoFile() {
		protos[fdp.GetName()] = fdp
	}

	files := make([]*schema.File, 0, len(fds))
	for _, name := range req.GetFileToGenerate() {
		f, err := schema.Convert(protos[name], types)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", name, err)
		}
		files = append(files, f)
	}
	return files, nil
}

// ApplyParameter applies a protoc parameter string of comma separated
// key=value settings to cfg. An item without '=' continues the previous
// value, so list settings read naturally:
//
//	--protodoc_opt=link_prefixes=.envoy.,.xds.,strict_rst=true
func ApplyParameter(cfg *config.Config, param string) error {
	if strings.TrimSpace(param) == "" {
		return nil
	}

	type setting struct{ key, value string }
	var settings []setting
	for _, item := range strings.Split(param, ",") {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			if len(settings) == 0 {
				return fmt.Errorf("invalid plugin parameter %q: expected key=value", item)
			}
			settings[len(settings)-1].value += "," + item
			continue
		}
		settings = append(settings, setting{key: strings.TrimSpace(key), value: value})
	}

	for _, s := range settings {
		if err := cfg.Set(s.key, s.value); err != nil {
			return fmt.Errorf("invalid plugin parameter: %w", err)
		}
	}
	return nil
}
