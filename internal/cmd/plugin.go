package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/Alia5/protoembed/internal/codegen/generator"
	"github.com/Alia5/protoembed/internal/codegen/meta"
	"github.com/Alia5/protoembed/internal/schema"
)

// Plugin speaks the protoc plugin protocol on stdin and stdout. Flags set
// the defaults; the request parameter overrides them and may also select
// the host with "lang=<lang>".
type Plugin struct {
	Options `embed:""`
}

// Run is called by Kong when the plugin command is executed.
func (p *Plugin) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return p.Serve(ctx, os.Stdin, os.Stdout, logger)
}

// Serve answers a single request read from r. Generation failures are
// reported in the response; only protocol failures return an error.
func (p *Plugin) Serve(ctx context.Context, r io.Reader, w io.Writer, logger *slog.Logger) error {
	in, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read plugin request: %w", err)
	}
	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(in, req); err != nil {
		return fmt.Errorf("failed to decode plugin request: %w", err)
	}

	resp := p.Handle(ctx, req, logger)

	out, err := proto.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode plugin response: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write plugin response: %w", err)
	}
	return nil
}

// Handle generates holders for every file of req.
func (p *Plugin) Handle(ctx context.Context, req *pluginpb.CodeGeneratorRequest, logger *slog.Logger) *pluginpb.CodeGeneratorResponse {
	resp := &pluginpb.CodeGeneratorResponse{
		SupportedFeatures: proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL |
			pluginpb.CodeGeneratorResponse_FEATURE_SUPPORTS_EDITIONS)),
		MinimumEdition: proto.Int32(int32(descriptorpb.Edition_EDITION_PROTO2)),
		MaximumEdition: proto.Int32(int32(descriptorpb.Edition_EDITION_2023)),
	}
	fail := func(err error) *pluginpb.CodeGeneratorResponse {
		logger.Error("Plugin request failed", "error", err)
		resp.Error = proto.String(err.Error())
		return resp
	}

	lang, param := splitLang(req.GetParameter(), p.Lang)
	opts, err := meta.ParseParameter(param, p.Meta())
	if err != nil {
		return fail(err)
	}
	gen, err := generator.New(lang, opts, logger)
	if err != nil {
		return fail(err)
	}
	files, err := schema.Link(&descriptorpb.FileDescriptorSet{File: req.GetProtoFile()}, req.GetFileToGenerate()...)
	if err != nil {
		return fail(err)
	}
	artifacts, err := gen.GenerateAll(ctx, files)
	if err != nil {
		return fail(err)
	}

	for _, a := range artifacts {
		resp.File = append(resp.File, &pluginpb.CodeGeneratorResponse_File{
			Name:              proto.String(a.Path),
			Content:           proto.String(string(a.Content)),
			GeneratedCodeInfo: a.Info,
		})
		if a.HasAnnotations() {
			resp.File = append(resp.File, &pluginpb.CodeGeneratorResponse_File{
				Name:    proto.String(a.AnnotationPath),
				Content: proto.String(string(a.Annotations)),
			})
		}
	}
	return resp
}

// splitLang removes a lang=<lang> entry from a plugin parameter.
func splitLang(param, lang string) (string, string) {
	var rest []string
	for _, kv := range strings.Split(param, ",") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(kv), "lang="); ok {
			lang = v
			continue
		}
		rest = append(rest, kv)
	}
	return lang, strings.Join(rest, ",")
}
