package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/Alia5/protoembed/internal/codegen/generator"
	"github.com/Alia5/protoembed/internal/output"
	"github.com/Alia5/protoembed/internal/schema"
)

type Generate struct {
	Files      []string `arg:"" name:"file" help:"Schema files, relative to the import paths"`
	ImportPath []string `short:"I" help:"Directories searched for schema files and their imports" default:"." env:"PROTOEMBED_IMPORT_PATH"`
	Output     string   `short:"o" help:"Output directory" default:"." env:"PROTOEMBED_OUTPUT"`

	Options `embed:""`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return g.Execute(ctx, afero.NewOsFs(), logger)
}

// Execute parses the schema files from fs and writes their holders below
// the output directory of the same filesystem.
func (g *Generate) Execute(ctx context.Context, fs afero.Fs, logger *slog.Logger) error {
	logger.Info("Starting protoembed code generation", "lang", g.Lang, "files", len(g.Files), "output", g.Output)

	gen, err := generator.New(g.Lang, g.Meta(), logger)
	if err != nil {
		return err
	}
	files, err := schema.NewLoader(fs, g.ImportPath, logger).Load(g.Files...)
	if err != nil {
		return err
	}
	artifacts, err := gen.GenerateAll(ctx, files)
	if err != nil {
		return err
	}
	return output.NewWriter(fs, g.Output, logger).WriteAll(artifacts)
}
