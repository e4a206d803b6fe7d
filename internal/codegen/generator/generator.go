package generator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Alia5/protoembed/internal/codegen/generator/golang"
	"github.com/Alia5/protoembed/internal/codegen/generator/java"
	"github.com/Alia5/protoembed/internal/codegen/meta"
)

// LanguageGenerator renders the descriptor holder of one file for one host language.
// It returns nil when the file gets no holder.
type LanguageGenerator func(logger *slog.Logger, file *meta.File, opts meta.Options) *meta.Artifact

var generators = map[string]LanguageGenerator{
	"go":   golang.Generate,
	"java": java.Generate,
}

// checks validate normalized options against the limits of a host language.
var checks = map[string]func(meta.Options) error{
	"java": java.CheckOptions,
}

// Languages lists the supported host languages.
func Languages() []string {
	langs := make([]string, 0, len(generators))
	for k := range generators {
		langs = append(langs, k)
	}
	slices.Sort(langs)
	return langs
}

// Generator renders descriptor holders for one host language with fixed
// options. It is safe for concurrent use.
type Generator struct {
	lang    string
	backend LanguageGenerator
	opts    meta.Options
	logger  *slog.Logger
}

// New returns a Generator for lang. Options are validated, including the
// limits of the host language, and normalized.
func New(lang string, opts meta.Options, logger *slog.Logger) (*Generator, error) {
	backend, ok := generators[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language '%s' (supported: %v)", lang, Languages())
	}
	if err := CheckOptions(lang, opts); err != nil {
		return nil, err
	}
	return &Generator{
		lang:    lang,
		backend: backend,
		opts:    opts.Normalize(),
		logger:  logger,
	}, nil
}

// CheckOptions reports whether opts can be used to generate lang.
func CheckOptions(lang string, opts meta.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if check, ok := checks[lang]; ok {
		if err := check(opts.Normalize()); err != nil {
			return fmt.Errorf("%s: %w", lang, err)
		}
	}
	return nil
}

// Language returns the host language of g.
func (g *Generator) Language() string { return g.lang }

// Options returns the normalized options of g.
func (g *Generator) Options() meta.Options { return g.opts }

// Generate renders one file. A nil artifact with a nil error means the file
// was skipped.
func (g *Generator) Generate(file *meta.File) (artifact *meta.Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generate %s holder for %s: %v", g.lang, file.Path(), r)
		}
	}()
	return g.backend(g.logger, file, g.opts), nil
}

// GenerateAll renders files concurrently. Artifacts come back in the order
// of files, without skipped files.
func (g *Generator) GenerateAll(ctx context.Context, files []*meta.File) ([]*meta.Artifact, error) {
	g.logger.Info("Generating descriptor holders", "language", g.lang, "files", len(files))

	results := make([]*meta.Artifact, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := g.Generate(file)
			if err != nil {
				return err
			}
			results[i] = a
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	artifacts := make([]*meta.Artifact, 0, len(results))
	for _, a := range results {
		if a != nil {
			artifacts = append(artifacts, a)
		}
	}
	g.logger.Info("Descriptor holder generation complete", "language", g.lang, "artifacts", len(artifacts))
	return artifacts, nil
}
