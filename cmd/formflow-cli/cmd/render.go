package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/internal/codec"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/vanilla"
)

var (
	renderForm      string
	renderOpenAPI   bool
	renderOutput    string
	renderTemplates string
	renderTheme     string
	renderVariant   string
	renderValues    map[string]string
	renderValidate  bool
	renderRenderer  string
)

var renderCmd = &cobra.Command{
	Use:   "render <definitions>",
	Short: "Render a form as HTML",
	Long: `Renders one form with a registered renderer (vanilla HTML by default). Values can be
prefilled with --value and --validate renders the inline errors the current
values produce.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadSet(cmd, args[0], renderOpenAPI)
		if err != nil {
			return err
		}
		id, err := pickForm(set, renderForm)
		if err != nil {
			return err
		}
		def, err := set.Lookup(id)
		if err != nil {
			return err
		}

		form, err := formflow.New(cfg, def, formflow.WithLogger(logger))
		if err != nil {
			return err
		}
		defer form.Close()

		if len(renderValues) > 0 {
			if err := form.View.SetValues(renderValues); err != nil {
				return err
			}
		}
		if renderValidate {
			form.ValidateForm()
		}

		registry, err := newRendererRegistry(renderTemplates)
		if err != nil {
			return err
		}
		renderer, err := registry.Get(renderRenderer)
		if err != nil {
			return err
		}

		options := render.RenderOptions{Hidden: cfg.Settings().Hidden}
		if endpoint, err := form.Endpoint(); err == nil {
			options.Action = endpoint
		}
		if renderTheme != "" {
			manifest, err := loadManifest(renderTheme)
			if err != nil {
				return err
			}
			options.Theme = render.ThemeConfig(manifest, renderVariant)
		}

		out, err := form.Render(cmd.Context(), renderer, options)
		if err != nil {
			return err
		}
		if renderOutput == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(renderOutput, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info("form rendered", zap.String("form", id), zap.String("output", renderOutput))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderRenderer, "renderer", vanilla.Name, "renderer name")
	renderCmd.Flags().StringVar(&renderForm, "form", "", "form id (optional when the file declares one form)")
	renderCmd.Flags().BoolVar(&renderOpenAPI, "openapi", false, "read forms from an OpenAPI document")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (stdout if empty)")
	renderCmd.Flags().StringVar(&renderTemplates, "templates", "", "directory overriding the built-in templates")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "theme manifest (.yaml, .toml or .json)")
	renderCmd.Flags().StringVar(&renderVariant, "variant", "", "theme variant")
	renderCmd.Flags().StringToStringVar(&renderValues, "value", nil, "prefilled value, name=value")
	renderCmd.Flags().BoolVar(&renderValidate, "validate", false, "render validation errors for the current values")
	rootCmd.AddCommand(renderCmd)
}

// newRendererRegistry registers the renderers the CLI can select with
// --renderer.
func newRendererRegistry(templatesDir string) (*render.Registry, error) {
	var opts []vanilla.Option
	if templatesDir != "" {
		opts = append(opts, vanilla.WithTemplatesDir(templatesDir))
	}
	html, err := vanilla.New(opts...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	return registry, nil
}

func loadManifest(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	var manifest theme.Manifest
	if err := codec.Decode(filepath.Ext(path), data, &manifest); err != nil {
		return nil, fmt.Errorf("decode theme %s: %w", path, err)
	}
	return &manifest, nil
}
