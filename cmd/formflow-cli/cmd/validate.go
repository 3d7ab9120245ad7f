package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/formdef"
)

var validateOpenAPI bool

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check form definition files",
	Long: `Loads each file and reports definition problems: unknown controls,
categories or rule kinds, broken match targets, inverted length bounds and
patterns that do not compile. With --openapi the files are OpenAPI documents
and every request body becomes a form.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			set, err := loadSet(cmd, path, validateOpenAPI)
			if err != nil {
				failed++
				printError(path, err)
				continue
			}
			logger.Debug("definitions loaded", zap.String("path", path), zap.Strings("forms", set.IDs()))
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s: %s\n", path, strings.Join(set.IDs(), ", "))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateOpenAPI, "openapi", false, "treat files as OpenAPI documents")
	rootCmd.AddCommand(validateCmd)
}

func loadSet(cmd *cobra.Command, path string, openapi bool) (*formdef.Set, error) {
	if openapi {
		return formdef.LoadOpenAPIFile(cmd.Context(), path)
	}
	return formdef.LoadFile(path)
}

var errFormRequired = errors.New("--form is required when the file declares several forms")

func pickForm(set *formdef.Set, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	ids := set.IDs()
	if len(ids) == 1 {
		return ids[0], nil
	}
	return "", fmt.Errorf("%w (available: %s)", errFormRequired, strings.Join(ids, ", "))
}
