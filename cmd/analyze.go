package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/aecdm-mcp/pkg/analysis"
	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/logging"
	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
)

// elementFile is an offline export of element geometry. Vertices use the
// same shapes the API returns: [x, y, z] arrays or {x, y, z} objects.
type elementFile struct {
	Container *rawElement  `json:"container" yaml:"container"`
	Elements  []rawElement `json:"elements" yaml:"elements"`
}

type rawElement struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Meshes [][]any `json:"meshes" yaml:"meshes"`
}

type analyzeOptions struct {
	format  string
	verbose bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run clash or containment analysis on exported geometry",
		Long: `Run the same bounding-box analysis the MCP tools use against a local JSON or
YAML file, without calling the AEC Data Model API.`,
	}
	analyzeCmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format: text, json or yaml")
	analyzeCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log analysis details to stderr")

	analyzeCmd.AddCommand(newClashCmd(opts), newContainmentCmd(opts))
	return analyzeCmd
}

func newClashCmd(opts *analyzeOptions) *cobra.Command {
	var threshold float64

	clashCmd := &cobra.Command{
		Use:   "clash <file>",
		Short: "Report every pair of elements whose boxes overlap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold < 0 {
				return fmt.Errorf("%w: --threshold must not be negative", apperrors.ErrValidation)
			}
			format, err := analysis.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			file, err := readElementFile(args[0])
			if err != nil {
				return err
			}
			if len(file.Elements) < 2 {
				return fmt.Errorf("%w: clash detection needs at least 2 elements, got %d",
					apperrors.ErrValidation, len(file.Elements))
			}

			logger, err := analyzeLogger(opts.verbose)
			if err != nil {
				return err
			}
			elements := toElements(file.Elements, logger)

			report := analysis.NewAnalyzer(logger).ComputeClashes(elements, threshold)
			return writeReport(cmd, report, format)
		},
	}

	clashCmd.Flags().Float64Var(&threshold, "threshold", spatial.DefaultClashThreshold,
		"minimum intersection volume in cubic model units")
	return clashCmd
}

func newContainmentCmd(opts *analyzeOptions) *cobra.Command {
	var search bool

	containmentCmd := &cobra.Command{
		Use:   "containment <file>",
		Short: "Classify elements as inside, partly inside or outside the container",
		Long: `Classify each element against the file's container. By default every element
is listed with its classification. With --search only elements inside the
container are reported, grouped by category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := analysis.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			file, err := readElementFile(args[0])
			if err != nil {
				return err
			}
			if file.Container == nil {
				return fmt.Errorf("%w: %s has no container element", apperrors.ErrValidation, args[0])
			}

			logger, err := analyzeLogger(opts.verbose)
			if err != nil {
				return err
			}

			mode := analysis.ModeExplicitList
			if search {
				mode = analysis.ModeCategorySearch
			}

			container := toElements([]rawElement{*file.Container}, logger)[0]
			report, err := analysis.NewAnalyzer(logger).ComputeContainment(
				container, toElements(file.Elements, logger), mode)
			if err != nil {
				return err
			}
			return writeReport(cmd, report, format)
		},
	}

	containmentCmd.Flags().BoolVar(&search, "search", false, "report only contained elements, grouped by category")
	return containmentCmd
}

// readElementFile decodes path as YAML when its extension says so and as
// JSON otherwise.
func readElementFile(path string) (*elementFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	file := &elementFile{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, file)
	default:
		err = json.Unmarshal(data, file)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", apperrors.ErrValidation, path, err)
	}
	return file, nil
}

// toElements converts raw exports, dropping malformed meshes the same way
// the API client does.
func toElements(raws []rawElement, logger *zap.Logger) []spatial.Element {
	elements := make([]spatial.Element, 0, len(raws))
	for _, raw := range raws {
		el, errs := spatial.ElementFromRaw(raw.ID, raw.Name, raw.Meshes)
		for _, err := range errs {
			logger.Warn("Dropped malformed mesh",
				zap.String("element_id", raw.ID),
				zap.Error(err))
		}
		elements = append(elements, el)
	}
	return elements
}

func analyzeLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	logger, err := logging.NewLogger("debug", "local")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func writeReport(cmd *cobra.Command, report analysis.Report, format analysis.Format) error {
	out, err := analysis.Render(report, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
	return err
}
