package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"artwaves-catalog/catalog"
	"artwaves-catalog/database"
)

func newQueryCmd() *cobra.Command {
	var (
		file     string
		body     string
		bodyFile string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a filter request against a catalog snapshot",
		Long: `Run a filter request against a db.json snapshot without a server.
The request is the JSON body accepted by POST /api/products/filter; pass it
with --body, or with --body-file ("-" reads stdin).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := []byte(body)
			if bodyFile != "" {
				var err error
				if bodyFile == "-" {
					raw, err = io.ReadAll(cmd.InOrStdin())
				} else {
					raw, err = os.ReadFile(bodyFile)
				}
				if err != nil {
					return fmt.Errorf("read request: %w", err)
				}
			}

			req, err := catalog.DecodeFilterRequest(raw)
			if err != nil {
				return err
			}
			data, err := database.ReadCatalogFile(file)
			if err != nil {
				return err
			}
			logger.Debug("query", "products", len(data.Products), "fingerprint", req.Fingerprint())

			return writeOutput(cmd.OutOrStdout(), format, catalog.Query(data.Products, req))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", cfg.CatalogFile, "Catalog snapshot (db.json)")
	cmd.Flags().StringVarP(&body, "body", "b", "{}", "Filter request JSON")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the filter request from a file (- for stdin)")
	cmd.Flags().StringVarP(&format, "output", "o", "json", "Output format (json, yaml)")
	return cmd
}

func writeOutput(w io.Writer, format string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	switch format {
	case "json":
	case "yaml":
		if out, err = jsonToYAML(out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if format == "json" {
		_, err = fmt.Fprintln(w)
	}
	return err
}

// jsonToYAML re-renders a JSON document as block-style YAML, keeping the
// JSON key names and order.
func jsonToYAML(doc []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(doc, &node); err != nil {
		return nil, fmt.Errorf("convert to yaml: %w", err)
	}
	resetStyle(&node)
	return yaml.Marshal(&node)
}

func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}
