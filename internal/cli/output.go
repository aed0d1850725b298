package cli

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// writeOutput prints v as indented JSON or as block-style YAML. YAML is
// derived from the JSON encoding so both formats carry the same keys.
func writeOutput(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode response")
	}
	switch format {
	case "yaml":
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return errors.Wrap(err, "convert response to yaml")
		}
		blockStyle(&doc)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return errors.Wrap(err, "write yaml")
		}
		return enc.Close()
	case "json", "":
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	default:
		return newUsageError("unknown output " + format)
	}
}

// blockStyle drops the flow and quoting styles the JSON source carries.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
