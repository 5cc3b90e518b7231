package output

import (
	"encoding/json"

	"github.com/aapotheosis/rrspgo/internal/domain"
)

// JSONFormatter renders an optimization result as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

// Format generates JSON output for a recommendation
func (jf *JSONFormatter) Format(result *domain.OptimizationResult) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}
