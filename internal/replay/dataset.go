package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Dataset is the seed input for an Engine: recorded tickers plus the
// starting ledger. Tickers need not arrive sorted; the engine orders
// them per symbol at construction.
type Dataset struct {
	Tickers         []Ticker                  `json:"tickers"`
	InitialBalances map[string]BalanceAmounts `json:"initial_balances"`
}

type BalanceAmounts struct {
	Free float64 `json:"free"`
	Used float64 `json:"used"`
}

// datasetSchema rejects malformed seed files before the engine ever sees
// them: every ticker needs a symbol and a timestamp, balances must not be
// negative. Price fields stay optional since the resolution chain handles
// their absence.
const datasetSchema = `{
  "type": "object",
  "required": ["tickers"],
  "properties": {
    "tickers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["symbol", "timestamp"],
        "properties": {
          "symbol": {"type": "string", "minLength": 1},
          "timestamp": {"type": "integer", "minimum": 0},
          "last": {"type": ["number", "null"]},
          "bid": {"type": ["number", "null"]},
          "ask": {"type": ["number", "null"]}
        }
      }
    },
    "initial_balances": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "free": {"type": "number", "minimum": 0},
          "used": {"type": "number", "minimum": 0}
        }
      }
    }
  }
}`

var compiledDatasetSchema = jsonschema.MustCompileString("dataset.json", datasetSchema)

// LoadDataset parses and validates a seed document.
func LoadDataset(raw []byte) (Dataset, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Dataset{}, fmt.Errorf("dataset is not valid JSON: %w", err)
	}
	if err := compiledDatasetSchema.Validate(doc); err != nil {
		return Dataset{}, fmt.Errorf("dataset failed schema validation: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decoding dataset failed: %w", err)
	}
	for i := range ds.Tickers {
		ds.Tickers[i].Symbol = strings.ToUpper(strings.TrimSpace(ds.Tickers[i].Symbol))
	}
	return ds, nil
}

// LoadDatasetFile reads and validates a seed file from disk.
func LoadDatasetFile(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading dataset file failed: %w", err)
	}
	return LoadDataset(raw)
}
