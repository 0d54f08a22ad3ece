package curator

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/sage/pkg/models"
)

var validate = validator.New()

// LoadPlan reads and validates a curation plan from a JSON file
func LoadPlan(path string) (*models.CurationPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "failed to read plan file %s: %s", path, err.Error())
	}
	return ParsePlan(data)
}

// ParsePlan parses and validates a curation plan from JSON bytes
func ParsePlan(data []byte) (*models.CurationPlan, error) {
	var plan models.CurationPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid plan JSON: %s", err.Error())
	}
	if err := validate.Struct(plan); err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid plan: %s", err.Error())
	}
	return &plan, nil
}
