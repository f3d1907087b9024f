package similarity

import (
	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	"github.com/kailas-cloud/gamesim/internal/domain/search/filter"
	"github.com/kailas-cloud/gamesim/internal/domain/search/request"
	"github.com/kailas-cloud/gamesim/internal/domain/search/result"
)

// Reference is the resolved entity a find_similar call was anchored on.
type Reference struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	EntityType entity.Type `json:"entity_type"`
}

// Debug describes the vector-store call behind a response.
type Debug struct {
	Filter       *filter.Expression `json:"filter,omitempty"`
	SearchParams *request.Params    `json:"search_params,omitempty"`
	CallID       string             `json:"call_id"`
}

// Response is the result of a similarity tool call. Failures carry Error and
// ErrorCode and no results.
type Response struct {
	Success    bool            `json:"success"`
	Reference  *Reference      `json:"reference,omitempty"`
	Results    []result.Ranked `json:"results,omitempty"`
	TotalFound int             `json:"total_found,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorCode  string          `json:"error_code,omitempty"`
	Debug      *Debug          `json:"debug,omitempty"`
}

type successWire struct {
	Success    bool            `json:"success"`
	Reference  *Reference      `json:"reference,omitempty"`
	Results    []result.Ranked `json:"results"`
	TotalFound int             `json:"total_found"`
	Debug      *Debug          `json:"debug,omitempty"`
}

type failureWire struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
	Debug     *Debug `json:"debug,omitempty"`
}

// MarshalJSON always emits results and total_found on success, and only the
// error fields on failure.
func (r Response) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(failureWire{Error: r.Error, ErrorCode: r.ErrorCode, Debug: r.Debug})
	}
	results := r.Results
	if results == nil {
		results = []result.Ranked{}
	}
	return json.Marshal(successWire{
		Success:    true,
		Reference:  r.Reference,
		Results:    results,
		TotalFound: r.TotalFound,
		Debug:      r.Debug,
	})
}
