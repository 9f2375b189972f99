package socrata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExplainQuery is the subset of the query_info response the studio shows.
type ExplainQuery struct {
	ExplainPlan string `json:"explainPlan"`
}

// ParseExplainPlan extracts the explain plan from a query_info body. Bodies
// that are not JSON, or carry no plan, are returned as trimmed text so the
// user still sees what the server said.
func ParseExplainPlan(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", fmt.Errorf("empty analysis response")
	}

	var eq ExplainQuery
	if err := json.Unmarshal(body, &eq); err != nil || eq.ExplainPlan == "" {
		return text, nil
	}
	return eq.ExplainPlan, nil
}
