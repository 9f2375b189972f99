package socrata

import (
	"fmt"
	"strings"
)

// URL templates for the two endpoints the studio talks to.
const (
	QueryURLFormat    = "https://%s/resource/%s.csv?$query=%s"
	AnalysisURLFormat = "https://%s/api/views/%s/query_info?analyze=true&query=%s"
)

// Sanitize flattens a multi-line query into a single line: newlines become
// spaces, tabs are dropped, the result is trimmed and any remaining run of
// Unicode whitespace collapses to one space. No URL encoding is applied.
func Sanitize(query string) string {
	s := strings.ReplaceAll(query, "\n", " ")
	s = strings.ReplaceAll(s, "\t", "")
	return strings.Join(strings.Fields(s), " ")
}

// BuildQueryURL returns the CSV resource URL for a SoQL query.
func BuildQueryURL(domain, dataset, query string) string {
	return fmt.Sprintf(QueryURLFormat, domain, dataset, Sanitize(query))
}

// BuildAnalysisURL returns the query_info URL used to analyze a SoQL query.
func BuildAnalysisURL(domain, dataset, query string) string {
	return fmt.Sprintf(AnalysisURLFormat, domain, dataset, Sanitize(query))
}
