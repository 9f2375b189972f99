// Package export writes the result preview to XLSX or CSV files.
package export
