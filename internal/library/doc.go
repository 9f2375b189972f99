// Package library keeps named queries per Socrata domain in a YAML file so
// they can be recalled from the studio.
package library
