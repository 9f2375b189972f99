package socrata

// Package socrata builds request URLs for the Socrata open-data API and
// defines the wire types returned by its query analysis endpoint.
