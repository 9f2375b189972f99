package platform

// Package platform contains OS integration glue: well-known directories,
// directory creation and opening exported files or revealing them in the
// system file manager.
