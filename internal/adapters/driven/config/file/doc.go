// Package file loads the server configuration from disk.
//
// The default location is ~/.fess-mcp/config.toml. YAML (.yaml, .yml) and
// JSON with comments (.json, .jsonc) are accepted as well; the schema is the
// same in every format. Defaults are applied once at load time and the
// result is validated before it is converted to domain.Settings.
package file
