// Package schemasassets provides embedded JSON schemas for standalone binary behavior.
//
// Schemas are embedded at compile time so validation works regardless of the
// working directory or installation location.
package schemasassets

import _ "embed"

// InputManifestSchema is the embedded input-manifest JSON schema.
//
//go:embed input-manifest.schema.json
var InputManifestSchema []byte
