package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Packagers may overwrite embed_config.yaml with site defaults before
// compiling; a config file or environment variables still take precedence.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
