// Package config loads and merges codeoverview configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CODEOVERVIEW_MODEL, CODEOVERVIEW_STORE_PROJECTID,
//     and the deployment names GCP_PROJECT_ID, GCP_ACCESS_TOKEN,
//     FIREBASE_API_KEY, WORKER_EMAIL, WORKER_PASSWORD)
//  3. Config file ($XDG_CONFIG_HOME/codeoverview/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
