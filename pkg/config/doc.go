// Package config provides configuration loading, validation, and runtime
// reloading for the Janus front door.
//
// Configuration is loaded from a YAML file, defaults are applied for any
// unset fields, and the result is validated before use. Environment
// variables using the JANUS_ prefix override file-based values. A small
// set of tunable fields (admission threshold, trusted proxies) can be
// reloaded at runtime via the file watcher.
package config
