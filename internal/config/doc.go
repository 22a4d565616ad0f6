// Package config loads and validates quanta.json, the project
// configuration consumed by the quanta CLI.
//
// Configuration is discovered by walking up from the working directory
// until a quanta.json is found, mirroring how go.mod is located. All
// fields are optional; missing values take documented defaults.
package config
