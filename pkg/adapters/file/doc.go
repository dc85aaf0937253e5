// Package file persists diagrams as YAML or JSON documents on the local filesystem.
package file
