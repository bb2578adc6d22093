// Package catalog implements persistence for the release Catalog.
//
// The FileRepository loads the catalog from a JSON document, validating it
// against an embedded JSON schema, and replaces the document atomically on save.
package catalog
