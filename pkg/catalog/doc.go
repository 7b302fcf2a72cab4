// Package catalog loads and validates the step catalog of the wizard.
//
// Catalogs are YAML documents with an "intro" and a "content" list. Every record
// carries a "kind" that selects the step variant it decodes into; fields that do
// not belong to the variant are rejected.
package catalog
