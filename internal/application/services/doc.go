// Package services provides the business logic of the risk model API.
//
// It contains:
//   - schema validation and field reconciliation (SchemaService)
//   - per-value validation driven by the field type registry (FieldValidator)
//   - submission processing with uniqueness checks (SubmissionProcessor)
//   - read-side rendering of stored values (ResponseProjector)
//
// Services receive their repositories through ServiceManager.
package services
