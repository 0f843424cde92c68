// Package schemas holds the JSON Schemas of exported artifacts.
package schemas

import _ "embed"

// CorrelatedRun is the schema of an exported run.
//
//go:embed correlated_run.schema.json
var CorrelatedRun string

// CorrelatedRunFile is the file name of the CorrelatedRun schema.
const CorrelatedRunFile = "correlated_run.schema.json"
