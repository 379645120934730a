// Package io provides JSON and YAML import and export of reconstruction
// parameter sets.
//
// # Format
//
// A document holds one ordered list of parameters:
//
//	{
//	  "params": [
//	    {"key": "MAXITER", "value": 200, "comment": "Maximum number of iterations to run", "type": "int"},
//	    {"key": "FLUX", "value": 1, "type": "float"},
//	    {"key": "TARGET", "value": null}
//	  ]
//	}
//
// The same structure is used for YAML. The type field is one of string,
// float, int or bool. It is always written by [WriteParams] and lets
// [ReadParams] tell a float that happens to be integral from an int. When
// it is missing, as in hand-written files, the value keeps the type it
// was decoded with. A null value is an undefined parameter. Non-finite
// floats are written as the strings "NaN", "+Inf" and "-Inf".
//
// Order, comments and repeated COMMENT or HISTORY cards survive a round
// trip, so a parameter set exported with [ExportParams] and read back
// with [ImportParams] is identical.
//
// # Usage
//
//	if err := io.ExportParams(f.InParam, "params.yaml"); err != nil {
//	    return err
//	}
//	cards, err := io.ImportParams("params.yaml")
package io
