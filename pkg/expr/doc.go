// Package expr provides CEL (Common Expression Language) functionality
// for evaluating rule match expressions against detected project attributes.
//
// It creates CEL environments with custom functions for:
//   - Attribute membership (attrHas, attrAny)
//   - Boolean flag attributes (attrFlag)
//
// CEL expressions have access to variables:
//   - `attrs` (map<string, list<string>>): All detected project attributes
package expr
