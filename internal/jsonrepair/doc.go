// Package jsonrepair turns raw model output into a validated JSON object.
//
// Model responses are often wrapped in markdown code fences, use single
// quotes or leave trailing commas. ParseAndValidate strips the wrapper,
// repairs these malformations when strict decoding fails, coerces values to
// the types the schema declares and validates the result. Anything it cannot
// recover is reported as a *domain.ParseError; no partial object is returned.
package jsonrepair
