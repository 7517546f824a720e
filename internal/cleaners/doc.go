// Package cleaners provides the text cleaning steps applied to document
// text before it is sent to the model.
//
// Steps implement driven.Cleaner and are composed into a Pipeline, either
// directly or by name through a Registry. Every step is pure and never
// fails: a step without applicable configuration returns its input.
package cleaners
