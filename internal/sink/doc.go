// Package sink provides runner.ActionSink implementations.
//
// The live page click is performed by whatever drives the browser; these
// sinks describe or record the action so a run can be previewed or handed on.
package sink
