// Package hostapi binds the Document, Identifier, Vault, and Result-set
// contracts to an embedded Lua runtime, and implements
// pipeline.Executor on top of them: Runtime.Execute constructs a fresh
// Lua state per command, binds the currently-open vaults as db.<name>
// globals, runs the command string, and collects everything the script
// printed or sent into a pipeline.ExecutionResult.
package hostapi
