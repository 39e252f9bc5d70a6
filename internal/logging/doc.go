// Package logger provides leveled console logging for portal commands.
//
// # Verbosity Levels
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages
//
// Warnings and errors are always written to stderr.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Fetched %d secrets", count)
//
// Commands create a logger in the root PersistentPreRun and hand it to the
// application context, so workflows and the API client log through it too.
package logger
