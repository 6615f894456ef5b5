// Package logx configures diffreport's structured logging.
//
// The repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Loggers stable across Service.Apply() (level/sink changes on config reload)
package logx
