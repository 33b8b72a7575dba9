// Package logx wraps zerolog behind a small structured-logging facade.
//
// The zero value of Logger is a safe no-op; components that may run before
// logging is configured can hold one without nil checks.
package logx
