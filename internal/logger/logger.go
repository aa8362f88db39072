package logger

import "PortalDHT/internal/domain"

// Field rappresenta un campo strutturato (key:value).
type Field struct {
	Key string
	Val any
}

// Logger è l'interfaccia minima richiesta dai package in internal.
type Logger interface {
	Named(name string) Logger
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// F è un helper per creare un Field in modo conciso.
func F(key string, val any) Field { return Field{Key: key, Val: val} }

// FKey serializza una domain.ContentKey in un campo esadecimale leggibile.
func FKey(key string, k domain.ContentKey) Field {
	return Field{Key: key, Val: k.String()}
}

// FNodeID serializza un domain.NodeID in un campo esadecimale leggibile.
func FNodeID(key string, id domain.NodeID) Field {
	return Field{Key: key, Val: id.String()}
}

// ----------------------------------------------------------------
// NopLogger è un'implementazione di Logger che non fa nulla.
type NopLogger struct{}

func (l *NopLogger) Named(name string) Logger          { return l }
func (l *NopLogger) With(fields ...Field) Logger       { return l }
func (l *NopLogger) Debug(msg string, fields ...Field) {}
func (l *NopLogger) Info(msg string, fields ...Field)  {}
func (l *NopLogger) Warn(msg string, fields ...Field)  {}
func (l *NopLogger) Error(msg string, fields ...Field) {}
