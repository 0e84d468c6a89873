// Package logger provides structured logging for hyperhttp using zerolog.
//
// The client's logging step accepts a *logger.Logger; NewWithWriter is the
// usual way to direct request logs at an arbitrary sink.
//
//	log := logger.NewWithWriter(os.Stderr, "my-app")
//	c.AttachLogger(log)
package logger
