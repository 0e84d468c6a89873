package client

import (
	"time"

	"github.com/kbukum/hyperhttp/logger"
)

// logRequest writes the logging step's line for one completed request.
func (p *Pipeline) logRequest(method, fullURL, requestID string, status int, started time.Time) {
	p.log.Info("request completed", map[string]interface{}{
		logger.FieldMethod:    method,
		logger.FieldURL:       fullURL,
		logger.FieldStatus:    status,
		logger.FieldRequestID: requestID,
		logger.FieldDuration:  time.Since(started).Milliseconds(),
	})
}
