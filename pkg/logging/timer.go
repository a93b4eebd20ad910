package logging

import "time"

// TimedOperation carries the start time and fields of a phase until the
// record announcing its completion is written.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

// StartTimer begins timing a phase. The returned operation logs msg together
// with the given fields and the elapsed time when ended.
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// End writes the completion record at info level.
func (t *TimedOperation) End() {
	t.logger.Info(t.msg, append(t.fields, Elapsed(time.Since(t.start)))...)
}

// EndError writes the completion record at error level with the failure
// attached.
func (t *TimedOperation) EndError(err error) {
	t.logger.Error(t.msg, append(t.fields, Elapsed(time.Since(t.start)), Error(err))...)
}
