package buildsys

import (
	"errors"

	"github.com/rs/zerolog"
)

// Reporter is the only way pipeline steps talk to the user. detail and hint may be empty.
type Reporter interface {
	Report(severity Severity, summary, detail, hint string)
}

// LogReporter turns reports into zerolog events. The severity, detail and hint end up in fields of the same
// name which the console writer uses for formatting.
type LogReporter struct {
	logger *zerolog.Logger
}

// NewLogReporter creates a Reporter that writes to the given logger
func NewLogReporter(logger *zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report implements Reporter
func (r *LogReporter) Report(severity Severity, summary, detail, hint string) {
	var evt *zerolog.Event
	switch severity {
	case SeverityWarning:
		evt = r.logger.Warn()
	case SeverityError:
		evt = r.logger.Error()
	default:
		evt = r.logger.Info()
	}

	evt = evt.Str("severity", severity.String())
	if detail != "" {
		evt = evt.Str("detail", detail)
	}
	if hint != "" {
		evt = evt.Str("hint", hint)
	}
	evt.Msg(summary)
}

// ReportError passes a pipeline error to the reporter unless it's silent
func ReportError(r Reporter, err error) {
	if err == nil {
		return
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		r.Report(SeverityError, err.Error(), "", "")
		return
	}

	if stepErr.Silent() {
		return
	}

	hint := stepErr.Hint
	if hint == "" && stepErr.Cause != nil {
		hint = stepErr.Cause.Error()
	}
	r.Report(SeverityError, stepErr.Summary, stepErr.Detail, hint)
}
