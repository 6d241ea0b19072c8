package cmderrors

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/brevdev/mixpanel-cli/pkg/featureflag"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"

	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
)

// DisplayAndHandleError prints err and sends unexpected failures to the
// crash monitor. Caller mistakes print in yellow without the trace.
func DisplayAndHandleError(t *terminal.Terminal, err error) {
	if err == nil {
		return
	}
	if shouldReport(err) {
		breverrors.GetDefaultErrorReporter().ReportError(err)
	}
	if featureflag.Debug() {
		t.Eprint(fmt.Sprintf("%+v", err))
		return
	}
	if !shouldReport(err) {
		t.Eprint(t.Yellow(errors.Cause(err).Error()))
		var mpErr breverrors.MixpanelError
		if breverrors.As(err, &mpErr) {
			t.Eprint(t.Yellow(mpErr.Directive()))
		}
		return
	}
	t.Errprint(errors.Cause(err), "")
}

// caller mistakes are not reported to the crash monitor
func shouldReport(err error) bool {
	var validation breverrors.ValidationError
	var unsupported *breverrors.UnsupportedCommandError
	var missing *breverrors.MissingTokenError
	switch {
	case breverrors.As(err, &validation),
		breverrors.As(err, &unsupported),
		breverrors.As(err, &missing):
		return false
	default:
		return true
	}
}
