package version

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
)

var Version = ""

var green = color.New(color.FgGreen).SprintfFunc()

var versionString = `
Current version: %s
Go runtime:      %s

` + green("wire compatible with the Mixpanel /track and /engage endpoints")

// BuildVersionString renders the version banner. An unset Version (local
// builds) shows as "unknown".
func BuildVersionString() string {
	v := Version
	if v == "" {
		v = "unknown"
	}
	return fmt.Sprintf(versionString, v, runtime.Version())
}
