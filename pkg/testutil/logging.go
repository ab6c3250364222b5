package testutil

import (
	"io"
	"os"
	"slices"

	"github.com/sirupsen/logrus"
)

// Tests importing this package log at trace level, but output is only kept
// when running with -v.
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	if !slices.Contains(os.Args, "-test.v=true") {
		logrus.StandardLogger().SetOutput(io.Discard)
	}
}
