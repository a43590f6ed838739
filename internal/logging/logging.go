package logging

import "github.com/sirupsen/logrus"

// Setup configures the process-wide logger. Unknown levels fall back to
// info rather than failing startup.
func Setup(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
