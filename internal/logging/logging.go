package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger. Production uses JSON output; every
// other environment gets the text formatter with full timestamps. An unknown level
// falls back to info.
func Setup(level, env string, out io.Writer) {
	if out != nil {
		log.SetOutput(out)
	}
	if env == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
