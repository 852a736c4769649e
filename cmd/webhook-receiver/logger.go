package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// InitLogger initializes the logger with the configured log level
func InitLogger(level string) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	SetLogLevel(level)
}

// SetLogLevel changes the level of the running logger. Unknown levels fall back to info.
func SetLogLevel(level string) {
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to 'info'", level)
		parsedLevel = logrus.InfoLevel
	}
	if parsedLevel != log.GetLevel() {
		log.Debugf("Log level set to %s", parsedLevel)
	}
	log.SetLevel(parsedLevel)
}
