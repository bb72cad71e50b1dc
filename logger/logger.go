package logger

import (
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDir      = "log"
	logFilename = "appinion.log"
)

var Logger zerolog.Logger
var HttpLogger zerolog.Logger
var logFilePath string
var Writer io.Writer

func init() {
	// usable before Init is called (tests, early startup errors)
	Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)
	HttpLogger = zerolog.New(io.Discard)
}

func Init(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.DateTime,
	}
	Writer = consoleWriter

	Logger = zerolog.New(consoleWriter).
		With().
		Timestamp().
		Logger()

	// HttpLogger discards until a file logger is added
	HttpLogger = zerolog.New(io.Discard).
		With().
		Timestamp().
		Logger()

	zLevel := ParseLevel(logLevel)

	zerolog.SetGlobalLevel(zLevel)
	Logger = Logger.Level(zLevel)
	HttpLogger = HttpLogger.Level(zLevel)

	if zLevel <= zerolog.DebugLevel {
		buildInfo, _ := debug.ReadBuildInfo()
		Logger = Logger.With().
			Caller().
			Interface("build_info", buildInfo).
			Logger()
		Logger.Debug().Msg("Zerolog caller reporting enabled in debug mode")
	}
}

// ParseLevel maps the numeric LOG_LEVEL setting to a zerolog level.
// LOG_LEVEL uses the logrus ordering (0 = panic ... 6 = trace), which is
// inverted compared to zerolog's own values.
func ParseLevel(logLevel string) zerolog.Level {
	level, err := strconv.Atoi(logLevel)
	if err != nil {
		return zerolog.InfoLevel
	}

	switch level {
	case 6:
		return zerolog.TraceLevel
	case 5:
		return zerolog.DebugLevel
	case 4:
		return zerolog.InfoLevel
	case 3:
		return zerolog.WarnLevel
	case 2:
		return zerolog.ErrorLevel
	case 1:
		return zerolog.FatalLevel
	case 0:
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

func AddFileLogger(workdir string) error {
	logFilePath = filepath.Join(workdir, logDir, logFilename)
	fileLogger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxAge:     3,
		MaxBackups: 3,
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.DateTime,
	}
	multi := zerolog.MultiLevelWriter(consoleWriter, fileLogger)
	Writer = multi

	level := Logger.GetLevel()
	Logger = zerolog.New(multi).
		With().
		Timestamp().
		Logger().
		Level(level)

	// HttpLogger only writes to file
	HttpLogger = zerolog.New(fileLogger).
		With().
		Timestamp().
		Logger().
		Level(level)

	return nil
}

func GetLogFilePath() string {
	return logFilePath
}
