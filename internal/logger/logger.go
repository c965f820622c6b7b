package logger

import (
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	once   sync.Once
	logger *zap.Logger

	// Log é o logger açucarado usado pelo resto da aplicação.
	Log *zap.SugaredLogger = zap.NewNop().Sugar()
)

// Options controla o destino e o nível dos logs.
type Options struct {
	AppName string
	Env     string
	Level   string // debug, info, warn, error
	Path    string // arquivo JSON rotacionado; vazio desliga o arquivo
}

var defaultOptions = Options{
	AppName: "MubenchReview",
	Env:     "production",
	Level:   "debug",
	Path:    "logs/app.log",
}

// Init configura o logger global uma única vez. Chamadas seguintes são ignoradas.
func Init(opts Options) error {
	var initErr error
	once.Do(func() {
		level, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			initErr = err
			level = zapcore.DebugLevel
		}
		Set(zap.New(newCore(opts, level),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
			zap.Fields(
				zap.String("app", opts.AppName),
				zap.String("env", opts.Env),
			),
		))
	})
	return initErr
}

func newCore(opts Options, level zapcore.Level) zapcore.Core {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.CallerKey = "caller"
	encoderCfg.LevelKey = "level"
	encoderCfg.MessageKey = "message"

	consoleCfg := encoderCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	// stdout fica livre para a saída dos comandos (JSON do hits).
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level)

	if opts.Path == "" {
		return console
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    50,
		MaxBackups: 7,
		MaxAge:     30,
		Compress:   true,
	})
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewTee(
		console,
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), fileWriter, level),
	)
}

// Set troca o logger global. Usado pelos testes com zaptest/observer.
func Set(l *zap.Logger) {
	logger = l
	Log = l.Sugar()
}

func GetLogger() *zap.Logger {
	if logger == nil {
		Init(defaultOptions)
	}
	return logger
}

// Trace registra em debug o tempo gasto por fn desde start.
func Trace(fn string, start time.Time) {
	elapsed := time.Since(start)
	Log.Debugf("%s executed in %d ms", fn, elapsed.Milliseconds())
}

func TraceAuto() func() {
	start := time.Now()
	pc, _, _, ok := runtime.Caller(1)
	funcName := "unknown"
	if ok {
		funcName = trimPackagePath(runtime.FuncForPC(pc).Name())
	}
	Log.Debugw("Início da função", "function", funcName)
	return func() {
		Log.Debugw("Fim da função", "function", funcName, "duration", time.Since(start).String())
	}
}

func trimPackagePath(fullName string) string {
	if idx := strings.LastIndex(fullName, "/"); idx != -1 {
		fullName = fullName[idx+1:]
	}
	if idx := strings.Index(fullName, "."); idx != -1 {
		return fullName[idx+1:]
	}
	return fullName
}
