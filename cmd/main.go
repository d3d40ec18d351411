package cmd

import (
	"io"
	"os"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/mazesearch/build-web/pkg/buildsys"
	buildcmd "github.com/mazesearch/build-web/pkg/buildsys/cmd"
	"github.com/mazesearch/build-web/pkg/config"
)

func newLogger(out io.Writer, cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg != nil {
		level = cfg.LogLevel()
	}

	var writer io.Writer
	if cfg != nil && cfg.Log.JSON {
		writer = out
		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			return eris.ToJSON(err, true)
		}
	} else {
		console := buildcmd.NewConsoleWriter(out)
		_, console.NoColor = os.LookupEnv("NO_COLOR")
		console.Verbose = level <= zerolog.TraceLevel
		writer = console

		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			return eris.ToString(err, true)
		}
	}

	// stack traces are only interesting while debugging the build itself
	withTrace := level <= zerolog.DebugLevel
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, withTrace)
	}

	return zerolog.New(writer).Level(level).With().Str("run", nanoid.New()).Logger()
}

func run(args []string) int {
	cfg, err := config.Load(config.DefaultFiles...)
	if err != nil {
		logger := newLogger(os.Stderr, nil)
		buildsys.NewLogReporter(&logger).Report(buildsys.SeverityError, "invalid configuration, ", err.Error(),
			"check build-web.toml, build-web.yml and the BUILD_WEB_* environment variables")
		return 1
	}

	logger := newLogger(os.Stderr, cfg)

	root, err := os.Getwd()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve the current working directory")
		return 1
	}

	runner := buildsys.NewShellRunner(root)
	return buildcmd.Run(&buildcmd.Env{
		Root:      root,
		Config:    cfg,
		Runner:    runner,
		Reporter:  buildsys.NewLogReporter(&logger),
		Confirmer: &buildsys.PromptConfirmer{In: os.Stdin, Out: os.Stdout},
		Logger:    &logger,
		Out:       os.Stdout,
	}, args)
}

// Execute runs build-web with the process arguments and exits with its status
func Execute() {
	os.Exit(run(os.Args[1:]))
}
