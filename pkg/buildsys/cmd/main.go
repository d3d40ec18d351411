// Package cmd implements the command line interface for the buildsys package
package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mazesearch/build-web/pkg/buildsys"
	"github.com/mazesearch/build-web/pkg/config"
)

const intro = "compiling and bundling wasm for a static website"

// Env bundles everything a run needs from the outside world
type Env struct {
	Root      string
	Config    *config.Config
	Runner    buildsys.Runner
	Reporter  buildsys.Reporter
	Confirmer buildsys.Confirmer
	Logger    *zerolog.Logger
	// Out receives usage text and cobra's own messages
	Out io.Writer
	// Pipeline defaults to buildsys.DefaultPipeline()
	Pipeline buildsys.Pipeline
}

// NewRootCmd creates the build-web command bound to env
func NewRootCmd(env *Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "build-web",
		Short: "Compiles a rust crate to wasm and bundles it for a static website",
		Long: `This command checks the rust toolchain, compiles the crate in the current directory to wasm,
generates the JavaScript bindings with wasm-bindgen and copies index.html next to them.
The result ends up in the output directory (dist by default) and can be served by any http server.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			release, err := cmd.Flags().GetBool("release")
			if err != nil {
				return err
			}

			clean, err := cmd.Flags().GetBool("clean")
			if err != nil {
				return err
			}

			rmSrc, err := cmd.Flags().GetBool("rm-src")
			if err != nil {
				return err
			}

			ctx := buildsys.WithLogger(cmd.Context(), env.Logger)

			if rmSrc {
				confirmed, err := env.Confirmer.Confirm(ctx,
					"are you sure you want to remove all development files? they cannot be recovered")
				if err != nil {
					var invalid *buildsys.InvalidAnswerError
					if errors.As(err, &invalid) {
						return buildsys.Fatal(invalid.Answer+" is not valid, ", "try y for YES, n for NO", "", nil)
					}
					return buildsys.Fatal("couldn't read answer, ", "aborting", "", err)
				}

				if !confirmed {
					env.Reporter.Report(buildsys.SeverityInfo, "ok, exiting...", "", "")
					return nil
				}
			}

			env.Reporter.Report(buildsys.SeverityInfo, intro, "", "")

			build := &buildsys.Build{
				Options: buildsys.Options{
					Release:      release,
					Clean:        clean,
					RemoveSource: rmSrc,
				},
				Config:   env.Config,
				Root:     env.Root,
				Runner:   env.Runner,
				Reporter: env.Reporter,
			}

			pipeline := env.Pipeline
			if pipeline == nil {
				pipeline = buildsys.DefaultPipeline()
			}

			err = pipeline.Run(ctx, build)
			if err != nil {
				return err
			}

			env.Reporter.Report(buildsys.SeveritySuccess, "files built, ", "now you can use them with a http server", "")
			return nil
		},
	}

	rootCmd.Flags().BoolP("release", "r", false, "use rust compiler in release mode instead of debug")
	rootCmd.Flags().BoolP("clean", "c", false, "remove files from last build")
	rootCmd.Flags().Bool("rm-src", false, "removes all development files!!!")

	return rootCmd
}

// Run parses args, runs the build and returns the process exit status
func Run(env *Env, args []string) int {
	if args == nil {
		// cobra falls back to os.Args otherwise
		args = []string{}
	}

	rootCmd := NewRootCmd(env)
	rootCmd.SetArgs(args)
	if env.Out != nil {
		rootCmd.SetOut(env.Out)
		rootCmd.SetErr(env.Out)
	}

	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}

	var stepErr *buildsys.StepError
	if errors.As(err, &stepErr) {
		buildsys.ReportError(env.Reporter, stepErr)
	} else {
		env.Reporter.Report(buildsys.SeverityError, err.Error(), "", "pass -h or --help as argument to see possible flags")
	}

	return buildsys.ExitCode(err)
}
