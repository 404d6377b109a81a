// Command blobkit uploads, lists and downloads objects in S3 or an
// S3-compatible store, using the environment (and an optional .env file)
// for credentials.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/koustreak/blobkit/internal/blob"
	"github.com/koustreak/blobkit/internal/config"
	"github.com/koustreak/blobkit/internal/errs"
	"github.com/koustreak/blobkit/internal/logger"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitNotFound = 2
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer, opts ...blob.Option) int {
	app := newApp(stdout, stderr, opts...)
	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "blobkit: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errs.IsNotFound(err):
		return exitNotFound
	default:
		return exitFailure
	}
}

// session is the state shared by every command of one invocation.
type session struct {
	facade *blob.Facade
	out    *Printer
	stdout io.Writer
}

func newApp(stdout, stderr io.Writer, opts ...blob.Option) *cli.App {
	s := &session{stdout: stdout}

	return &cli.App{
		Name:      "blobkit",
		Usage:     "Upload, list and download objects in S3-compatible storage",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Optional YAML config file (same keys as the environment, lower case)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file to load before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "bucket",
				Usage: "Bucket to use instead of S3_BUCKET",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: text, json or yaml",
				Value:   string(OutputText),
			},
		},
		Before: func(c *cli.Context) error {
			out, err := NewPrinter(c.String("output"), stdout)
			if err != nil {
				return err
			}

			cfg, err := config.Load(config.Options{
				ConfigFile: c.String("config"),
				EnvFile:    c.String("env-file"),
			})
			if err != nil {
				return err
			}

			logCfg := cfg.Logger()
			logCfg.Output = stderr
			log := logger.New(logCfg)

			facadeOpts := []blob.Option{blob.WithLogger(log)}
			if b := c.String("bucket"); b != "" {
				facadeOpts = append(facadeOpts, blob.WithDefaultBucket(b))
			}

			s.out = out
			s.facade = blob.FromConfig(cfg, append(facadeOpts, opts...)...)

			// Subcommand contexts inherit c.Context, so every facade call
			// logs with the command name.
			c.Context = log.With().Str("command", c.Args().First()).Logger().WithContext(c.Context)
			return nil
		},
		After: func(c *cli.Context) error {
			if s.facade == nil {
				return nil
			}
			return s.facade.Close()
		},
		Commands: []*cli.Command{
			uploadCommand(s),
			listCommand(s),
			downloadCommand(s),
			statCommand(s),
			presignCommand(s),
			pingCommand(s),
		},
	}
}
