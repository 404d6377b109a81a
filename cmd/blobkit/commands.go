package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/koustreak/blobkit/internal/blob"
	"github.com/koustreak/blobkit/internal/errs"
)

// oneArg returns the single positional argument of c.
func oneArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 || c.Args().First() == "" {
		return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("%s expects exactly one <%s> argument", c.Command.Name, name))
	}
	return c.Args().First(), nil
}

func uploadCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a local file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "key",
				Usage: "Object key (default: the file's base name)",
			},
			&cli.StringFlag{
				Name:  "content-type",
				Usage: "Content type (default: guessed from the key)",
			},
		},
		Action: func(c *cli.Context) error {
			file, err := oneArg(c, "file")
			if err != nil {
				return err
			}
			payload, err := os.ReadFile(file)
			if err != nil {
				return errs.Wrap(errs.ErrKindInvalidInput, "failed to read "+file, err)
			}

			key := c.String("key")
			if key == "" {
				key = filepath.Base(file)
			}

			if err := s.facade.Upload(c.Context, payload, "", key, c.String("content-type")); err != nil {
				return err
			}

			return s.out.Result(fmt.Sprintf("uploaded %s (%d bytes)", key, len(payload)), map[string]interface{}{
				"key":  key,
				"size": len(payload),
			})
		},
	}
}

func listCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List object keys under a prefix",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Only keys starting with this prefix",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Follow continuation tokens and list every page",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum keys in the page (0: service default)",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Resume from the token printed by a previous truncated page",
			},
		},
		Action: func(c *cli.Context) error {
			const bucket = ""
			prefix := c.String("prefix")

			if c.Bool("all") {
				keys, err := s.facade.Keys(c.Context, bucket, prefix).Collect()
				if err != nil {
					return err
				}
				return s.out.Keys(keys)
			}

			if c.IsSet("limit") || c.IsSet("token") {
				page, err := s.facade.ListPage(c.Context, bucket, prefix, c.String("token"), c.Int("limit"))
				if err != nil {
					return err
				}
				return s.out.Page(page)
			}

			keys, err := s.facade.List(c.Context, bucket, prefix)
			if err != nil {
				return err
			}
			return s.out.Keys(keys)
		},
	}
}

func downloadCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download an object to a file or stdout",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Destination file; \"-\" or empty writes the body to stdout",
			},
		},
		Action: func(c *cli.Context) error {
			key, err := oneArg(c, "key")
			if err != nil {
				return err
			}

			data, err := s.facade.Download(c.Context, "", key)
			if err != nil {
				return err
			}

			dest := c.String("out")
			if dest == "" || dest == "-" {
				_, err := s.stdout.Write(data)
				return err
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return errs.Wrap(errs.ErrKindInvalidInput, "failed to write "+dest, err)
			}
			return s.out.Result(fmt.Sprintf("downloaded %s to %s (%d bytes)", key, dest, len(data)), map[string]interface{}{
				"key":  key,
				"path": dest,
				"size": len(data),
			})
		},
	}
}

func statCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "Show an object's metadata",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			key, err := oneArg(c, "key")
			if err != nil {
				return err
			}
			info, err := s.facade.Stat(c.Context, "", key)
			if err != nil {
				return err
			}
			return s.out.Object(info)
		},
	}
}

func presignCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "presign",
		Usage:     "Print a time-limited download URL",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "How long the URL stays valid (max 168h)",
				Value: blob.DefaultPresignTTL,
			},
		},
		Action: func(c *cli.Context) error {
			key, err := oneArg(c, "key")
			if err != nil {
				return err
			}
			ttl := c.Duration("ttl")
			if ttl <= 0 {
				ttl = blob.DefaultPresignTTL
			}
			u, err := s.facade.Presign(c.Context, "", key, ttl)
			if err != nil {
				return err
			}
			return s.out.Result(u, map[string]interface{}{
				"url":        u,
				"expires_in": ttl.String(),
				"expires_at": time.Now().Add(ttl).UTC().Format(time.RFC3339),
			})
		},
	}
}

func pingCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the store is reachable with the configured credentials",
		Action: func(c *cli.Context) error {
			if err := s.facade.Ping(c.Context); err != nil {
				return err
			}
			return s.out.Result("ok", map[string]interface{}{"status": "ok"})
		},
	}
}
