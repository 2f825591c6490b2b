package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xboot/xfel-go/fel"
	"github.com/xboot/xfel-go/spiflash"
)

type detectFunc func(ctx context.Context, s *fel.Session) (spiflash.Flash, error)

func detectNOR(ctx context.Context, s *fel.Session) (spiflash.Flash, error) {
	f, err := spiflash.DetectNOR(ctx, s)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func detectNAND(ctx context.Context, s *fel.Session) (spiflash.Flash, error) {
	f, err := spiflash.DetectNAND(ctx, s)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func spinorCmd(a *app) *cobra.Command {
	return flashCmd(a, "spinor", "SPI NOR", detectNOR)
}

func spinandCmd(a *app) *cobra.Command {
	return flashCmd(a, "spinand", "SPI NAND", detectNAND)
}

// flashCmd builds the detect/read/write/erase command tree shared by both
// flash kinds.
func flashCmd(a *app, use, kind string, detect detectFunc) *cobra.Command {
	withFlash := func(cmd *cobra.Command, fn func(ctx context.Context, f spiflash.Flash) error) error {
		return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
			f, err := detect(ctx, s)
			if err != nil {
				return err
			}
			a.log.WithField("flash", f.Info().Name).Debug("flash detected")
			return fn(ctx, f)
		})
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: "Detect and program " + kind + " flash",
		Long:  fmt.Sprintf("Without a subcommand, detect the %s flash and print its geometry.", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withFlash(cmd, func(ctx context.Context, f spiflash.Flash) error {
				fmt.Fprintf(a.stdout, "Found %s flash: %s\n", kind, f.Info())
				return nil
			})
			if errors.Is(err, spiflash.ErrNoFlash) {
				fmt.Fprintf(a.stdout, "No %s flash found\n", kind)
				return nil
			}
			return err
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "read <offset> <length> <file>",
			Short:   "Read flash contents into a file",
			Example: fmt.Sprintf("  xfel %s read 0 0x100000 flash.bin", use),
			Args:    cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				off, n, err := offLen(args[0], args[1])
				if err != nil {
					return err
				}
				return withFlash(cmd, func(ctx context.Context, f spiflash.Flash) error {
					buf, err := f.Read(ctx, off, n)
					if err != nil {
						return err
					}
					return a.saveFile(args[2], buf)
				})
			},
		},
		&cobra.Command{
			Use:     "write <offset> <file>",
			Short:   "Write a file to flash",
			Long:    `Write a file to flash. Affected erase blocks are read, merged and rewritten. A file name of "-" reads standard input.`,
			Example: fmt.Sprintf("  xfel %s write 0 firmware.bin", use),
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				off, err := parseLen(args[0])
				if err != nil {
					return err
				}
				data, err := a.loadFile(args[1])
				if err != nil {
					return err
				}
				return withFlash(cmd, func(ctx context.Context, f spiflash.Flash) error {
					return f.Write(ctx, off, data)
				})
			},
		},
		&cobra.Command{
			Use:   "erase <offset> <length>",
			Short: "Erase a block-aligned flash range",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				off, n, err := offLen(args[0], args[1])
				if err != nil {
					return err
				}
				return withFlash(cmd, func(ctx context.Context, f spiflash.Flash) error {
					return f.Erase(ctx, off, n)
				})
			},
		},
	)
	return cmd
}

func offLen(off, n string) (int, int, error) {
	o, err := parseLen(off)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid offset %q", off)
	}
	l, err := parseLen(n)
	if err != nil {
		return 0, 0, err
	}
	return o, l, nil
}
