package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xboot/xfel-go/fel"
)

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the FEL identity of the attached chip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				name := "unknown"
				if c := s.Chip(); c != nil {
					name = c.Name
				}
				fmt.Fprintf(a.stdout, "%s (%s)\n", s.Identity(), name)
				return nil
			})
		},
	}
}

func hexdumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "hexdump <address> <length>",
		Short:   "Dump memory as hex and ASCII",
		Example: "  xfel hexdump 0x0 0x100",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, n, err := addrLen(args[0], args[1])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				buf, err := s.Read(ctx, addr, n)
				if err != nil {
					return err
				}
				return hexdump(a.stdout, addr, buf)
			})
		},
	}
}

func dumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "dump <address> <length>",
		Short:   "Write raw memory to standard output",
		Example: "  xfel dump 0x0 0x8000 > brom.bin",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, n, err := addrLen(args[0], args[1])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				buf, err := s.Read(ctx, addr, n)
				if err != nil {
					return err
				}
				_, err = a.stdout.Write(buf)
				return err
			})
		},
	}
}

func execCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <address>",
		Short: "Call the code at address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				return s.Exec(ctx, addr)
			})
		},
	}
}

func read32Cmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read32 <address>",
		Short: "Read a 32-bit word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				v, err := s.ReadWord(ctx, addr)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "0x%08x\n", v)
				return nil
			})
		},
	}
}

func write32Cmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write32 <address> <value>",
		Short: "Write a 32-bit word",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			v, err := parseWord(args[1])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				return s.WriteWord(ctx, addr, v)
			})
		},
	}
}

func readCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "read <address> <length> <file>",
		Short:   "Read memory into a file",
		Example: "  xfel read 0x40000000 0x100000 dram.bin",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, n, err := addrLen(args[0], args[1])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				buf, err := s.Read(ctx, addr, n)
				if err != nil {
					return err
				}
				return a.saveFile(args[2], buf)
			})
		},
	}
}

func writeCmd(a *app) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "write <address> <file>",
		Short: "Write a file into memory",
		Long: `Write a file into memory. A file name of "-" reads standard input.
With --verify the region is read back and compared.`,
		Example: "  xfel write 0x40000000 u-boot.bin",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			data, err := a.loadFile(args[1])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				if verify {
					return s.WriteVerify(ctx, addr, data)
				}
				return s.Write(ctx, addr, data)
			})
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "read the data back and compare")
	return cmd
}

func addrLen(addr, n string) (uint32, int, error) {
	a, err := parseAddr(addr)
	if err != nil {
		return 0, 0, err
	}
	l, err := parseLen(n)
	if err != nil {
		return 0, 0, err
	}
	return a, l, nil
}
