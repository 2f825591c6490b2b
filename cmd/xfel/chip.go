package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xboot/xfel-go/chip"
	"github.com/xboot/xfel-go/fel"
	"github.com/xboot/xfel-go/payload"
)

func resetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the chip through its watchdog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				return s.Reset(ctx)
			})
		},
	}
}

func sidCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sid",
		Short: "Show the 128-bit security ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				sid, err := s.SID(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%08x%08x%08x%08x\n", sid[0], sid[1], sid[2], sid[3])
				return nil
			})
		},
	}
}

func jtagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "jtag",
		Short: "Route JTAG to its debug pins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				return s.JTAG(ctx)
			})
		},
	}
}

func ddrCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ddr [type]",
		Short: "Initialise DRAM",
		Long: `Initialise the DRAM controller with the parameters of the given type,
or of the chip's default type. "xfel chips" lists the known types.`,
		Example: "  xfel ddr\n  xfel ddr lpddr3",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var typ string
			if len(args) > 0 {
				typ = args[0]
			}
			return a.withSession(cmd, func(ctx context.Context, s *fel.Session) error {
				return s.InitDRAM(ctx, typ)
			})
		},
	}
}

func chipsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chips",
		Short: "List supported chips",
		Long: `List supported chips with their capabilities and DRAM types. With
--payloads, also show the stubs each chip needs, marking those missing
from the directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var have map[string]bool
			if a.payloads != "" {
				names, err := payload.NewDir(a.fs, a.payloads).Names()
				if err != nil {
					return fmt.Errorf("payloads: %w", err)
				}
				have = make(map[string]bool, len(names))
				for _, n := range names {
					have[n] = true
				}
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			header := "NAME\tID\tCAPABILITIES\tDRAM TYPES"
			if have != nil {
				header += "\tSTUBS"
			}
			fmt.Fprintln(tw, header)
			for _, d := range chip.All() {
				types := "-"
				if d.Has(chip.CapDDR) {
					types = strings.Join(d.DRAM.TypeNames(), ",")
				}
				fmt.Fprintf(tw, "%s\t0x%08x\t%s\t%s", d.Name, d.ID, d.Caps, types)
				if have != nil {
					fmt.Fprintf(tw, "\t%s", stubStatus(d, have))
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
}

// stubs returns the stub images d uses for its supported operations.
func stubs(d *chip.Descriptor) []string {
	var out []string
	if d.Has(chip.CapSID) && d.SID.Method == chip.SIDStub {
		out = append(out, d.SID.Stub)
	}
	if d.Has(chip.CapDDR) {
		out = append(out, d.DRAM.Stub)
	}
	if d.Has(chip.CapSPINOR) || d.Has(chip.CapSPINAND) {
		out = append(out, d.SPI.Stub)
	}
	return out
}

func stubStatus(d *chip.Descriptor, have map[string]bool) string {
	list := stubs(d)
	if len(list) == 0 {
		return "-"
	}
	for i, name := range list {
		if !have[name] {
			list[i] = name + "(missing)"
		}
	}
	return strings.Join(list, ",")
}
