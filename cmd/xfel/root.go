package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/xboot/xfel-go/chip"
	"github.com/xboot/xfel-go/fel"
	"github.com/xboot/xfel-go/logging"
	"github.com/xboot/xfel-go/payload"
	"github.com/xboot/xfel-go/transport"
	"github.com/xboot/xfel-go/transport/usb"
)

const payloadsEnv = "XFEL_PAYLOADS"

// app carries everything commands touch outside the process, so tests can
// swap the device and the filesystem.
type app struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    *logrus.Logger
	open   func(timeout time.Duration) (transport.Transport, error)

	payloads     string
	dramProfiles string
	timeout      time.Duration
	verbose      bool
	progress     bool
}

func openUSB(timeout time.Duration) (transport.Transport, error) {
	u, err := usb.Open(usb.VendorID, usb.ProductID, timeout)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xfel",
		Short: "Talk to Allwinner SoCs in FEL (USB recovery) mode",
		Long: `xfel drives the FEL boot ROM of Allwinner SoCs over USB: read and
write memory, run code, initialise DRAM and program SPI flash.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbose {
				a.log.SetLevel(logrus.DebugLevel)
			}
			if a.dramProfiles != "" {
				return a.loadProfiles(a.dramProfiles)
			}
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.payloads, "payloads", os.Getenv(payloadsEnv), "directory holding stub images (env "+payloadsEnv+")")
	f.StringVar(&a.dramProfiles, "dram-profiles", "", "YAML file with extra DRAM parameter sets")
	f.DurationVar(&a.timeout, "timeout", usb.DefaultTimeout, "timeout of a single USB exchange")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log protocol details")
	f.BoolVarP(&a.progress, "progress", "p", false, "show transfer progress")

	cmd.AddCommand(
		versionCmd(a),
		hexdumpCmd(a),
		dumpCmd(a),
		execCmd(a),
		read32Cmd(a),
		write32Cmd(a),
		readCmd(a),
		writeCmd(a),
		resetCmd(a),
		sidCmd(a),
		jtagCmd(a),
		ddrCmd(a),
		spinorCmd(a),
		spinandCmd(a),
		chipsCmd(a),
	)
	return cmd
}

func (a *app) loadProfiles(name string) error {
	f, err := a.fs.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	profiles, err := chip.LoadDRAMProfiles(f)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := chip.ApplyProfiles(profiles); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	a.log.WithField("profiles", len(profiles)).Debug("dram profiles loaded")
	return nil
}

// connect opens the device and performs the FEL handshake.
func (a *app) connect(ctx context.Context) (*fel.Session, error) {
	t, err := a.open(a.timeout)
	if err != nil {
		return nil, err
	}

	opts := []fel.Option{
		fel.WithLogger(logging.Logrus(a.log)),
		fel.WithTimeout(a.timeout),
	}
	if a.payloads != "" {
		opts = append(opts, fel.WithPayloads(payload.NewDir(a.fs, a.payloads)))
	}
	if a.progress {
		opts = append(opts, fel.WithProgress(a.showProgress))
	}

	s, err := fel.Open(ctx, t, opts...)
	if err != nil {
		t.Close()
		return nil, err
	}
	if s.Chip() == nil {
		a.log.Warnf("unsupported chip, memory access only: %s", s.Identity())
	}
	return s, nil
}

// withSession runs fn on a fresh session and closes it afterwards.
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *fel.Session) error) error {
	ctx := cmd.Context()
	s, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func (a *app) showProgress(p fel.Progress) {
	fmt.Fprintf(a.stderr, "\r%-6s %6.2f%% %d/%d bytes %s", p.Op, p.Percentage(), p.Done, p.Total, p.Elapsed.Round(time.Millisecond))
	if p.Done >= p.Total {
		fmt.Fprintln(a.stderr)
	}
}

func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(v), nil
}

func parseLen(s string) (int, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return int(v), nil
}

func parseWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return uint32(v), nil
}

// loadFile reads a whole file, or standard input for "-".
func (a *app) loadFile(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(a.stdin)
	}
	return afero.ReadFile(a.fs, name)
}

func (a *app) saveFile(name string, data []byte) error {
	return afero.WriteFile(a.fs, name, data, 0o644)
}
