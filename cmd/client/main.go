// client 快照观看端：连接 bombsim serve，渲染画面，可申请操控权
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"bombsim/internal/client"
	"bombsim/internal/config"
	"bombsim/pkg/protocol"
)

var (
	flagAddr     string
	flagProto    string
	flagName     string
	flagPilot    bool
	flagControls string
	flagConfig   string
	flagScale    float64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "client",
	Short: "Watch or pilot a bombsim session",
	Long: `Connects to a 'bombsim serve' host and renders its snapshots.

With --pilot the client asks for the pilot seat. The first pilot controls
the player; everyone else watches.

Controls:
  wasd   W/A/S/D move, Space bomb, E detonate
  arrow  arrows move, Enter bomb, Right Shift detonate

Examples:
  client --addr localhost:8080
  client --addr host:8080 --proto kcp --pilot --controls arrow`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&flagAddr, "addr", "localhost:8080", "Host address")
	rootCmd.Flags().StringVar(&flagProto, "proto", "tcp", "Transport: tcp or kcp")
	rootCmd.Flags().StringVar(&flagName, "name", "viewer", "Name shown in the host log")
	rootCmd.Flags().BoolVar(&flagPilot, "pilot", false, "Ask for the pilot seat")
	rootCmd.Flags().StringVar(&flagControls, "controls", "wasd", "Key scheme: wasd or arrow")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Config file, for engine timings used by animations")
	rootCmd.Flags().Float64Var(&flagScale, "scale", 2, "Window scale")
}

func run(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           cfg.Log.ParsedLevel(),
		Prefix:          "client",
	})

	scheme, ok := client.ParseControlScheme(flagControls)
	if !ok {
		return fmt.Errorf("未知按键方案: %s", flagControls)
	}

	nc := client.NewNetworkClient(flagAddr, flagProto, logger)
	welcome, err := nc.Connect(protocol.Hello{Name: flagName, Pilot: flagPilot})
	if err != nil {
		return err
	}
	defer nc.Close()

	if flagPilot && !welcome.Pilot {
		logger.Warn("操控权已被占用，以观看者身份加入")
	}

	viewer := client.NewViewer(nc, welcome, cfg.Engine, scheme, logger)

	w, h := client.ScreenSize(welcome.Width, welcome.Height)
	role := "viewer"
	if welcome.Pilot {
		role = "pilot [" + scheme.String() + "]"
	}
	ebiten.SetWindowSize(int(float64(w)*flagScale), int(float64(h)*flagScale))
	ebiten.SetWindowTitle("bombsim - " + flagAddr + " - " + role)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(viewer); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
