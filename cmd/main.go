package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"netgrab/internal/app"
	"netgrab/internal/device"
	"netgrab/internal/session"
	"netgrab/internal/worker"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath, settingsPath, devicesPath, command string

	cmd := &cobra.Command{
		Use:           "netgrab",
		Short:         "Capture command output from a batch of network devices over ssh/telnet",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath, settingsPath, devicesPath, command)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "./config/config.yml", "path to the app config file")
	cmd.Flags().StringVar(&settingsPath, "settings", "./config/settings.yml", "path to the persisted settings store")
	cmd.Flags().StringVar(&devicesPath, "devices", "", "path to the device CSV file (prompted when empty)")
	cmd.Flags().StringVar(&command, "command", "", "command to capture on each device (prompted when empty)")
	return cmd
}

func run(cfgPath, settingsPath, devicesPath, command string) error {
	start := time.Now()

	a, err := app.NewApp(cfgPath, settingsPath)
	if err != nil {
		return err
	}

	//graceful shutdown setup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		a.Logger.Errorf("Caught signal: %q, exiting...", s.String())
		cancel()
	}()

	//Parse CSV with devices info to memory
	if devicesPath == "" {
		devicesPath, err = a.PromptLine("Enter the path to the device CSV file")
		if err != nil {
			return err
		}
	}
	a.Logger.Info("Decoding devices data...")
	deviceFile, err := os.Open(devicesPath)
	if err != nil {
		a.Logger.Error(err)
		return err
	}
	devices, err := device.Load(deviceFile)
	deviceFile.Close()
	if err != nil {
		a.Logger.Errorf("Cannot decode device list because of: %s", err)
		return err
	}
	a.Logger.Info("Decoding devices data done")
	if len(devices) == 0 {
		a.Logger.Info("Device list is empty, nothing to do")
		return nil
	}

	if command == "" {
		command, err = a.PromptLine("Enter the command to capture on each device")
		if err != nil {
			return err
		}
	}
	if command == "" {
		a.Logger.Info("No command given, nothing to do")
		return nil
	}

	jumpbox, err := a.ResolveJumpbox()
	if err != nil {
		return err
	}

	sess := session.New(a.Logger, session.Config{
		OutputDir:         a.Config.Data.OutputFolder,
		Timeout:           time.Duration(a.Config.Client.SSHTimeout) * time.Second,
		LegacyKeyExchange: a.Config.Client.LegacyKeyExchange,
		LegacyAlgorithm:   a.Config.Client.LegacyAlgorithm,
	})

	scriptName := strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
	runner := worker.NewRunner(sess, a.Logger, command, scriptName, jumpbox)
	if err := runner.Run(ctx, devices); err != nil {
		a.Logger.Error(err)
		return err
	}

	//write summary output
	a.Logger.Info("Writing app summary output...")
	resultsFile, err := os.OpenFile(filepath.Join(a.Config.Data.OutputFolder, a.Config.Data.ResultsData),
		os.O_CREATE|os.O_APPEND|os.O_RDWR, os.ModePerm)
	if err != nil {
		a.Logger.Errorf("Unable to create app summary output file because of: %q", err)
	} else {
		defer resultsFile.Close()
	}

	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)
	table.SetHeader([]string{"Device", "Protocol", "Run Status"})

	for _, d := range devices {
		table.Append([]string{d.Hostname, d.Protocol, d.State})
	}
	table.SetFooter([]string{"", "", time.Now().Format(time.RFC822)})
	table.Render()
	if resultsFile != nil {
		if _, err := resultsFile.WriteString(tableString.String()); err != nil {
			a.Logger.Errorf("Unable to write app summary because of: %q", err)
		}
	}
	fmt.Println(tableString.String())

	a.Logger.Infof("Finished! Time taken: %s", time.Since(start))
	return nil
}
