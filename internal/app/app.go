package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"netgrab/internal/logger"
)

type App struct {
	Logger   *zap.SugaredLogger
	Config   *Config
	Settings *Settings

	stdin        *bufio.Reader
	stdout       io.Writer
	readPassword func() (string, error)
}

// type for app-level config
type Config struct {
	Client struct {
		SSHTimeout        int64  `yaml:"ssh_timeout"`
		LegacyKeyExchange string `yaml:"legacy_key_exchange"`
		LegacyAlgorithm   string `yaml:"legacy_algorithm"`
	}
	Data struct {
		OutputFolder string `yaml:"output_folder"`
		ResultsData  string `yaml:"results_data"`
	}
}

func NewApp(cfgPath, settingsPath string) (*App, error) {
	app := &App{
		Logger: logger.InitLogger(cfgPath),
		stdin:  bufio.NewReader(os.Stdin),
		stdout: os.Stdout,
	}
	app.readPassword = func() (string, error) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(app.stdout)
		return string(b), err
	}
	if err := app.readConfig(cfgPath); err != nil {
		return nil, err
	}
	settings, err := OpenSettings(settingsPath)
	if err != nil {
		app.Logger.Errorf("Cannot open settings store because of: %s", err)
		return nil, err
	}
	app.Settings = settings
	if err := app.prepareDirectory(); err != nil {
		return nil, err
	}
	return app, nil
}

// this func Unmarshals config.yml content to config variable
func (a *App) readConfig(cfgPath string) error {
	a.Logger.Info("Reading config...")

	f, err := os.Open(cfgPath)
	if err != nil {
		a.Logger.Errorf("Cannot read app config file because of: %s", err)
		return err
	}
	defer f.Close()

	cfg := &Config{}

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		a.Logger.Errorf("Cannot parse app config file because of: %s", err)
		return err
	}
	a.Config = cfg
	a.Logger.Info("Reading config done")
	return nil
}

// this func creates directory for storing outputs if it doesn't exist before
func (a *App) prepareDirectory() error {
	outDir := filepath.Join(a.Config.Data.OutputFolder)
	_, err := os.Stat(outDir)

	if os.IsNotExist(err) {
		if errDir := os.MkdirAll(outDir, os.ModePerm); errDir != nil {
			a.Logger.Errorf("Cannot create directory for outputs because of: %q", errDir)
			return errDir
		}
		a.Logger.Infof("Created output directory %q successfully", outDir)
	}
	return nil
}

// PromptLine shows msg and reads one line from the operator.
func (a *App) PromptLine(msg string) (string, error) {
	fmt.Fprintf(a.stdout, "%s: ", msg)
	line, err := a.stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptPassword shows msg and reads a password without echoing it.
func (a *App) PromptPassword(msg string) (string, error) {
	fmt.Fprintf(a.stdout, "%s: ", msg)
	return a.readPassword()
}
