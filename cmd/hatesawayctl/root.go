package main

import (
	"fmt"
	"io"

	"hatesaway-server/config"
	"hatesaway-server/gallery"
	"hatesaway-server/stores"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

// opener returns the gallery to operate on and a func releasing it.
type opener func(configPath string) (*gallery.Service, func(), error)

func openGallery(configPath string) (*gallery.Service, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := stores.GetStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close storage")
			}
		}
	}
	return gallery.NewService(store), release, nil
}

type app struct {
	open       opener
	configPath string
	verbose    bool
	svc        *gallery.Service
	release    func()
}

// newRootCmd builds the command tree. The returned func releases the store
// opened by whichever command ran; call it after Execute, since cobra skips
// post-run hooks when a command fails.
func newRootCmd(open opener) (*cobra.Command, func()) {
	a := &app{open: open}

	root := &cobra.Command{
		Use:   "hatesawayctl",
		Short: "Inspect and maintain a HatesAway gallery",
		Long: `hatesawayctl works directly against the storage backend configured for
the server (STORAGE_TYPE and friends, or a YAML file passed with --config).
Do not run write commands while a server is using the same backend: each
write replaces a whole collection and concurrent writers lose updates.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
			if cmd.Name() == "name" {
				return nil
			}
			svc, release, err := a.open(a.configPath)
			if err != nil {
				return err
			}
			a.svc, a.release = svc, release
			return nil
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path")

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.deleteCmd(),
		a.likeCmd(),
		a.commentsCmd(),
		nameCmd(),
		a.sweepCmd(),
		a.clearCmd(),
	)
	return root, a.close
}

func (a *app) close() {
	if a.release != nil {
		a.release()
		a.release = nil
	}
}
