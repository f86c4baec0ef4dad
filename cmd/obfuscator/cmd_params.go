package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/veilkit/obfuscator"
	"github.com/veilkit/obfuscator/config"
	"github.com/veilkit/obfuscator/scene"
)

func newParamsCmd(g *globals) *cobra.Command {
	var (
		configPath string
		selectAll  bool
		write      bool
	)
	cmd := &cobra.Command{
		Use:   "params <scene.yaml> <root>",
		Short: "List the parameters a root offers for obfuscation",
		Long: "List the parameters declared by the root's playable layers. Selected\n" +
			"parameters are marked with '*'. With --write the selection is refreshed\n" +
			"(names no longer declared are dropped) and saved back.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenePath, name := args[0], args[1]
			sc, err := scene.Load(scenePath)
			if err != nil {
				return err
			}
			subject := sc.Root(name)
			if subject == nil {
				return fmt.Errorf("%w: %s", obfuscator.ErrSubjectNotFound, name)
			}

			cfg, save, err := selection(subject, configPath, scenePath, sc)
			if err != nil {
				return err
			}

			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.release()

			available, err := s.obf.ListParameters(cmd.Context(), subject)
			if err != nil {
				return err
			}
			dropped := cfg.SanitizeSelection(available)
			if selectAll {
				cfg.SelectAll(available)
			}

			out := cmd.OutOrStdout()
			for _, p := range available {
				mark := " "
				if slices.Contains(cfg.ExposedParameters.SelectedParameterNames, p) {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s\n", mark, p)
			}
			for _, p := range dropped {
				fmt.Fprintf(out, "dropped %s\n", p)
			}

			if !write {
				return nil
			}
			return save()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (defaults to the root's marker)")
	cmd.Flags().BoolVar(&selectAll, "all", false, "select every listed parameter")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "save the refreshed selection")
	return cmd
}

// selection returns the configuration to edit and a function saving it back
// where it came from: the config file if given, else the root's marker.
func selection(subject *scene.Node, configPath, scenePath string, sc *scene.Scene) (*config.Config, func() error, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		return cfg, func() error { return cfg.Save(configPath) }, nil
	}

	if subject.Marker == nil {
		subject.Marker = &scene.Marker{}
	}
	if subject.Marker.Config == nil {
		subject.Marker.Config = config.Default()
	}
	return subject.Marker.Config, func() error { return sc.Save(scenePath) }, nil
}
