package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veilkit/obfuscator"
	"github.com/veilkit/obfuscator/config"
	"github.com/veilkit/obfuscator/scene"
)

func newRunCmd(g *globals) *cobra.Command {
	var (
		configPath string
		outPath    string
		progress   bool
	)
	cmd := &cobra.Command{
		Use:   "run <scene.yaml> <root>",
		Short: "Obfuscate a root of a scene and add the copy to the scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenePath, name := args[0], args[1]

			sc, err := scene.Load(scenePath)
			if err != nil {
				return err
			}
			var cfg *config.Config
			if configPath != "" {
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			var opts []obfuscator.Option
			if progress {
				opts = append(opts, obfuscator.WithProgress(func(phase string, fraction float64) {
					fmt.Fprintf(out, "[%3.0f%%] %s\n", fraction*100, phase)
				}))
			}
			s, err := g.open(cmd, opts...)
			if err != nil {
				return err
			}
			defer s.release()

			res, err := s.obf.ObfuscateScene(cmd.Context(), sc, name, cfg)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = scenePath
			}
			if err := sc.Save(outPath); err != nil {
				return err
			}

			fmt.Fprintf(out, "obfuscated %s as %s\n", name, res.Root.Name)
			fmt.Fprintf(out, "assets in %s (%d cloned)\n", res.Folder, total(res.Clones))
			for _, d := range res.Diagnostics {
				fmt.Fprintf(out, "warning: %s\n", d)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (defaults to the root's marker)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the scene here instead of in place")
	cmd.Flags().BoolVar(&progress, "progress", false, "print each phase as it starts")
	return cmd
}

func total[K comparable](counts map[K]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
