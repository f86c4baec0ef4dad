package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veilkit/obfuscator"
	"github.com/veilkit/obfuscator/scene"
)

func newClearCmd(g *globals) *cobra.Command {
	var (
		all     bool
		keepRun bool
	)
	cmd := &cobra.Command{
		Use:   "clear [scene.yaml]",
		Short: "Delete obfuscated output",
		Long: "With a scene, delete the run folders of its obfuscated roots and remove\n" +
			"those roots from the scene. With --all, delete every run folder.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("give a scene file or --all")
			}

			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.release()

			out := cmd.OutOrStdout()
			ctx := cmd.Context()
			if len(args) == 1 {
				sc, err := scene.Load(args[0])
				if err != nil {
					return err
				}
				folders, err := s.obf.ClearScene(ctx, sc)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted %d run folder(s)\n", folders)

				if !keepRun {
					roots := obfuscator.RemoveObfuscatedRoots(sc)
					if err := sc.Save(args[0]); err != nil {
						return err
					}
					fmt.Fprintf(out, "removed %d obfuscated root(s)\n", roots)
				}
			}

			if all {
				if err := s.obf.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted %s\n", s.obf.OutputRoot())
			}
			return s.store.Persist(ctx)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every run folder")
	cmd.Flags().BoolVar(&keepRun, "keep-roots", false, "leave obfuscated roots in the scene")
	return cmd
}
