package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veilkit/obfuscator"
	"github.com/veilkit/obfuscator/config"
	"github.com/veilkit/obfuscator/engine"
	"github.com/veilkit/obfuscator/health"
	"github.com/veilkit/obfuscator/scene"
)

func newCheckCmd(g *globals) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "check <scene.yaml> <root>",
		Short: "Report problems that would abort a run, without running it",
		Long: "Validate the subject and its configuration, then check that every asset\n" +
			"the hierarchy references exists and that the output root can be created.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.Load(args[0])
			if err != nil {
				return err
			}
			subject := sc.Root(args[1])
			if subject == nil {
				return fmt.Errorf("%w: %s", obfuscator.ErrSubjectNotFound, args[1])
			}

			if configPath != "" {
				if _, err := config.Load(configPath); err != nil {
					return err
				}
			} else if subject.Marker != nil && subject.Marker.Config != nil {
				if err := subject.Marker.Config.Validate(); err != nil {
					return err
				}
			}
			if err := engine.Check(subject); err != nil {
				return err
			}

			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.release()

			ctx := cmd.Context()
			checks := []struct {
				name   string
				status health.Status
			}{
				{"subject", health.SubjectCheck(subject)},
				{"assets", health.ReferenceCheck(ctx, s.store, subject)},
				{"output", health.OutputCheck(ctx, s.store, s.obf.OutputRoot())},
			}

			out := cmd.OutOrStdout()
			statuses := make([]health.Status, 0, len(checks))
			for _, c := range checks {
				fmt.Fprintf(out, "%-8s %-9s %s\n", c.name, c.status.Status, c.status.Message)
				missing, _ := c.status.Details["missing"].([]string)
				for _, ref := range missing {
					fmt.Fprintf(out, "  missing %s\n", ref)
				}
				statuses = append(statuses, c.status)
			}

			overall := health.Combine(statuses...)
			if overall.IsUnhealthy() {
				return fmt.Errorf("%s: %s", subject.Name, overall.Message)
			}
			if overall.IsDegraded() {
				fmt.Fprintf(out, "%s: ok with warnings\n", subject.Name)
				return nil
			}
			fmt.Fprintf(out, "%s: ok\n", subject.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file to validate")
	return cmd
}
