package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository/kvstore"
	"github.com/jwalitptl/dentalcare/pkg/messaging"
)

// dump is the file format of export and import.
type dump struct {
	Patients  []model.Patient  `json:"patients"`
	Incidents []model.Incident `json:"incidents"`
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the bundled users, patients and incidents where absent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Storage.Seed(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seeded")
			return nil
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write patients and incidents as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			var d dump
			if d.Patients, err = a.Storage.GetPatients(ctx); err != nil {
				return err
			}
			if d.Incidents, err = a.Storage.GetIncidents(ctx); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeJSON(w, d)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace patients and incidents with the contents of an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var d dump
			if err := json.Unmarshal(raw, &d); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if err := checkDump(d); err != nil {
				return err
			}

			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.Storage.SavePatients(ctx, d.Patients); err != nil {
				return err
			}
			if err := a.Storage.SaveIncidents(ctx, d.Incidents); err != nil {
				return err
			}
			for _, c := range []model.Collection{model.CollectionPatients, model.CollectionIncidents} {
				evt := model.ChangeEvent{Collection: c, Op: model.OpReplace, At: a.Storage.Now().UTC()}
				if err := a.Broker.Publish(ctx, model.ChangesChannel, evt); err != nil {
					a.Logger.Error(err, "failed to announce import", "collection", string(c))
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d patients and %d incidents\n", len(d.Patients), len(d.Incidents))
			return nil
		},
	}
	return cmd
}

// checkDump validates every record and rejects duplicate ids and incidents
// whose patient is not part of the dump.
func checkDump(d dump) error {
	v := kvstore.NewValidator()
	ids := make(map[string]bool, len(d.Patients))
	for _, p := range d.Patients {
		if p.ID == "" {
			return fmt.Errorf("patient %q has no id", p.Name)
		}
		if ids[p.ID] {
			return fmt.Errorf("duplicate patient id %s", p.ID)
		}
		if err := v.Validate(p); err != nil {
			return fmt.Errorf("patient %s: %w", p.ID, err)
		}
		ids[p.ID] = true
	}
	seen := make(map[string]bool, len(d.Incidents))
	for _, inc := range d.Incidents {
		if inc.ID == "" {
			return fmt.Errorf("incident %q has no id", inc.Title)
		}
		if seen[inc.ID] {
			return fmt.Errorf("duplicate incident id %s", inc.ID)
		}
		seen[inc.ID] = true
		if err := v.Validate(inc); err != nil {
			return fmt.Errorf("incident %s: %w", inc.ID, err)
		}
		if !ids[inc.PatientID] {
			return fmt.Errorf("incident %s references unknown patient %s", inc.ID, inc.PatientID)
		}
	}
	return nil
}

func newSnapshotCmd(opts *options) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Store the headline stats for a month",
		Long: `Store today's headline stats as the snapshot of a month.

The figures are always the current totals. Passing --month for another month
overwrites that month's snapshot with them, and "stats compare" will treat
them as that month's figures. Use it to backfill a month the worker missed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.DirectStats.Snapshot(cmd.Context(), month)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM, defaults to the current month; other months get today's totals")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:       "stats [dashboard|quick|revenue|compare|months]",
		Short:     "Print derived statistics",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dashboard", "quick", "revenue", "compare", "months"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			svc := a.DirectStats
			var v interface{}
			switch args[0] {
			case "dashboard":
				v, err = svc.Dashboard(ctx)
			case "quick":
				v, err = svc.QuickStats(ctx)
			case "revenue":
				v, err = svc.Revenue(ctx)
			case "compare":
				v, err = svc.Compare(ctx, month)
			case "months":
				v, err = a.Repos.Stats.Months(ctx)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month for compare, defaults to the current month")
	return cmd
}

func newUsersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts without their passwords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.Auth.Users(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), users)
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print change events until interrupted",
		Long:  "Print change events as they are published. Only useful with the redis broker.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			events := messaging.NewBrokerAdapter(a.Broker, a.Logger)
			if err := events.Subscribe(ctx, model.ChangesChannel, func(b []byte) error {
				var evt model.ChangeEvent
				if err := json.Unmarshal(b, &evt); err != nil {
					return err
				}
				_, err := fmt.Fprintf(out, "%s %s %s %s\n", evt.At.Format(time.RFC3339), evt.Collection, evt.Op, evt.ID)
				return err
			}); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
}
