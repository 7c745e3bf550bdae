package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/workflow"
	"github.com/jwalitptl/hospital-api/pkg/client"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "hospitalctl",
		Short:         "Drive the hospital workflow from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "url", envOr("HOSPITAL_API_URL", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(patientsCmd(out))
	root.AddCommand(appointmentCmd(out))
	root.AddCommand(prescriptionCmd(out))
	root.AddCommand(labCmd(out))
	root.AddCommand(timelineCmd(out))
	root.SetOut(out)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newClient() *client.Client {
	return client.New(client.Config{BaseURL: baseURL, Timeout: timeout, RetryCount: 2})
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func patientsCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "patients",
		Short: "List patients with their latest vitals",
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, err := newClient().ListPatients(cmd.Context())
			if err != nil {
				return err
			}
			w := table(out)
			fmt.Fprintln(w, "ID\tNAME\tAGE\tSTATUS\tVITALS")
			for _, p := range patients {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", p.ID, p.Name, p.Age, p.Status, workflow.FormatVitals(p.Vitals))
			}
			return w.Flush()
		},
	}
}

func appointmentCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointment",
		Short: "Move appointments through the queue",
	}

	move := func(use, short string, to model.AppointmentStatus) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				a, err := newClient().UpdateAppointment(cmd.Context(), id, &model.UpdateAppointmentRequest{Status: &to})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "appointment %d is now %s\n", a.ID, a.Status)
				return nil
			},
		}
	}

	cmd.AddCommand(move("start", "Call the patient in", model.AppointmentStatusInProgress))
	cmd.AddCommand(move("complete", "Finish the consultation", model.AppointmentStatusCompleted))
	return cmd
}

func prescriptionCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prescription",
		Short: "Pharmacy actions",
	}

	var unavailable []string
	dispense := &cobra.Command{
		Use:   "dispense <id>",
		Short: "Dispense every medicine, except those marked unavailable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return dispensePrescription(cmd.Context(), out, id, unavailable)
		},
	}
	dispense.Flags().StringSliceVar(&unavailable, "unavailable", nil, "medicine names that are out of stock")
	cmd.AddCommand(dispense)
	return cmd
}

func dispensePrescription(ctx context.Context, out io.Writer, id int64, unavailable []string) error {
	c := newClient()
	all, err := c.ListPrescriptions(ctx, 0)
	if err != nil {
		return err
	}

	var current *model.Prescription
	for _, p := range all {
		if p.ID == id {
			current = p
			break
		}
	}
	if current == nil {
		return fmt.Errorf("prescription %d not found", id)
	}

	missing := make(map[string]bool, len(unavailable))
	for _, name := range unavailable {
		missing[name] = true
	}
	meds := make(model.Medicines, len(current.Medicines))
	for i, m := range current.Medicines {
		m.Unavailable = missing[m.Name]
		m.Dispensed = !m.Unavailable
		meds[i] = m
	}

	updated, err := c.UpdatePrescription(ctx, id, &model.UpdatePrescriptionRequest{Medicines: meds})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "prescription %d is now %s\n", updated.ID, updated.Status)
	return nil
}

func labCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lab",
		Short: "Lab bench actions",
	}

	var result string
	advance := &cobra.Command{
		Use:   "advance <id>",
		Short: "Move a lab test to its next stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := newClient()
			tests, err := c.ListLabTests(cmd.Context(), 0)
			if err != nil {
				return err
			}
			for _, lt := range tests {
				if lt.ID != id {
					continue
				}
				next, ok := workflow.LabTests.Next(lt.Status)
				if !ok {
					return fmt.Errorf("lab test %d is already %s", id, lt.Status)
				}
				req := &model.UpdateLabTestRequest{Status: &next}
				if result != "" {
					req.Result = &result
				}
				updated, err := c.UpdateLabTest(cmd.Context(), id, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "lab test %d is now %s\n", updated.ID, updated.Status)
				return nil
			}
			return fmt.Errorf("lab test %d not found", id)
		},
	}
	advance.Flags().StringVar(&result, "result", "", "result text to attach")
	cmd.AddCommand(advance)
	return cmd
}

func timelineCmd(out io.Writer) *cobra.Command {
	var export string
	cmd := &cobra.Command{
		Use:   "timeline <patientId>",
		Short: "Show a patient's timeline, or export it with --export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := newClient()

			if export != "" {
				f, err := os.Create(export)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := c.ExportTimeline(cmd.Context(), id, f); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", export)
				return nil
			}

			events, err := c.Timeline(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := table(out)
			fmt.Fprintln(w, "TIME\tTYPE\tTITLE\tDESCRIPTION")
			for _, ev := range events {
				desc := ""
				if ev.Description != nil {
					desc = *ev.Description
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.Title, desc)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&export, "export", "", "write the XLSX export to this file")
	return cmd
}
