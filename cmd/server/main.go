package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"doctor-booking-api/internal/app"
	"doctor-booking-api/internal/catalog"
	"doctor-booking-api/internal/config"
	"doctor-booking-api/internal/handler"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store"
	"doctor-booking-api/internal/validation"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "booking-server",
		Short:        "Doctor search and appointment booking API",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd(), doctorsCmd(), slotsCmd(), appointmentsCmd(), bookCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

// localApp builds an App over the configured doctor source for one-shot
// commands.
func localApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(cfg.Level())
	doctors, closeSrc, err := loadDoctors(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.New(doctors)
	if err != nil {
		closeSrc()
		return nil, nil, err
	}
	return app.New(cat, store.New()), closeSrc, nil
}

func doctorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "List doctors, available first",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			a, done, err := localApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			res := a.Search(search)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSPECIALIZATION\tRATING\tEXPERIENCE\tSTATUS")
			for _, group := range [][]model.Doctor{res.Available, res.Unavailable} {
				for _, d := range group {
					st := "available"
					if !d.IsAvailable {
						st = "unavailable"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%d yrs\t%s\n", d.ID, d.Name, d.Specialization, d.Rating, d.Experience, st)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("search", "", "Filter by name or specialization")
	return cmd
}

func slotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots <doctor-id> <date>",
		Short: "Show bookable times for a doctor on a YYYY-MM-DD date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := localApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			sl, err := a.SlotList(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sl.Slots) == 0 {
				fmt.Fprintf(out, "No available times on %s\n", validation.FormatDate(sl.Date))
				return nil
			}
			fmt.Fprintf(out, "%s\n", validation.FormatDate(sl.Date))
			for _, s := range sl.Slots {
				fmt.Fprintf(out, "  %s (%s)\n", s.Label, s.Time)
			}
			return nil
		},
	}
}

func dial(addr string) (*handler.Client, func(), error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return handler.NewClient(conn), func() { conn.Close() }, nil
}

func appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List appointments booked on a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			cl, done, err := dial(addr)
			if err != nil {
				return err
			}
			defer done()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			views, err := cl.ListAppointments(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDOCTOR\tPATIENT\tWHEN\tSTATUS")
			for _, v := range views {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s at %s\t%s\n", v.ID, v.Doctor.Name, v.PatientName,
					validation.FormatDate(v.Date), validation.FormatTime(v.Time), v.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("addr", "localhost:50051", "gRPC server address")
	return cmd
}

func bookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment on a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			addr, _ := f.GetString("addr")
			var req model.BookingRequest
			req.DoctorID, _ = f.GetString("doctor")
			req.PatientName, _ = f.GetString("name")
			req.PatientEmail, _ = f.GetString("email")
			req.Date, _ = f.GetString("date")
			req.Time, _ = f.GetString("time")

			cl, done, err := dial(addr)
			if err != nil {
				return err
			}
			defer done()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			appt, err := cl.BookAppointment(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booked %s for %s at %s\n", appt.ID,
				validation.FormatDate(appt.Date), validation.FormatTime(appt.Time))
			return nil
		},
	}
	f := cmd.Flags()
	f.String("addr", "localhost:50051", "gRPC server address")
	f.String("doctor", "", "Doctor id")
	f.String("name", "", "Patient name")
	f.String("email", "", "Patient email")
	f.String("date", "", "Date, YYYY-MM-DD")
	f.String("time", "", "Time, HH:MM")
	_ = cmd.MarkFlagRequired("doctor")
	return cmd
}
