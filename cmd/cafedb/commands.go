package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/cafedb/internal/config"
	"github.com/saltyorg/cafedb/internal/database"
	"github.com/saltyorg/cafedb/internal/web"
)

// demoMissingOrderID is deleted at the end of the demo to show that
// removing an absent row is a no-op
const demoMissingOrderID = 5

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Reset the tables and run a sample insert/query/update/delete round",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return demo(cmd.OutOrStdout(), db)
}

func demo(out io.Writer, db *database.DB) error {
	// Start clean so repeated runs do not pile up rows; orders first for the foreign key
	if err := db.DeleteAll(database.TableOrders); err != nil {
		return err
	}
	if err := db.DeleteAll(database.TableCafes); err != nil {
		return err
	}

	cafeID, err := db.InsertCafe(database.Cafe{
		Name:      "Cafe A",
		StartDate: "2020-05-11 00:00:00",
		EndDate:   "2020-05-13 00:00:00",
	})
	if err != nil {
		return err
	}

	orderID, err := db.InsertOrder(database.Order{
		CafeID:     cafeID,
		TableLabel: "table-3",
		Contents:   "two lattes",
		Status:     database.OrderStatusStarted,
		StartDate:  "2020-05-11 12:00:00",
		EndDate:    "2020-05-11 15:00:00",
	})
	if err != nil {
		return err
	}

	if err := db.Update(database.TableOrders, orderID, database.Where("status", database.OrderStatusDone)); err != nil {
		return err
	}

	cafes, err := db.SelectAll(database.TableCafes)
	if err != nil {
		return err
	}
	orders, err := db.SelectWhere(database.TableOrders, database.Where("status", database.OrderStatusDone))
	if err != nil {
		return err
	}

	if err := db.DeleteWhere(database.TableOrders, database.Where("id", demoMissingOrderID)); err != nil {
		return err
	}

	fmt.Fprintln(out, cafeID, orderID)
	printRows(out, cafes)
	printRows(out, orders)
	return nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the cafes and orders tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready in %s\n", db.Path())
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table> [column=value ...]",
		Short: "Print every row of a table, or the rows matching all column=value terms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseTerms(args[1:])
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			var rows []database.Row
			if len(filter) == 0 {
				rows, err = db.SelectAll(args[0])
			} else {
				rows, err = db.SelectWhere(args[0], filter)
			}
			if err != nil {
				return err
			}

			printRows(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}

func newAddCafeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-cafe <name> [start_date] [end_date]",
		Short: "Insert a cafe and print its id",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cafe := database.Cafe{Name: args[0]}
			if len(args) > 1 {
				cafe.StartDate = args[1]
			}
			if len(args) > 2 {
				cafe.EndDate = args[2]
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := db.InsertCafe(cafe)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newAddOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-order <cafe_id> <table_label> <contents> <status> <start_date> <end_date>",
		Short: "Insert an order and print its id",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			cafeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid cafe id %q: %w", args[0], err)
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := db.InsertOrder(database.Order{
				CafeID:     cafeID,
				TableLabel: args[1],
				Contents:   args[2],
				Status:     args[3],
				StartDate:  args[4],
				EndDate:    args[5],
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <id> column=value [column=value ...]",
		Short: "Set columns on the row with the given id",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid row id %q: %w", args[1], err)
			}
			fields, err := parseTerms(args[2:])
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			return db.Update(args[0], id, fields)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "delete <table> [column=value ...]",
		Short: "Delete the rows matching all column=value terms (or every row with --all)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseTerms(args[1:])
			if err != nil {
				return err
			}
			if len(filter) == 0 && !all {
				return fmt.Errorf("refusing to delete every row of %s without --all", args[0])
			}
			if len(filter) > 0 && all {
				return fmt.Errorf("--all cannot be combined with column filters")
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if all {
				return db.DeleteAll(args[0])
			}
			return db.DeleteWhere(args[0], filter)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Delete every row of the table")

	return cmd
}

func newVacuumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vacuum",
		Short: "Refresh planner statistics and compact the database file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Optimize(); err != nil {
				return err
			}
			if err := db.Vacuum(); err != nil {
				return err
			}
			log.Info().Str("database", db.Path()).Msg("Database vacuumed")
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var (
		port        int
		bind        string
		allowSubnet string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tables over a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				if envPort := os.Getenv("PORT"); envPort != "" {
					if _, err := fmt.Sscanf(envPort, "%d", &port); err != nil {
						return fmt.Errorf("invalid PORT environment variable %q: %w", envPort, err)
					}
				} else {
					port = settings.Int("server.port", port)
				}
			}
			if bind == "" {
				bind = settings.String("server.bind", "")
			}
			if bind != "" {
				if ip := net.ParseIP(bind); ip == nil {
					return fmt.Errorf("invalid bind address: %s", bind)
				}
			}

			var allowedNet *net.IPNet
			if allowSubnet != "" {
				_, parsedNet, err := net.ParseCIDR(allowSubnet)
				if err != nil {
					return fmt.Errorf("invalid allow-subnet CIDR: %s", allowSubnet)
				}
				allowedNet = parsedNet
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			// API clients need to see failures
			db.SetMode(database.ErrorModeStrict)

			server, err := web.NewServer(db, web.Options{
				Port:                port,
				Bind:                bind,
				AllowedNet:          allowedNet,
				Timeouts:            config.LoadTimeouts(settings),
				MaintenanceSchedule: settings.String("server.maintenance_schedule", ""),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info().
				Str("version", version).
				Int("port", port).
				Str("bind", bind).
				Str("allow_subnet", allowSubnet).
				Str("database", db.Path()).
				Msg("Starting cafedb API")

			if err := server.Start(ctx); err != nil {
				return fmt.Errorf("server error: %w", err)
			}

			log.Info().Msg("cafedb API stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP server port (or set PORT env var)")
	cmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	cmd.Flags().StringVarP(&allowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")

	return cmd
}

// parseTerms turns column=value arguments into an ordered filter
func parseTerms(args []string) (database.Filter, error) {
	filter := make(database.Filter, 0, len(args))
	for _, arg := range args {
		column, value, ok := strings.Cut(arg, "=")
		if !ok || column == "" {
			return nil, fmt.Errorf("expected column=value, got %q", arg)
		}
		filter = append(filter, database.Pair{Column: column, Value: value})
	}
	return filter, nil
}

// printRows writes one tuple per line
func printRows(out io.Writer, rows []database.Row) {
	for _, row := range rows {
		fmt.Fprintln(out, formatRow(row))
	}
}

func formatRow(row database.Row) string {
	parts := make([]string, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case nil:
			parts[i] = "NULL"
		case string:
			parts[i] = strconv.Quote(val)
		case []byte:
			parts[i] = strconv.Quote(string(val))
		default:
			parts[i] = fmt.Sprint(val)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
