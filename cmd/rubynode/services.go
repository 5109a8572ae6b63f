package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/registry"
)

var (
	addName       string
	addRuntime    string
	addWorkingDir string
	addArguments  string
	addFacts      []string
	listJSON      bool
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Manage the services database",
	Long: `Manage the services registered on this host.

Examples:
  rubynode services list
  rubynode services add --name weblog --runtime net --fact service=weblog --fact env=prod
  rubynode services remove 12`,
}

var servicesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a service",
	Args:  cobra.NoArgs,
	RunE:  runServicesAdd,
}

var servicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered services",
	Args:  cobra.NoArgs,
	RunE:  runServicesList,
}

var servicesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a service and its facts",
	Args:  cobra.ExactArgs(1),
	RunE:  runServicesRemove,
}

func init() {
	servicesAddCmd.Flags().StringVar(&addName, "name", "", "service name")
	servicesAddCmd.Flags().StringVar(&addRuntime, "runtime", "machine_code", "language runtime (net, java, machine_code, python)")
	servicesAddCmd.Flags().StringVar(&addWorkingDir, "working-dir", "", "working directory of the service")
	servicesAddCmd.Flags().StringVar(&addArguments, "args", "", "command line arguments of the service")
	servicesAddCmd.Flags().StringArrayVar(&addFacts, "fact", nil, "fact in key=value form (repeatable)")
	_ = servicesAddCmd.MarkFlagRequired("name")

	servicesListCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")

	servicesCmd.AddCommand(servicesAddCmd, servicesListCmd, servicesRemoveCmd)
	rootCmd.AddCommand(servicesCmd)
}

func withRegistry(cmd *cobra.Command, fn func(db *registry.Database) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openRegistry(cmd.Context(), cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func runServicesAdd(cmd *cobra.Command, _ []string) error {
	if len(addFacts) == 0 {
		return registry.ErrNoFacts
	}
	facts, err := protocol.ParseFacts(addFacts)
	if err != nil {
		return err
	}
	runtime, err := registry.ParseLanguageRuntime(addRuntime)
	if err != nil {
		return err
	}

	return withRegistry(cmd, func(db *registry.Database) error {
		m, err := db.Add(cmd.Context(), facts, registry.NewServiceMetadata(addName, runtime, addWorkingDir, addArguments))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered service %d (%s)\n", m.ID(), m.Name())
		return nil
	})
}

func runServicesList(cmd *cobra.Command, _ []string) error {
	return withRegistry(cmd, func(db *registry.Database) error {
		services, err := db.List(cmd.Context())
		if err != nil {
			return err
		}
		return printServices(cmd.OutOrStdout(), services, listJSON)
	})
}

func runServicesRemove(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid service id %q", args[0])
	}
	return withRegistry(cmd, func(db *registry.Database) error {
		if err := db.Remove(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed service %d\n", id)
		return nil
	})
}

func printServices(w io.Writer, services []*registry.ServiceMetadata, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(services)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRUNTIME\tFACTS")
	for _, s := range services {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID(), s.Name(), s.Runtime(), s.Facts())
	}
	return tw.Flush()
}
