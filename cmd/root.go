package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dProp/cmd/prop"
	"github.com/ValentinKolb/dProp/cmd/serve"
	"github.com/ValentinKolb/dProp/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dprop",
		Short: "sharded property listing store",
		Long: fmt.Sprintf(`dProp (v%s)

A sharded store for property listings written in Go. Every listing is written
to a primary and a replica shard chosen from its identity, searches are fanned
out to all shards and merged.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dProp",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dProp v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(prop.PropCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
