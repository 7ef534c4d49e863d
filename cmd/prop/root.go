package prop

import (
	"github.com/ValentinKolb/dProp/cmd/util"
	"github.com/ValentinKolb/dProp/lib/router"
	"github.com/spf13/cobra"
)

var (
	propRouter *router.Router

	// PropCommands represents the property command group
	PropCommands = &cobra.Command{
		Use:   "prop",
		Short: "Insert, search, update and delete properties across all shards",
		Long: `Insert, search, update and delete properties across all shards.
The client routes every call itself: inserts go to the primary and the replica shard
of the property, searches, updates and deletes are sent to every shard.`,
		PersistentPreRunE: setupRouter,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupRPCClientFlags(PropCommands)

	PropCommands.AddCommand(insertCmd)
	PropCommands.AddCommand(searchCmd)
	PropCommands.AddCommand(listCmd)
	PropCommands.AddCommand(updateCmd)
	PropCommands.AddCommand(deleteCmd)
	PropCommands.AddCommand(placementCmd)
}

// setupRouter connects to all configured shards
func setupRouter(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config, err := util.GetClientConfig()
	if err != nil {
		return err
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	propRouter, err = util.NewRouter(config, s)
	return err
}
