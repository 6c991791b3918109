package cli

import (
	"github.com/spf13/cobra"

	"github.com/loopmsg/wabridge/pkg/common"
	"github.com/loopmsg/wabridge/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		configManager, err := common.NewConfigManager[types.AppConfig]()
		if err != nil {
			return err
		}

		out, err := configManager.Print()
		if err != nil {
			return err
		}

		cmd.Print(string(out))
		return nil
	},
}
