package cli

import (
	"context"

	"github.com/okian/refxpp/internal/inventory"
	urfave "github.com/urfave/cli/v3"
)

func (a *app) inventoryCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "inventory",
		Usage: "Print the exported functions and types of the native library",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: flagFormat, Usage: "Output format [json, yaml, header]", Value: string(inventory.FormatJSON)},
		},
		Action: func(ctx context.Context, cmd *urfave.Command) error {
			f := inventory.Format(cmd.String(flagFormat))
			a.log.Debug(ctx, "writing inventory")
			return inventory.Write(a.out, inventory.Build(), f)
		},
	}
}
