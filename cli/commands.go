package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/tpictl/api"
	"github.com/kbukum/tpictl/request"
	"github.com/kbukum/tpictl/validation"
)

// nodes is the number of compute module slots on the board.
const nodes = 4

func (a *App) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print information about the BMC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := a.newRequest().GetTarget(a.target.Get("other"))
			resp, err := a.send(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
}

func (a *App) powerCommand() *cobra.Command {
	var node int
	cmd := &cobra.Command{
		Use:       "power on|off|status",
		Short:     "Power nodes on or off, or print their power state",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.New().Range("node", node, 0, nodes).Validate(); err != nil {
				return err
			}
			if args[0] == "status" {
				resp, err := a.send(cmd.Context(), a.newRequest().GetTarget(a.target.Get("power")))
				if err != nil {
					return err
				}
				return printPowerStatus(cmd.OutOrStdout(), resp)
			}
			target := powerTarget(a.target, args[0] == "on", node)
			resp, err := a.send(cmd.Context(), a.newRequest().GetTarget(target))
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().IntVarP(&node, "node", "n", 0, "node 1-4; 0 selects all nodes")
	return cmd
}

// powerTarget sets nodeN=1 (on) or nodeN=0 (off) for node, or for every
// node when node is 0.
func powerTarget(t api.Target, on bool, node int) api.Target {
	state := "0"
	if on {
		state = "1"
	}
	t = t.Set("power")
	if node != 0 {
		return t.With(fmt.Sprintf("node%d", node), state)
	}
	for n := 1; n <= nodes; n++ {
		t = t.With(fmt.Sprintf("node%d", n), state)
	}
	return t
}

func (a *App) rebootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reboot",
		Short: "Reboot the BMC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.send(cmd.Context(), a.newRequest().GetTarget(a.target.Set("reboot")))
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
}

func (a *App) flashCommand() *cobra.Command {
	var (
		node      int
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "flash",
		Short: "Upload an OS image to a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.New().
				Range("node", node, 1, nodes).
				File("image-path", imagePath).
				Validate(); err != nil {
				return err
			}
			target := a.target.Set("flash").
				With("node", strconv.Itoa(node-1)).
				With("file", filepath.Base(imagePath))
			req := a.newRequest().PostTarget(target)
			req.SetMultipart(request.NewMultipart().AddFile("file", imagePath))

			resp, err := a.send(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().IntVarP(&node, "node", "n", 0, "node 1-4 to flash")
	cmd.Flags().StringVarP(&imagePath, "image-path", "i", "", "path of the image file")
	_ = cmd.MarkFlagRequired("node")
	_ = cmd.MarkFlagRequired("image-path")
	return cmd
}

func (a *App) rawCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raw",
		Short: "Send a legacy API request",
		Long: `raw sends opt=get or opt=set with the given type and key=value
parameters to /api/bmc and prints the answer.`,
	}
	cmd.AddCommand(
		a.rawOpCommand("get", api.Target.Get),
		a.rawOpCommand("set", api.Target.Set),
	)
	return cmd
}

func (a *App) rawOpCommand(op string, selectType func(api.Target, string) api.Target) *cobra.Command {
	return &cobra.Command{
		Use:   op + " <type> [key=value...]",
		Short: fmt.Sprintf("Send opt=%s with a type and parameters", op),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := validation.New().Required("type", args[0])
			for _, kv := range args[1:] {
				v.KeyValue("parameter", kv)
			}
			if err := v.Validate(); err != nil {
				return err
			}
			target := selectType(a.target, args[0])
			for _, kv := range args[1:] {
				key, value, _ := strings.Cut(kv, "=")
				target = target.With(key, value)
			}
			resp, err := a.send(cmd.Context(), a.newRequest().GetTarget(target))
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
}
