package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nostrvault",
	Short: "nostrvault CLI",
	Long:  "A CLI for managing identities and per-site permissions in the nostrvault agent.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadConfig()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table, json, raw")
	rootCmd.PersistentFlags().StringVar(&outputField, "field", "", "Print only this field (use with -format=raw)")

	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(permsCmd())
	rootCmd.AddCommand(relaysCmd())
	rootCmd.AddCommand(describeCmd())
	rootCmd.AddCommand(configCmd())
}

// --- config ---

func configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Manage CLI configuration"}

	setAddrCmd := &cobra.Command{
		Use:   "set-address <addr>",
		Short: "Set the agent address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Address = args[0]
			if err := saveConfig(); err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Address saved.")
			return nil
		},
	}

	cmd.AddCommand(setAddrCmd)
	return cmd
}

// --- keys ---

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "keys", Short: "Manage stored identities"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.get("/v1/keys")
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <pubkey> <private-key-hex>",
		Short: "Store an identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			client := newClient()
			_, err := client.post("/v1/keys", map[string]any{
				"pubkey":      args[0],
				"name":        name,
				"private_key": args[1],
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Key stored.")
			return nil
		},
	}
	addCmd.Flags().String("name", "", "Display name for the identity")

	removeCmd := &cobra.Command{
		Use:   "remove <pubkey>",
		Short: "Remove an identity and its profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			if err := client.delete("/v1/keys/" + args[0]); err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Key removed.")
			return nil
		},
	}

	currentCmd := &cobra.Command{
		Use:   "current [pubkey]",
		Short: "Show or set the active identity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			if len(args) == 0 {
				result, err := client.get("/v1/keys/current")
				if err != nil {
					printError(err.Error())
					return nil
				}
				printResult(result)
				return nil
			}
			if _, err := client.put("/v1/keys/current", map[string]any{"pubkey": args[0]}); err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Current identity set.")
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd, currentCmd)
	return cmd
}

// --- perms ---

func permsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "perms", Short: "Manage per-site permissions"}

	listCmd := &cobra.Command{
		Use:   "list <pubkey>",
		Short: "List an identity's host grants (expired grants are pruned)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.get("/v1/profiles/" + args[0] + "/permissions")
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}

	grantCmd := &cobra.Command{
		Use:   "grant <pubkey> <host>",
		Short: "Grant a host a permission level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetInt("level")
			permanent, _ := cmd.Flags().GetBool("permanent")
			condition := "expirable"
			if permanent {
				condition = "permanent"
			}
			client := newClient()
			_, err := client.put("/v1/profiles/"+args[0]+"/permissions/"+args[1], map[string]any{
				"level":     level,
				"condition": condition,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess(fmt.Sprintf("Granted level %d to %s.", level, args[1]))
			return nil
		},
	}
	grantCmd.Flags().Int("level", 1, "Permission level to grant")
	grantCmd.Flags().Bool("permanent", false, "Grant without the 5-minute expiry")

	revokeCmd := &cobra.Command{
		Use:   "revoke <pubkey> <host>",
		Short: "Revoke a host's grant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			if err := client.delete("/v1/profiles/" + args[0] + "/permissions/" + args[1]); err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Permission revoked.")
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <pubkey> <host>",
		Short: "Show a host's level and what it allows",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.get("/v1/profiles/" + args[0] + "/permissions/" + args[1])
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}

	cmd.AddCommand(listCmd, grantCmd, revokeCmd, showCmd)
	return cmd
}

// --- relays ---

func relaysCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "relays", Short: "Manage an identity's relay list"}

	getCmd := &cobra.Command{
		Use:   "get <pubkey>",
		Short: "Show the relay list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			result, err := client.get("/v1/profiles/" + args[0] + "/relays")
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <pubkey> <url[=rw|r|w] ...>",
		Short: "Replace the relay list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			relays := map[string]map[string]bool{}
			for _, arg := range args[1:] {
				url, mode := arg, "rw"
				if i := strings.LastIndex(arg, "="); i >= 0 {
					url, mode = arg[:i], arg[i+1:]
				}
				relays[url] = map[string]bool{
					"read":  strings.Contains(mode, "r"),
					"write": strings.Contains(mode, "w"),
				}
			}
			client := newClient()
			_, err := client.put("/v1/profiles/"+args[0]+"/relays", map[string]any{"relays": relays})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Relays saved.")
			return nil
		},
	}

	cmd.AddCommand(getCmd, setCmd)
	return cmd
}

// --- describe ---

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <level>",
		Short: "Describe what a permission level allows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				printError("level must be an integer")
				return nil
			}
			client := newClient()
			result, err := client.get(fmt.Sprintf("/v1/capabilities?level=%d", level))
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}
}
