package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/loginbridge/internal/config"
	"github.com/dropDatabas3/loginbridge/internal/http/server"
	"github.com/dropDatabas3/loginbridge/internal/settings"
)

// newSettingsCmd opera el settings store que lee el flujo en cada request.
func newSettingsCmd(load func() (*config.Config, error)) *cobra.Command {
	var reveal bool

	open := func(cmd *cobra.Command) (*settings.Store, func() error, error) {
		cfg, err := load()
		if err != nil {
			return nil, nil, err
		}
		conn, err := server.OpenStore(cmd.Context(), cfg, false)
		if err != nil {
			return nil, nil, err
		}
		return settings.NewStore(conn.Settings()), conn.Close, nil
	}

	root := &cobra.Command{Use: "settings", Short: "Lee y escribe los settings del login"}

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista todos los settings (secretos enmascarados)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			all, err := st.Raw(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, display(k, all[k], reveal))
			}
			return nil
		},
	}
	list.Flags().BoolVar(&reveal, "reveal", false, "Muestra secretos en claro")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Muestra un setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			v, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), display(args[0], v, reveal))
			return nil
		},
	}
	get.Flags().BoolVar(&reveal, "reveal", false, "Muestra secretos en claro")

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Escribe un setting (efectivo en el siguiente request)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			if err := st.Set(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(settings.Keys(), ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	unset := &cobra.Command{
		Use:   "unset <key>",
		Short: "Borra un setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			return st.Delete(cmd.Context(), args[0])
		},
	}

	root.AddCommand(list, get, set, unset)
	return root
}

func display(key, value string, reveal bool) string {
	if reveal || !settings.IsSecret(key) || value == "" {
		return value
	}
	return "********"
}
