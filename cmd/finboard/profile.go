package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/form"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the stored user profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored profile as JSON",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set field=value...",
	Short: "Edit profile fields the way the settings page saves them",
	Example: "  finboard profile set name='Jane Doe' city=Austin\n" +
		"  finboard profile set country=canada",
	Args: cobra.MinimumNArgs(1),
	RunE: runProfileSet,
}

func init() {
	profileCmd.AddCommand(profileShowCmd, profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.profile.Load(ctx); err != nil {
		return err
	}
	user := a.profile.User()
	user.PasswordHash = ""
	return printJSON(cmd, user)
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.ProfileStore == "memory" {
		a.logger.Warn("profile store is in memory, changes are not kept after exit")
	}
	if err := a.profile.Load(ctx); err != nil {
		return err
	}

	f := form.NewSettingsForm(a.profile.User())
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected field=value, got %q", arg)
		}
		switch field {
		case form.FieldPassword, form.FieldNewPassword, form.FieldConfirmPassword:
			return fmt.Errorf("%s cannot be set here", field)
		case form.FieldCountry:
			f.Select(field, value)
		default:
			f.Change(field, value)
		}
	}

	n, err := f.SaveProfile(ctx, a.profile)
	printNotification(cmd, n)
	var invalid *domain.ErrFormInvalid
	if errors.As(err, &invalid) {
		printFieldErrors(cmd, invalid.Fields)
	}
	return err
}

func printNotification(cmd *cobra.Command, n domain.Notification) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", n.Title, n.Description)
}

func printFieldErrors(cmd *cobra.Command, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", name, fields[name])
	}
}
