package cli

import (
	"fmt"

	"cvforge/internal/common"

	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save [profile-file]",
	Short: "Save a profile to the per-user document store",
	Long: `Sign in with a Google identity token and save the profile document to
the per-user document store. The whole document is replaced; the last
writer wins.

The identity token is a Google ID token for the configured client ID,
passed with --token or read from a file with --token-file.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

var (
	saveToken     string
	saveTokenFile string
)

func init() {
	saveCmd.Flags().StringVar(&saveToken, "token", "", "Google ID token")
	saveCmd.Flags().StringVar(&saveTokenFile, "token-file", "", "File containing a Google ID token")
}

func runSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	token, err := resolveToken(saveToken, saveTokenFile, logger)
	if err != nil {
		return err
	}

	fileProcessor := common.NewFileProcessor(logger)
	prof, err := fileProcessor.ReadProfile(args[0])
	if err != nil {
		return err
	}

	ss, err := newSyncSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer ss.close(ctx, logger)

	id, err := ss.session.SignIn(ctx, token)
	if err != nil {
		return err
	}

	// The local file is the source of truth for a save, so it replaces
	// whatever sign-in pulled into the form.
	ss.session.Form().ReplaceAll(prof)

	saveCtx, cancel := contextWithStorageTimeout(ctx, cfg)
	defer cancel()
	if err := ss.session.Save(saveCtx); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	logger.Info("Profile saved", "subject", id.Subject, "file", args[0])
	fmt.Printf("Profile saved for %s\n", id.Email)
	return nil
}
