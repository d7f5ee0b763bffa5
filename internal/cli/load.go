package cli

import (
	"fmt"

	"cvforge/internal/common"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load [profile-file]",
	Short: "Load a stored profile from the per-user document store",
	Long: `Sign in with a Google identity token and load the stored profile
document into a local file. A first-time user has no stored document,
which is reported without touching the local file.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

var (
	loadToken     string
	loadTokenFile string
)

func init() {
	loadCmd.Flags().StringVar(&loadToken, "token", "", "Google ID token")
	loadCmd.Flags().StringVar(&loadTokenFile, "token-file", "", "File containing a Google ID token")
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	token, err := resolveToken(loadToken, loadTokenFile, logger)
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

	loadCtx, cancel := contextWithStorageTimeout(ctx, cfg)
	defer cancel()
	loaded, err := ss.session.Load(loadCtx)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if loaded == nil {
		fmt.Printf("No stored profile for %s\n", id.Email)
		return nil
	}

	fileProcessor := common.NewFileProcessor(logger)
	if err := fileProcessor.WriteProfile(args[0], *loaded); err != nil {
		return err
	}

	logger.Info("Profile loaded", "subject", id.Subject, "file", args[0])
	fmt.Printf("Profile for %s written to %s\n", id.Email, args[0])
	return nil
}
